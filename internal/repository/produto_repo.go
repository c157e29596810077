package repository

import (
	"context"
	"fmt"
	"strconv"

	"autopecas/internal/dto"
	"autopecas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProdutoRepository defines the data access contract for catalog products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProdutoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	FindByCodigoBarras(ctx context.Context, codigo string) (*model.Produto, error)
	List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error)

	// Used inside transactions — callers must pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Produto) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error)
	SaveTx(tx *gorm.DB, p *model.Produto) error
	UpdateEstoqueTx(tx *gorm.DB, id uuid.UUID, delta int) error
	ExisteCodigoTx(tx *gorm.DB, codigo string) (bool, error)
	// ProximoCodigoTx returns the next free 6-digit sequential code.
	ProximoCodigoTx(tx *gorm.DB) (string, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) DB() *gorm.DB { return r.db }

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *produtoRepo) FindByCodigoBarras(ctx context.Context, codigo string) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).Where("codigo_barras = ? AND ativo = ?", codigo, true).First(&p).Error
	return &p, err
}

func (r *produtoRepo) List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var produtos []model.Produto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Produto{})

	// Ativo filter: "false" = inativos, "all" = todos, anything else = ativos (default)
	switch filter.Ativo {
	case "false":
		q = q.Where("ativo = ?", false)
	case "all":
	default:
		q = q.Where("ativo = ?", true)
	}

	if filter.CodigoBarras != "" {
		q = q.Where("codigo_barras = ?", filter.CodigoBarras)
	}
	if filter.Busca != "" {
		like := "%" + filter.Busca + "%"
		q = q.Where("LOWER(descricao) LIKE LOWER(?) OR codigo = ? OR referencia_fabricante = ?",
			like, filter.Busca, filter.Busca)
	}
	if filter.CategoriaID != "" {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	if filter.FornecedorID != "" {
		q = q.Where("fornecedor_id = ?", filter.FornecedorID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := paginacao(filter.Page, filter.Limit, 20, 100)
	err := q.Order("descricao ASC").Limit(limit).Offset((page - 1) * limit).Find(&produtos).Error
	return produtos, total, err
}

func (r *produtoRepo) CreateTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Create(p).Error
}

func (r *produtoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := tx.Where("id = ?", id).First(&p).Error
	return &p, err
}

// FindByIDForUpdateTx locks the product row until the transaction ends.
func (r *produtoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *produtoRepo) SaveTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Omit(clause.Associations).Save(p).Error
}

func (r *produtoRepo) UpdateEstoqueTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	res := tx.Model(&model.Produto{}).Where("id = ?", id).
		Update("estoque", gorm.Expr("estoque + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *produtoRepo) ExisteCodigoTx(tx *gorm.DB, codigo string) (bool, error) {
	var n int64
	err := tx.Model(&model.Produto{}).Where("codigo = ?", codigo).Count(&n).Error
	return n > 0, err
}

// filtroCodigoNumerico matches codes made of exactly six digits. Those sort
// lexically in numeric order, so the first row by codigo DESC is the maximum.
func filtroCodigoNumerico(tx *gorm.DB) string {
	if tx.Dialector.Name() == "sqlite" {
		return "codigo GLOB '[0-9][0-9][0-9][0-9][0-9][0-9]'"
	}
	return "codigo ~ '^[0-9]{6}$'"
}

func (r *produtoRepo) ProximoCodigoTx(tx *gorm.DB) (string, error) {
	var codigos []string
	err := tx.Model(&model.Produto{}).
		Where(filtroCodigoNumerico(tx)).
		Order("codigo DESC").
		Limit(1).
		Pluck("codigo", &codigos).Error
	if err != nil {
		return "", err
	}

	proximo := 1
	if len(codigos) == 1 {
		n, err := strconv.Atoi(codigos[0])
		if err != nil {
			return "", fmt.Errorf("código numérico inválido %q: %w", codigos[0], err)
		}
		proximo = n + 1
	}
	for ; proximo <= 999999; proximo++ {
		codigo := fmt.Sprintf("%06d", proximo)
		existe, err := r.ExisteCodigoTx(tx, codigo)
		if err != nil {
			return "", err
		}
		if !existe {
			return codigo, nil
		}
	}
	return "", fmt.Errorf("sequência de códigos de produto esgotada")
}

// paginacao normalizes page/limit query values.
func paginacao(page, limit, padrao, maximo int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maximo {
		limit = padrao
	}
	return page, limit
}
