package repository

import (
	"context"

	"autopecas/internal/dto"
	"autopecas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotaEntradaRepository is the aggregate store for goods receipts and their
// lines. Every mutation goes through a *gorm.DB transaction handle.
type NotaEntradaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.NotaEntrada, error)
	List(ctx context.Context, filter dto.NotaEntradaFilter) ([]model.NotaEntrada, int64, error)

	CreateTx(tx *gorm.DB, n *model.NotaEntrada) error
	// FindByIDForUpdateTx takes the per-receipt row lock (SELECT ... FOR UPDATE)
	// and loads the lines ordered by NumeroItem.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.NotaEntrada, error)
	SaveTx(tx *gorm.DB, n *model.NotaEntrada) error

	// Duplicate-import lookups. They return every receipt, cancelled included,
	// so the caller can tell a live conflict from a recyclable identifier.
	FindByChaveAcessoTx(tx *gorm.DB, chave string) ([]model.NotaEntrada, error)
	FindByNumeroFornecedorTx(tx *gorm.DB, numero, serie string, fornecedorID *uuid.UUID) ([]model.NotaEntrada, error)

	CreateItemTx(tx *gorm.DB, it *model.ItemNotaEntrada) error
	SaveItemTx(tx *gorm.DB, it *model.ItemNotaEntrada) error
	DeleteItemTx(tx *gorm.DB, it *model.ItemNotaEntrada) error

	DB() *gorm.DB
}

type notaEntradaRepo struct{ db *gorm.DB }

func NewNotaEntradaRepository(db *gorm.DB) NotaEntradaRepository { return &notaEntradaRepo{db: db} }

func (r *notaEntradaRepo) DB() *gorm.DB { return r.db }

func preloadItens(db *gorm.DB) *gorm.DB {
	return db.Order("numero_item ASC")
}

func (r *notaEntradaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.NotaEntrada, error) {
	var n model.NotaEntrada
	err := r.db.WithContext(ctx).
		Preload("Fornecedor").
		Preload("Itens", preloadItens).
		Preload("Itens.Produto").
		Where("id = ?", id).
		First(&n).Error
	return &n, err
}

func (r *notaEntradaRepo) List(ctx context.Context, filter dto.NotaEntradaFilter) ([]model.NotaEntrada, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.NotaEntrada{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.FornecedorID != "" {
		q = q.Where("fornecedor_id = ?", filter.FornecedorID)
	}
	if filter.Numero != "" {
		q = q.Where("numero LIKE ?", filter.Numero+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := paginacao(filter.Page, filter.Limit, 20, 100)
	var notas []model.NotaEntrada
	err := q.Preload("Fornecedor").
		Preload("Itens", preloadItens).
		Order("data_entrada DESC, created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&notas).Error
	return notas, total, err
}

func (r *notaEntradaRepo) CreateTx(tx *gorm.DB, n *model.NotaEntrada) error {
	return tx.Omit(clause.Associations).Create(n).Error
}

func (r *notaEntradaRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.NotaEntrada, error) {
	var n model.NotaEntrada
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("nota_entrada_id = ?", n.ID).Order("numero_item ASC").Find(&n.Itens).Error; err != nil {
		return nil, err
	}
	if n.FornecedorID != nil {
		var f model.Fornecedor
		if err := tx.Where("id = ?", *n.FornecedorID).First(&f).Error; err == nil {
			n.Fornecedor = &f
		}
	}
	return &n, nil
}

func (r *notaEntradaRepo) SaveTx(tx *gorm.DB, n *model.NotaEntrada) error {
	return tx.Omit(clause.Associations).Save(n).Error
}

func (r *notaEntradaRepo) FindByChaveAcessoTx(tx *gorm.DB, chave string) ([]model.NotaEntrada, error) {
	var notas []model.NotaEntrada
	err := tx.Where("chave_acesso = ?", chave).Order("created_at ASC").Find(&notas).Error
	return notas, err
}

func (r *notaEntradaRepo) FindByNumeroFornecedorTx(tx *gorm.DB, numero, serie string, fornecedorID *uuid.UUID) ([]model.NotaEntrada, error) {
	q := tx.Where("numero = ? AND serie = ?", numero, serie)
	if fornecedorID != nil {
		q = q.Where("fornecedor_id = ?", *fornecedorID)
	} else {
		q = q.Where("fornecedor_id IS NULL")
	}
	var notas []model.NotaEntrada
	err := q.Order("created_at ASC").Find(&notas).Error
	return notas, err
}

func (r *notaEntradaRepo) CreateItemTx(tx *gorm.DB, it *model.ItemNotaEntrada) error {
	return tx.Omit(clause.Associations).Create(it).Error
}

func (r *notaEntradaRepo) SaveItemTx(tx *gorm.DB, it *model.ItemNotaEntrada) error {
	return tx.Omit(clause.Associations).Save(it).Error
}

func (r *notaEntradaRepo) DeleteItemTx(tx *gorm.DB, it *model.ItemNotaEntrada) error {
	return tx.Where("id = ? AND nota_entrada_id = ?", it.ID, it.NotaEntradaID).Delete(&model.ItemNotaEntrada{}).Error
}
