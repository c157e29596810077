package repository

import (
	"context"
	"time"

	"autopecas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CotacaoFornecedorRepository interface {
	// UpsertTx inserts or refreshes the quote for (produto, fornecedor).
	UpsertTx(tx *gorm.DB, c *model.CotacaoFornecedor) error
	ListByFornecedor(ctx context.Context, fornecedorID uuid.UUID) ([]model.CotacaoFornecedor, error)
	ListByProduto(ctx context.Context, produtoID uuid.UUID) ([]model.CotacaoFornecedor, error)
}

type cotacaoFornecedorRepo struct{ db *gorm.DB }

func NewCotacaoFornecedorRepository(db *gorm.DB) CotacaoFornecedorRepository {
	return &cotacaoFornecedorRepo{db: db}
}

func (r *cotacaoFornecedorRepo) UpsertTx(tx *gorm.DB, c *model.CotacaoFornecedor) error {
	c.UpdatedAt = time.Now()
	return tx.Omit("Produto").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "produto_id"}, {Name: "fornecedor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"preco", "prazo_entrega_dias", "observacao", "data_cotacao", "updated_at"}),
	}).Create(c).Error
}

func (r *cotacaoFornecedorRepo) ListByFornecedor(ctx context.Context, fornecedorID uuid.UUID) ([]model.CotacaoFornecedor, error) {
	var rows []model.CotacaoFornecedor
	err := r.db.WithContext(ctx).
		Preload("Produto").
		Where("fornecedor_id = ?", fornecedorID).
		Order("data_cotacao DESC").
		Find(&rows).Error
	return rows, err
}

func (r *cotacaoFornecedorRepo) ListByProduto(ctx context.Context, produtoID uuid.UUID) ([]model.CotacaoFornecedor, error) {
	var rows []model.CotacaoFornecedor
	err := r.db.WithContext(ctx).
		Where("produto_id = ?", produtoID).
		Order("preco ASC").
		Find(&rows).Error
	return rows, err
}
