package repository

import (
	"context"

	"autopecas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimentacaoFilter defines filters for listing stock movements.
type MovimentacaoFilter struct {
	ProdutoID     *uuid.UUID
	NotaEntradaID *uuid.UUID
	Tipo          string
	Page          int
	Limit         int
}

type MovimentacaoEstoqueRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimentacaoEstoque) error
	List(ctx context.Context, filter MovimentacaoFilter) ([]model.MovimentacaoEstoque, int64, error)
}

type movimentacaoEstoqueRepo struct{ db *gorm.DB }

func NewMovimentacaoEstoqueRepository(db *gorm.DB) MovimentacaoEstoqueRepository {
	return &movimentacaoEstoqueRepo{db: db}
}

func (r *movimentacaoEstoqueRepo) CreateTx(tx *gorm.DB, m *model.MovimentacaoEstoque) error {
	return tx.Create(m).Error
}

func (r *movimentacaoEstoqueRepo) List(ctx context.Context, filter MovimentacaoFilter) ([]model.MovimentacaoEstoque, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimentacaoEstoque{})
	if filter.ProdutoID != nil {
		q = q.Where("produto_id = ?", *filter.ProdutoID)
	}
	if filter.NotaEntradaID != nil {
		q = q.Where("nota_entrada_id = ?", *filter.NotaEntradaID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := paginacao(filter.Page, filter.Limit, 100, 500)
	var movimentacoes []model.MovimentacaoEstoque
	err := q.Preload("Produto").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&movimentacoes).Error
	return movimentacoes, total, err
}
