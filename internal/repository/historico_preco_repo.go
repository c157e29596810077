package repository

import (
	"context"

	"autopecas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoricoPrecoRepository interface {
	CreateTx(tx *gorm.DB, h *model.HistoricoPreco) error
	ListByProduto(ctx context.Context, produtoID uuid.UUID, page, limit int) ([]model.HistoricoPreco, int64, error)
}

type historicoPrecoRepository struct{ db *gorm.DB }

func NewHistoricoPrecoRepository(db *gorm.DB) HistoricoPrecoRepository {
	return &historicoPrecoRepository{db: db}
}

func (r *historicoPrecoRepository) CreateTx(tx *gorm.DB, h *model.HistoricoPreco) error {
	return tx.Omit("Produto", "Fornecedor").Create(h).Error
}

// ListByProduto returns paginated price-change records for one product,
// newest first.
func (r *historicoPrecoRepository) ListByProduto(
	ctx context.Context,
	produtoID uuid.UUID,
	page, limit int,
) ([]model.HistoricoPreco, int64, error) {
	page, limit = paginacao(page, limit, 50, 200)

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.HistoricoPreco{}).
		Where("produto_id = ?", produtoID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.HistoricoPreco
	if err := r.db.WithContext(ctx).
		Where("produto_id = ?", produtoID).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Preload("Fornecedor").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
