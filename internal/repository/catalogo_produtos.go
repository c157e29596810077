package repository

import (
	"context"
	"errors"
	"strings"

	"autopecas/internal/matching"
	"autopecas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogoProdutos answers matcher lookups against active products. It is
// bound to a *gorm.DB so the matcher can run inside the import transaction.
type CatalogoProdutos struct{ db *gorm.DB }

var _ matching.Catalogo = (*CatalogoProdutos)(nil)

func NewCatalogoProdutos(db *gorm.DB) *CatalogoProdutos { return &CatalogoProdutos{db: db} }

func (c *CatalogoProdutos) primeiro(ctx context.Context, coluna, valor string) (*uuid.UUID, error) {
	var p model.Produto
	err := c.db.WithContext(ctx).
		Select("id").
		Where(coluna+" = ? AND ativo = ?", valor, true).
		Order("created_at ASC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p.ID, nil
}

func (c *CatalogoProdutos) BuscarPorCodigoBarras(ctx context.Context, codigo string) (*uuid.UUID, error) {
	return c.primeiro(ctx, "codigo_barras", codigo)
}

func (c *CatalogoProdutos) BuscarPorCodigo(ctx context.Context, codigo string) (*uuid.UUID, error) {
	return c.primeiro(ctx, "codigo", codigo)
}

func (c *CatalogoProdutos) BuscarPorReferencia(ctx context.Context, referencia string) (*uuid.UUID, error) {
	return c.primeiro(ctx, "referencia_fabricante", referencia)
}

func (c *CatalogoProdutos) BuscarPorTermos(ctx context.Context, termos []string, limite int) ([]uuid.UUID, error) {
	q := c.db.WithContext(ctx).Model(&model.Produto{}).Where("ativo = ?", true)
	for _, t := range termos {
		q = q.Where("LOWER(descricao) LIKE ?", "%"+strings.ToLower(t)+"%")
	}
	var ids []uuid.UUID
	err := q.Order("created_at ASC").Limit(limite).Pluck("id", &ids).Error
	return ids, err
}
