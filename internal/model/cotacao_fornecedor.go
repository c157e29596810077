package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CotacaoFornecedor is the latest known price of a product at one supplier.
// One row per (produto, fornecedor).
type CotacaoFornecedor struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProdutoID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cotacao_produto_fornecedor"`
	FornecedorID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cotacao_produto_fornecedor"`
	Preco            decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	PrazoEntregaDias int             `gorm:"not null;default:0"`
	Observacao       string
	DataCotacao      time.Time `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (CotacaoFornecedor) TableName() string { return "cotacoes_fornecedor" }

func (c *CotacaoFornecedor) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
