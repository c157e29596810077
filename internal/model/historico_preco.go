package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HistoricoPreco registra cada mudança de custo ou preço de venda de um produto.
// Os registros são imutáveis.
type HistoricoPreco struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	FornecedorID  *uuid.UUID      `gorm:"type:uuid;index"`
	NotaEntradaID *uuid.UUID      `gorm:"type:uuid;index"`
	CustoAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CustoNovo     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VendaAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VendaNova     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo        string          `gorm:"not null"`
	UsuarioID     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time

	Produto    Produto     `gorm:"foreignKey:ProdutoID"`
	Fornecedor *Fornecedor `gorm:"foreignKey:FornecedorID"`
}

func (HistoricoPreco) TableName() string { return "historico_precos" }

func (h *HistoricoPreco) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
