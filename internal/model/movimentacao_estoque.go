package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MovimentacaoEntrada = "entrada"
	MovimentacaoSaida   = "saida"
	MovimentacaoAjuste  = "ajuste"

	// UsuarioSistema signs movements created without an acting user.
	UsuarioSistema = "Sistema"
)

// MovimentacaoEstoque records every stock change of a product.
type MovimentacaoEstoque struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProdutoID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo            string          `gorm:"type:varchar(10);not null"`
	Quantidade      int             `gorm:"not null"` // positive = entrada, negative = saida
	EstoqueAnterior int             `gorm:"not null"`
	EstoqueNovo     int             `gorm:"not null"`
	CustoUnitario   decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	ValorTotal      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Documento       string          `gorm:"type:varchar(80)"`
	NotaEntradaID   *uuid.UUID      `gorm:"type:uuid;index"`
	Usuario         string          `gorm:"type:varchar(80);not null"`
	Motivo          string
	CreatedAt       time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (MovimentacaoEstoque) TableName() string { return "movimentacoes_estoque" }

func (m *MovimentacaoEstoque) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
