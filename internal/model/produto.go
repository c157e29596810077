package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Produto is a catalog item. Codigo is the internal 6-digit code; CodigoBarras is
// the EAN/GTIN when the part has one.
type Produto struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Codigo               string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	CodigoBarras         *string   `gorm:"type:varchar(20);index"`
	ReferenciaFabricante string    `gorm:"type:varchar(60);index"`
	Descricao            string    `gorm:"type:varchar(255);index;not null"`
	Marca                string    `gorm:"type:varchar(80)"`
	CategoriaID          *uuid.UUID `gorm:"type:uuid;index"`
	Unidade              string    `gorm:"type:varchar(10);not null;default:'UN'"`
	NCM                  string    `gorm:"type:varchar(10);column:ncm"`

	PrecoCusto        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PrecoVenda        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PrecoVendaDebito  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PrecoVendaCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// MargemLucro is the percentage used the last time the cash price was derived from cost
	MargemLucro decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`

	Estoque       int        `gorm:"not null;default:0"`
	EstoqueMinimo int        `gorm:"not null;default:0"`
	FornecedorID  *uuid.UUID `gorm:"type:uuid;index"`
	Ativo         bool       `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Categoria  *Categoria  `gorm:"foreignKey:CategoriaID"`
	Fornecedor *Fornecedor `gorm:"foreignKey:FornecedorID"`
}

func (Produto) TableName() string { return "produtos" }

func (p *Produto) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
