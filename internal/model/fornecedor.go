package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fornecedor is a supplier. CNPJ is stored punctuated (00.000.000/0000-00).
type Fornecedor struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	RazaoSocial       string    `gorm:"type:varchar(150);not null"`
	NomeFantasia      string    `gorm:"type:varchar(150)"`
	CNPJ              string    `gorm:"column:cnpj;type:varchar(20);uniqueIndex;not null"`
	InscricaoEstadual string    `gorm:"type:varchar(20)"`
	Logradouro        string    `gorm:"type:varchar(150)"`
	Numero            string    `gorm:"type:varchar(20)"`
	Bairro            string    `gorm:"type:varchar(80)"`
	Cidade            string    `gorm:"type:varchar(80)"`
	UF                string    `gorm:"column:uf;type:varchar(2)"`
	CEP               string    `gorm:"column:cep;type:varchar(9)"`
	Telefone          string    `gorm:"type:varchar(20)"`
	Email             string    `gorm:"type:varchar(120)"`
	// PrazoEntregaDias is copied into supplier quotations
	PrazoEntregaDias int  `gorm:"not null;default:0"`
	Ativo            bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Fornecedor) TableName() string { return "fornecedores" }

func (f *Fornecedor) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
