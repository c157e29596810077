package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AcaoEvento is the fixed set of audit actions on a goods receipt.
type AcaoEvento string

const (
	AcaoCriacao            AcaoEvento = "criacao"
	AcaoImportacaoXML      AcaoEvento = "importacao_xml"
	AcaoImportacaoPDF      AcaoEvento = "importacao_pdf"
	AcaoVinculo            AcaoEvento = "vinculo"
	AcaoDesvinculo         AcaoEvento = "desvinculo"
	AcaoConferencia        AcaoEvento = "conferencia"
	AcaoCriacaoProduto     AcaoEvento = "criacao_produto"
	AcaoFinalizacao        AcaoEvento = "finalizacao"
	AcaoCancelamento       AcaoEvento = "cancelamento"
	AcaoAtualizacaoEstoque AcaoEvento = "atualizacao_estoque"
	AcaoAtualizacaoPreco   AcaoEvento = "atualizacao_preco"
	AcaoAtualizacaoCotacao AcaoEvento = "atualizacao_cotacao"
	AcaoItemAdicionado     AcaoEvento = "item_adicionado"
	AcaoItemRemovido       AcaoEvento = "item_removido"
)

// EventoNotaEntrada is one entry of the receipt audit trail.
// Rows are append-only: the repository has no update or delete path.
type EventoNotaEntrada struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	NotaEntradaID uuid.UUID      `gorm:"type:uuid;not null;index"`
	ItemID        *uuid.UUID     `gorm:"type:uuid"`
	Acao          AcaoEvento     `gorm:"type:varchar(30);not null"`
	Descricao     string         `gorm:"type:text;not null"`
	Dados         datatypes.JSON
	UsuarioID     *uuid.UUID     `gorm:"type:uuid"`
	CreatedAt     time.Time      `gorm:"index"`
}

func (EventoNotaEntrada) TableName() string { return "eventos_nota_entrada" }

func (e *EventoNotaEntrada) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
