package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusNota is the lifecycle state of a goods receipt.
type StatusNota string

const (
	StatusPendente      StatusNota = "pendente"
	StatusEmConferencia StatusNota = "em_conferencia"
	StatusConferida     StatusNota = "conferida"
	StatusFinalizada    StatusNota = "finalizada"
	StatusCancelada     StatusNota = "cancelada"
)

// IsValid reports whether s is one of the known states.
func (s StatusNota) IsValid() bool {
	switch s {
	case StatusPendente, StatusEmConferencia, StatusConferida, StatusFinalizada, StatusCancelada:
		return true
	}
	return false
}

// Editavel is true while items, links and flags may still change.
func (s StatusNota) Editavel() bool {
	return s == StatusPendente || s == StatusEmConferencia || s == StatusConferida
}

// CanTransitionTo checks the receipt state machine.
// cancelada and finalizada are terminal.
func (s StatusNota) CanTransitionTo(target StatusNota) bool {
	switch s {
	case StatusPendente:
		return target == StatusEmConferencia || target == StatusConferida ||
			target == StatusFinalizada || target == StatusCancelada
	case StatusEmConferencia:
		return target == StatusConferida || target == StatusFinalizada || target == StatusCancelada
	case StatusConferida:
		return target == StatusEmConferencia || target == StatusFinalizada || target == StatusCancelada
	}
	return false
}

// TipoEntrada tells how the receipt was created.
type TipoEntrada string

const (
	EntradaManual TipoEntrada = "manual"
	EntradaXML    TipoEntrada = "xml"
	EntradaPDF    TipoEntrada = "pdf"
)

// NotaEntrada is a supplier goods receipt being reconciled into stock.
// (Numero, Serie, FornecedorID) and ChaveAcesso are unique among receipts that
// are not cancelled; PostgreSQL enforces it with partial indexes (see infra).
type NotaEntrada struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FornecedorID     *uuid.UUID `gorm:"type:uuid;index"`
	Numero           string     `gorm:"type:varchar(60);not null;index"`
	Serie            string     `gorm:"type:varchar(10);not null;default:''"`
	ChaveAcesso      *string    `gorm:"type:varchar(64);index"`
	NaturezaOperacao string     `gorm:"type:varchar(120)"`
	DataEmissao      *time.Time
	DataEntrada      time.Time `gorm:"not null"`

	ValorProdutos       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ValorFrete          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ValorSeguro         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ValorDesconto       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ValorOutrasDespesas decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ValorIPI            decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0;column:valor_ipi"`
	ValorICMSST         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0;column:valor_icms_st"`
	ValorTotal          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	TipoEntrada TipoEntrada `gorm:"type:varchar(10);not null;default:'manual'"`
	Status      StatusNota  `gorm:"type:varchar(20);not null;default:'pendente';index"`

	// Processing flags applied at finalization. Defaults are filled by the
	// service; the columns have none.
	AtualizarPrecoCusto bool            `gorm:"not null"`
	AtualizarPrecoVenda bool            `gorm:"not null"`
	MargemPadrao        decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	RatearFrete         bool            `gorm:"not null"`
	AtualizarCotacao    bool            `gorm:"not null"`

	CriadoPorID     *uuid.UUID `gorm:"type:uuid"`
	ConferidoPorID  *uuid.UUID `gorm:"type:uuid"`
	FinalizadoPorID *uuid.UUID `gorm:"type:uuid"`
	DataConferencia *time.Time
	DataFinalizacao *time.Time
	Observacoes     string `gorm:"type:text;not null;default:''"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Fornecedor *Fornecedor       `gorm:"foreignKey:FornecedorID"`
	Itens      []ItemNotaEntrada `gorm:"foreignKey:NotaEntradaID"`
}

func (NotaEntrada) TableName() string { return "notas_entrada" }

func (n *NotaEntrada) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// ItensPendentes counts lines that are not yet linked to a product.
func (n *NotaEntrada) ItensPendentes() int {
	pendentes := 0
	for _, it := range n.Itens {
		if it.ProdutoID == nil {
			pendentes++
		}
	}
	return pendentes
}

// TodosConferidos is false for a receipt without lines.
func (n *NotaEntrada) TodosConferidos() bool {
	if len(n.Itens) == 0 {
		return false
	}
	for _, it := range n.Itens {
		if !it.Conferido {
			return false
		}
	}
	return true
}

// ItemNotaEntrada is one line of a goods receipt.
// ValorTotal = Quantidade * ValorUnitario - ValorDesconto unless a document
// total was given explicitly at creation.
type ItemNotaEntrada struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	NotaEntradaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProdutoID     *uuid.UUID `gorm:"type:uuid;index"`
	NumeroItem    int        `gorm:"not null"`

	CodigoFornecedor string `gorm:"type:varchar(60)"`
	CodigoBarras     string `gorm:"type:varchar(20)"`
	Descricao        string `gorm:"type:varchar(255);not null"`
	NCM              string `gorm:"type:varchar(10);column:ncm"`
	CFOP             string `gorm:"type:varchar(6);column:cfop"`
	CEST             string `gorm:"type:varchar(10);column:cest"`
	Unidade          string `gorm:"type:varchar(10);not null;default:'UN'"`

	Quantidade          decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	QuantidadeConferida decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	ValorUnitario       decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	ValorDesconto       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ValorTotal          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ValorIPI            decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0;column:valor_ipi"`
	ValorICMSST         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0;column:valor_icms_st"`
	// CustoUnitario is the landed cost after taxes and freight apportionment.
	CustoUnitario decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`

	Conferido   bool   `gorm:"not null;default:false"`
	Divergencia bool   `gorm:"not null;default:false"`
	Observacao  string `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

func (ItemNotaEntrada) TableName() string { return "itens_nota_entrada" }

func (i *ItemNotaEntrada) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// QuantidadeEntrada is the quantity that goes into stock: the counted one when
// the line was conferred with a positive count, the document one otherwise.
func (i *ItemNotaEntrada) QuantidadeEntrada() int {
	if i.QuantidadeConferida.IsPositive() {
		return int(i.QuantidadeConferida.IntPart())
	}
	return int(i.Quantidade.IntPart())
}
