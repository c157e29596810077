package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// OpcoesProcessamento carries the per-receipt flags applied at finalization.
// Nil fields keep the current (or default) value.
type OpcoesProcessamento struct {
	AtualizarPrecoCusto *bool            `json:"atualizar_preco_custo"`
	AtualizarPrecoVenda *bool            `json:"atualizar_preco_venda"`
	MargemPadrao        *decimal.Decimal `json:"margem_padrao"         validate:"omitempty,min=0"`
	RatearFrete         *bool            `json:"ratear_frete"`
	AtualizarCotacao    *bool            `json:"atualizar_cotacao"`
}

type ItemNotaEntradaRequest struct {
	ProdutoID        *string          `json:"produto_id"        validate:"omitempty,uuid"`
	CodigoFornecedor string           `json:"codigo_fornecedor" validate:"max=60"`
	CodigoBarras     string           `json:"codigo_barras"     validate:"max=20"`
	Descricao        string           `json:"descricao"         validate:"required,max=255"`
	NCM              string           `json:"ncm"               validate:"max=10"`
	CFOP             string           `json:"cfop"              validate:"max=6"`
	CEST             string           `json:"cest"              validate:"max=10"`
	Unidade          string           `json:"unidade"           validate:"max=10"`
	Quantidade       decimal.Decimal  `json:"quantidade"        validate:"gt=0"`
	ValorUnitario    decimal.Decimal  `json:"valor_unitario"    validate:"min=0"`
	ValorDesconto    decimal.Decimal  `json:"valor_desconto"    validate:"min=0"`
	ValorTotal       *decimal.Decimal `json:"valor_total"       validate:"omitempty,min=0"`
	ValorIPI         decimal.Decimal  `json:"valor_ipi"         validate:"min=0"`
	ValorICMSST      decimal.Decimal  `json:"valor_icms_st"     validate:"min=0"`
}

type CriarNotaEntradaRequest struct {
	FornecedorID        *string                  `json:"fornecedor_id"         validate:"omitempty,uuid"`
	Numero              string                   `json:"numero"                validate:"required,max=60"`
	Serie               string                   `json:"serie"                 validate:"max=10"`
	ChaveAcesso         *string                  `json:"chave_acesso"          validate:"omitempty,len=44,numeric"`
	NaturezaOperacao    string                   `json:"natureza_operacao"     validate:"max=120"`
	DataEmissao         *time.Time               `json:"data_emissao"`
	DataEntrada         *time.Time               `json:"data_entrada"`
	ValorFrete          decimal.Decimal          `json:"valor_frete"           validate:"min=0"`
	ValorSeguro         decimal.Decimal          `json:"valor_seguro"          validate:"min=0"`
	ValorDesconto       decimal.Decimal          `json:"valor_desconto"        validate:"min=0"`
	ValorOutrasDespesas decimal.Decimal          `json:"valor_outras_despesas" validate:"min=0"`
	ValorIPI            decimal.Decimal          `json:"valor_ipi"             validate:"min=0"`
	ValorICMSST         decimal.Decimal          `json:"valor_icms_st"         validate:"min=0"`
	Observacoes         string                   `json:"observacoes"`
	Opcoes              OpcoesProcessamento      `json:"opcoes"`
	Itens               []ItemNotaEntradaRequest `json:"itens"                 validate:"dive"`
}

type ConferirItemRequest struct {
	QuantidadeConferida decimal.Decimal `json:"quantidade_conferida" validate:"min=0"`
	Observacao          string          `json:"observacao"`
}

type VincularProdutoRequest struct {
	ProdutoID string `json:"produto_id" validate:"required,uuid"`
}

// CriarProdutoDoItemRequest overrides what would otherwise be derived from the
// receipt line.
type CriarProdutoDoItemRequest struct {
	Codigo      *string          `json:"codigo"       validate:"omitempty,min=1,max=20"`
	Descricao   *string          `json:"descricao"    validate:"omitempty,min=2,max=255"`
	Marca       *string          `json:"marca"        validate:"omitempty,max=80"`
	CategoriaID *string          `json:"categoria_id" validate:"omitempty,uuid"`
	MargemLucro *decimal.Decimal `json:"margem_lucro" validate:"omitempty,min=0"`
	PrecoVenda  *decimal.Decimal `json:"preco_venda"  validate:"omitempty,gt=0"`
}

type CancelarNotaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=500"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type NotaEntradaFilter struct {
	Status       string `form:"status"        validate:"omitempty,oneof=pendente em_conferencia conferida finalizada cancelada"`
	FornecedorID string `form:"fornecedor_id" validate:"omitempty,uuid"`
	Numero       string `form:"numero"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemNotaEntradaResponse struct {
	ID                  string          `json:"id"`
	NumeroItem          int             `json:"numero_item"`
	ProdutoID           *string         `json:"produto_id"`
	ProdutoCodigo       string          `json:"produto_codigo,omitempty"`
	ProdutoDescricao    string          `json:"produto_descricao,omitempty"`
	CodigoFornecedor    string          `json:"codigo_fornecedor"`
	CodigoBarras        string          `json:"codigo_barras"`
	Descricao           string          `json:"descricao"`
	NCM                 string          `json:"ncm"`
	CFOP                string          `json:"cfop"`
	CEST                string          `json:"cest"`
	Unidade             string          `json:"unidade"`
	Quantidade          decimal.Decimal `json:"quantidade"`
	QuantidadeConferida decimal.Decimal `json:"quantidade_conferida"`
	ValorUnitario       decimal.Decimal `json:"valor_unitario"`
	ValorDesconto       decimal.Decimal `json:"valor_desconto"`
	ValorTotal          decimal.Decimal `json:"valor_total"`
	ValorIPI            decimal.Decimal `json:"valor_ipi"`
	ValorICMSST         decimal.Decimal `json:"valor_icms_st"`
	CustoUnitario       decimal.Decimal `json:"custo_unitario"`
	Conferido           bool            `json:"conferido"`
	Divergencia         bool            `json:"divergencia"`
	Observacao          string          `json:"observacao"`
}

type NotaEntradaResponse struct {
	ID                  string                    `json:"id"`
	FornecedorID        *string                   `json:"fornecedor_id"`
	FornecedorNome      string                    `json:"fornecedor_nome,omitempty"`
	Numero              string                    `json:"numero"`
	Serie               string                    `json:"serie"`
	ChaveAcesso         *string                   `json:"chave_acesso"`
	NaturezaOperacao    string                    `json:"natureza_operacao"`
	DataEmissao         *string                   `json:"data_emissao"`
	DataEntrada         string                    `json:"data_entrada"`
	ValorProdutos       decimal.Decimal           `json:"valor_produtos"`
	ValorFrete          decimal.Decimal           `json:"valor_frete"`
	ValorSeguro         decimal.Decimal           `json:"valor_seguro"`
	ValorDesconto       decimal.Decimal           `json:"valor_desconto"`
	ValorOutrasDespesas decimal.Decimal           `json:"valor_outras_despesas"`
	ValorIPI            decimal.Decimal           `json:"valor_ipi"`
	ValorICMSST         decimal.Decimal           `json:"valor_icms_st"`
	ValorTotal          decimal.Decimal           `json:"valor_total"`
	TipoEntrada         string                    `json:"tipo_entrada"`
	Status              string                    `json:"status"`
	AtualizarPrecoCusto bool                      `json:"atualizar_preco_custo"`
	AtualizarPrecoVenda bool                      `json:"atualizar_preco_venda"`
	MargemPadrao        decimal.Decimal           `json:"margem_padrao"`
	RatearFrete         bool                      `json:"ratear_frete"`
	AtualizarCotacao    bool                      `json:"atualizar_cotacao"`
	DataConferencia     *string                   `json:"data_conferencia"`
	DataFinalizacao     *string                   `json:"data_finalizacao"`
	Observacoes         string                    `json:"observacoes"`
	ItensPendentes      int                       `json:"itens_pendentes"`
	TodosConferidos     bool                      `json:"todos_conferidos"`
	Itens               []ItemNotaEntradaResponse `json:"itens"`
	CreatedAt           string                    `json:"created_at"`
}

type NotaEntradaListResponse struct {
	Data       []NotaEntradaResponse `json:"data"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

// ImportacaoResponse is returned by the XML and PDF import endpoints.
type ImportacaoResponse struct {
	Nota            NotaEntradaResponse `json:"nota"`
	Avisos          []string            `json:"avisos"`
	ItensVinculados int                 `json:"itens_vinculados"`
}

type VinculoAutomaticoResponse struct {
	ItensVinculados int `json:"itens_vinculados"`
	ItensPendentes  int `json:"itens_pendentes"`
}

type EventoNotaEntradaResponse struct {
	ID        string         `json:"id"`
	ItemID    *string        `json:"item_id,omitempty"`
	Acao      string         `json:"acao"`
	Descricao string         `json:"descricao"`
	Dados     map[string]any `json:"dados,omitempty"`
	UsuarioID *string        `json:"usuario_id,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ResultadoFinalizacaoResponse summarizes a finalization attempt. When Sucesso
// is false nothing was persisted and Erros names the failing lines.
type ResultadoFinalizacaoResponse struct {
	Sucesso             bool     `json:"sucesso"`
	Mensagem            string   `json:"mensagem"`
	ItensProcessados    int      `json:"itens_processados"`
	EstoqueAtualizado   int      `json:"estoque_atualizado"`
	PrecosAtualizados   int      `json:"precos_atualizados"`
	CotacoesAtualizadas int      `json:"cotacoes_atualizadas"`
	Erros               []string `json:"erros"`
}
