package dto

import "github.com/shopspring/decimal"

// HistoricoPrecoItem is one row in the price-history list.
type HistoricoPrecoItem struct {
	ID             string          `json:"id"`
	ProdutoID      string          `json:"produto_id"`
	FornecedorID   *string         `json:"fornecedor_id,omitempty"`
	FornecedorNome *string         `json:"fornecedor_nome,omitempty"`
	NotaEntradaID  *string         `json:"nota_entrada_id,omitempty"`
	CustoAnterior  decimal.Decimal `json:"custo_anterior"`
	CustoNovo      decimal.Decimal `json:"custo_novo"`
	VendaAnterior  decimal.Decimal `json:"venda_anterior"`
	VendaNova      decimal.Decimal `json:"venda_nova"`
	Motivo         string          `json:"motivo"`
	CreatedAt      string          `json:"created_at"`
}

// HistoricoPrecoListResponse is returned by GET /v1/produtos/:id/historico-precos.
type HistoricoPrecoListResponse struct {
	Data  []HistoricoPrecoItem `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type MovimentacaoFilter struct {
	ProdutoID     string `form:"produto_id"      validate:"omitempty,uuid"`
	NotaEntradaID string `form:"nota_entrada_id" validate:"omitempty,uuid"`
	Tipo          string `form:"tipo"            validate:"omitempty,oneof=entrada saida ajuste"`
	Page          int    `form:"page,default=1"`
	Limit         int    `form:"limit,default=50"`
}

type MovimentacaoResponse struct {
	ID               string          `json:"id"`
	ProdutoID        string          `json:"produto_id"`
	ProdutoDescricao string          `json:"produto_descricao,omitempty"`
	Tipo             string          `json:"tipo"`
	Quantidade       int             `json:"quantidade"`
	EstoqueAnterior  int             `json:"estoque_anterior"`
	EstoqueNovo      int             `json:"estoque_novo"`
	CustoUnitario    decimal.Decimal `json:"custo_unitario"`
	ValorTotal       decimal.Decimal `json:"valor_total"`
	Documento        string          `json:"documento"`
	NotaEntradaID    *string         `json:"nota_entrada_id,omitempty"`
	Usuario          string          `json:"usuario"`
	Motivo           string          `json:"motivo"`
	CreatedAt        string          `json:"created_at"`
}

type MovimentacaoListResponse struct {
	Data  []MovimentacaoResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
