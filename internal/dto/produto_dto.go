package dto

import "github.com/shopspring/decimal"

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProdutoFilter struct {
	Busca        string `form:"busca"`
	CodigoBarras string `form:"codigo_barras"`
	CategoriaID  string `form:"categoria_id"`
	FornecedorID string `form:"fornecedor_id"`
	Ativo        string `form:"ativo"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoResponse struct {
	ID                   string          `json:"id"`
	Codigo               string          `json:"codigo"`
	CodigoBarras         *string         `json:"codigo_barras"`
	ReferenciaFabricante string          `json:"referencia_fabricante"`
	Descricao            string          `json:"descricao"`
	Marca                string          `json:"marca"`
	CategoriaID          *string         `json:"categoria_id"`
	Unidade              string          `json:"unidade"`
	NCM                  string          `json:"ncm"`
	PrecoCusto           decimal.Decimal `json:"preco_custo"`
	PrecoVenda           decimal.Decimal `json:"preco_venda"`
	PrecoVendaDebito     decimal.Decimal `json:"preco_venda_debito"`
	PrecoVendaCredito    decimal.Decimal `json:"preco_venda_credito"`
	MargemLucro          decimal.Decimal `json:"margem_lucro"`
	Estoque              int             `json:"estoque"`
	EstoqueMinimo        int             `json:"estoque_minimo"`
	FornecedorID         *string         `json:"fornecedor_id"`
	Ativo                bool            `json:"ativo"`
}

type ProdutoListResponse struct {
	Data       []ProdutoResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ConsultaPrecoResponse is returned by the public price check endpoint (no auth required).
type ConsultaPrecoResponse struct {
	Descricao         string          `json:"descricao"`
	Marca             string          `json:"marca"`
	PrecoVenda        decimal.Decimal `json:"preco_venda"`
	PrecoVendaDebito  decimal.Decimal `json:"preco_venda_debito"`
	PrecoVendaCredito decimal.Decimal `json:"preco_venda_credito"`
	EstoqueDisponivel int             `json:"estoque_disponivel"`
}
