package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarFornecedorRequest struct {
	RazaoSocial       string `json:"razao_social"       validate:"required,min=2,max=150"`
	NomeFantasia      string `json:"nome_fantasia"      validate:"max=150"`
	CNPJ              string `json:"cnpj"               validate:"required,min=11,max=20"`
	InscricaoEstadual string `json:"inscricao_estadual" validate:"max=20"`
	Logradouro        string `json:"logradouro"`
	Numero            string `json:"numero"`
	Bairro            string `json:"bairro"`
	Cidade            string `json:"cidade"`
	UF                string `json:"uf"                 validate:"omitempty,len=2"`
	CEP               string `json:"cep"`
	Telefone          string `json:"telefone"`
	Email             string `json:"email"              validate:"omitempty,email"`
	PrazoEntregaDias  int    `json:"prazo_entrega_dias" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FornecedorResponse struct {
	ID                string `json:"id"`
	RazaoSocial       string `json:"razao_social"`
	NomeFantasia      string `json:"nome_fantasia"`
	CNPJ              string `json:"cnpj"`
	InscricaoEstadual string `json:"inscricao_estadual"`
	Cidade            string `json:"cidade"`
	UF                string `json:"uf"`
	Telefone          string `json:"telefone"`
	Email             string `json:"email"`
	PrazoEntregaDias  int    `json:"prazo_entrega_dias"`
	Ativo             bool   `json:"ativo"`
}

type CotacaoResponse struct {
	ID               string          `json:"id"`
	ProdutoID        string          `json:"produto_id"`
	ProdutoCodigo    string          `json:"produto_codigo,omitempty"`
	ProdutoDescricao string          `json:"produto_descricao,omitempty"`
	FornecedorID     string          `json:"fornecedor_id"`
	Preco            decimal.Decimal `json:"preco"`
	PrazoEntregaDias int             `json:"prazo_entrega_dias"`
	Observacao       string          `json:"observacao"`
	DataCotacao      string          `json:"data_cotacao"`
}
