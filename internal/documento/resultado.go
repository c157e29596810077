// Package documento turns supplier documents (NF-e XML and vendor PDF purchase
// orders) into one canonical structure. Parsers never return errors for
// document content: problems are collected into Erros and Avisos.
package documento

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Formato identifies which pipeline or vendor extractor produced a Resultado.
type Formato string

const (
	FormatoNFe        Formato = "nfe"
	FormatoDPK        Formato = "dpk"
	FormatoPellegrino Formato = "pellegrino"
	FormatoGenerico   Formato = "generico"
)

const MsgSemItens = "nenhum item encontrado no documento"

type Cabecalho struct {
	Numero           string     `json:"numero"`
	Serie            string     `json:"serie"`
	ChaveAcesso      string     `json:"chave_acesso,omitempty"`
	NaturezaOperacao string     `json:"natureza_operacao,omitempty"`
	DataEmissao      *time.Time `json:"data_emissao,omitempty"`
}

type Emitente struct {
	CNPJ              string `json:"cnpj,omitempty"`
	CPF               string `json:"cpf,omitempty"`
	RazaoSocial       string `json:"razao_social,omitempty"`
	NomeFantasia      string `json:"nome_fantasia,omitempty"`
	InscricaoEstadual string `json:"inscricao_estadual,omitempty"`
	Logradouro        string `json:"logradouro,omitempty"`
	Numero            string `json:"numero,omitempty"`
	Bairro            string `json:"bairro,omitempty"`
	Cidade            string `json:"cidade,omitempty"`
	UF                string `json:"uf,omitempty"`
	CEP               string `json:"cep,omitempty"`
	Telefone          string `json:"telefone,omitempty"`
}

// Documento returns the CNPJ, or the CPF for individual issuers.
func (e Emitente) Documento() string {
	if e.CNPJ != "" {
		return e.CNPJ
	}
	return e.CPF
}

type Item struct {
	NumeroItem    int             `json:"numero_item"`
	Codigo        string          `json:"codigo"`
	CodigoBarras  string          `json:"codigo_barras,omitempty"`
	Descricao     string          `json:"descricao"`
	NCM           string          `json:"ncm,omitempty"`
	CFOP          string          `json:"cfop,omitempty"`
	CEST          string          `json:"cest,omitempty"`
	Unidade       string          `json:"unidade"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	ValorTotal    decimal.Decimal `json:"valor_total"`
	ValorDesconto decimal.Decimal `json:"valor_desconto"`
	ValorIPI      decimal.Decimal `json:"valor_ipi"`
	ValorICMSST   decimal.Decimal `json:"valor_icms_st"`
}

type Totais struct {
	ValorProdutos       decimal.Decimal `json:"valor_produtos"`
	ValorFrete          decimal.Decimal `json:"valor_frete"`
	ValorSeguro         decimal.Decimal `json:"valor_seguro"`
	ValorDesconto       decimal.Decimal `json:"valor_desconto"`
	ValorOutrasDespesas decimal.Decimal `json:"valor_outras_despesas"`
	ValorIPI            decimal.Decimal `json:"valor_ipi"`
	ValorICMSST         decimal.Decimal `json:"valor_icms_st"`
	ValorTotal          decimal.Decimal `json:"valor_total"`
}

// Resultado is the output contract shared by every pipeline.
type Resultado struct {
	Sucesso   bool      `json:"sucesso"`
	Formato   Formato   `json:"formato"`
	Cabecalho Cabecalho `json:"cabecalho"`
	Emitente  Emitente  `json:"emitente"`
	Itens     []Item    `json:"itens"`
	Totais    Totais    `json:"totais"`
	Erros     []string  `json:"erros"`
	Avisos    []string  `json:"avisos"`
}

func novoResultado(f Formato) *Resultado {
	return &Resultado{Formato: f, Itens: []Item{}, Erros: []string{}, Avisos: []string{}}
}

func (r *Resultado) erro(format string, args ...any) {
	r.Erros = append(r.Erros, fmt.Sprintf(format, args...))
}

func (r *Resultado) aviso(format string, args ...any) {
	r.Avisos = append(r.Avisos, fmt.Sprintf(format, args...))
}
