package documento_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autopecas/internal/documento"
)

const pedidoDPK = `DPK DISTRIBUIDORA DE PECAS LTDA
CNPJ: 12.345.678/0001-90
www.dpk.com.br
PEDIDO DE COMPRA Nº 457812
Emissão: 12/03/2024
Item Código Descrição Un Qtde Vl.Unit Vl.Total
001 FO-1234 FILTRO DE OLEO TECFIL PSL55 UN 10 18,50 185,00
002 VW-99881 PASTILHA FREIO DIANT COBREQ PC 4 89,90 359,60
Subtotal: 544,60
IPI: 27,23
Total do Pedido: 571,83`

const pedidoPellegrino = `PELLEGRINO DISTRIBUIDORA DE AUTOPEÇAS
www.pellegrino.com.br   CNPJ 98765432000110
Pedido de Venda: 20240318
Data: 18/03/2024
Seq EAN Código Descrição Un Qtd Unitário Total
1 7891234567895 PEL-1020 AMORTECEDOR DIANT COFAP PC 2 245,00 490,00
2 0000000000000 PEL-3301 JUNTA CABECOTE SABO JG 1 132,50 132,50
Sub-Total: 622,50
Valor IPI: 0,00
Valor Total: 622,50`

const pedidoDesconhecido = `AUTO PECAS CENTRAL COMERCIO LTDA
Pedido: 88123
Data: 05/02/2024
Cod Descricao Qtd Unit Total
1 AB1234 VELA IGNICAO NGK BKR6E UN 4 22,50 90,00
2 CD5678 CORREIA DENTADA GATES PC 1 145,00 145,00
3 EF9012 BOMBA DAGUA URBA PC 1 310,00 310,00
Observacao: entregar ate 10/02
Total: 545,00`

func TestDetectarFormato(t *testing.T) {
	tests := []struct {
		texto string
		want  documento.Formato
	}{
		{"Pedido emitido por DPK Distribuidora", documento.FormatoDPK},
		{"acesse WWW.DPK.COM.BR", documento.FormatoDPK},
		{"PELLEGRINO DISTRIBUIDORA", documento.FormatoPellegrino},
		{"www.pellegrino.com.br", documento.FormatoPellegrino},
		{"Loja qualquer", documento.FormatoGenerico},
		{"", documento.FormatoGenerico},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, documento.DetectarFormato(tt.texto), tt.texto)
	}
}

func TestParseTextoPedido_DPK(t *testing.T) {
	res := documento.ParseTextoPedido(pedidoDPK)

	require.True(t, res.Sucesso, "erros: %v", res.Erros)
	assert.Equal(t, documento.FormatoDPK, res.Formato)
	assert.Equal(t, "457812", res.Cabecalho.Numero)
	require.NotNil(t, res.Cabecalho.DataEmissao)
	assert.Equal(t, "2024-03-12", res.Cabecalho.DataEmissao.Format("2006-01-02"))
	assert.Equal(t, "12.345.678/0001-90", res.Emitente.CNPJ)

	require.Len(t, res.Itens, 2)
	assert.Equal(t, 1, res.Itens[0].NumeroItem)
	assert.Equal(t, "FO-1234", res.Itens[0].Codigo)
	assert.Equal(t, "FILTRO DE OLEO TECFIL PSL55", res.Itens[0].Descricao)
	assert.Equal(t, "UN", res.Itens[0].Unidade)
	assertDecimal(t, "10", res.Itens[0].Quantidade)
	assertDecimal(t, "18.50", res.Itens[0].ValorUnitario)
	assertDecimal(t, "359.60", res.Itens[1].ValorTotal)

	assertDecimal(t, "544.60", res.Totais.ValorProdutos)
	assertDecimal(t, "27.23", res.Totais.ValorIPI)
	assertDecimal(t, "571.83", res.Totais.ValorTotal)
	assert.Empty(t, res.Avisos)
}

func TestParseTextoPedido_Pellegrino(t *testing.T) {
	res := documento.ParseTextoPedido(pedidoPellegrino)

	require.True(t, res.Sucesso, "erros: %v", res.Erros)
	assert.Equal(t, documento.FormatoPellegrino, res.Formato)
	assert.Equal(t, "20240318", res.Cabecalho.Numero)
	assert.Equal(t, "98.765.432/0001-10", res.Emitente.CNPJ)

	require.Len(t, res.Itens, 2)
	assert.Equal(t, "7891234567895", res.Itens[0].CodigoBarras)
	assert.Equal(t, "PEL-1020", res.Itens[0].Codigo)
	assert.Equal(t, "AMORTECEDOR DIANT COFAP", res.Itens[0].Descricao)
	assert.Empty(t, res.Itens[1].CodigoBarras, "zero EAN is a placeholder")
	assert.Equal(t, "JG", res.Itens[1].Unidade)

	assertDecimal(t, "622.50", res.Totais.ValorProdutos)
	assertDecimal(t, "0", res.Totais.ValorIPI)
	assertDecimal(t, "622.50", res.Totais.ValorTotal)
}

func TestParseTextoPedido_FormatoGenerico(t *testing.T) {
	res := documento.ParseTextoPedido(pedidoDesconhecido)

	require.True(t, res.Sucesso, "erros: %v", res.Erros)
	assert.Equal(t, documento.FormatoGenerico, res.Formato)
	assert.Contains(t, res.Avisos, "formato não reconhecido: extração genérica encontrou 3 itens")
	assert.Contains(t, res.Avisos, "CNPJ do emitente não encontrado no documento")

	require.Len(t, res.Itens, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{res.Itens[0].NumeroItem, res.Itens[1].NumeroItem, res.Itens[2].NumeroItem})
	assert.Equal(t, "AB1234", res.Itens[0].Codigo)
	assert.Equal(t, "VELA IGNICAO NGK BKR6E", res.Itens[0].Descricao)
	assert.Equal(t, "UN", res.Itens[0].Unidade)
	assert.Equal(t, "CORREIA DENTADA GATES", res.Itens[1].Descricao)
	assert.Equal(t, "PC", res.Itens[1].Unidade)

	assertDecimal(t, "545", res.Totais.ValorProdutos)
	assertDecimal(t, "545", res.Totais.ValorTotal)
}

func TestParseTextoPedido_GenericoRejeitaLinhasImplausiveis(t *testing.T) {
	texto := `Pedido: 5555
1 AB1234 TOTAL ERRADO UN 4 22,50 150,00
2 SEMDIGITO PRODUTO PC 1 10,00 10,00
3 XY9 CABO VELA UN 2 10,00 21,00`

	res := documento.ParseTextoPedido(texto)
	require.Len(t, res.Itens, 1, "only the line within tolerance with a valid code survives")
	assert.Equal(t, "XY9", res.Itens[0].Codigo)
}

func TestParseTextoPedido_SemItens(t *testing.T) {
	res := documento.ParseTextoPedido("Pedido: 1234\nnada aqui")

	assert.False(t, res.Sucesso)
	assert.Contains(t, res.Erros, documento.MsgSemItens)
	assert.Contains(t, res.Avisos, "formato não reconhecido: extração genérica encontrou 0 itens")
}

func TestParseTextoPedido_SemNumero(t *testing.T) {
	res := documento.ParseTextoPedido("1 AB1234 VELA IGNICAO UN 4 22,50 90,00")

	assert.False(t, res.Sucesso)
	assert.Len(t, res.Itens, 1)
	assert.Contains(t, res.Erros, "número do pedido não encontrado")
}

func TestParsePDF_ArquivoInvalido(t *testing.T) {
	res := documento.ParsePDF([]byte("%PDF-1.4 isto não é um pdf de verdade"))

	assert.False(t, res.Sucesso)
	assert.NotEmpty(t, res.Erros)
}

func TestNormalizarValor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234.567,89", "1234567.89"},
		{"1,234,567.89", "1234567.89"},
		{"12,5", "12.5"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"95.00", "95.00"},
		{"R$ 1.000,00", "1000.00"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, documento.NormalizarValor(tt.in), tt.in)
	}
}

func TestParseValor(t *testing.T) {
	d, ok := documento.ParseValor("2.345,10")
	require.True(t, ok)
	assertDecimal(t, "2345.10", d)

	_, ok = documento.ParseValor("abc")
	assert.False(t, ok)
}

func TestFormatarCNPJ(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-90", documento.FormatarCNPJ("12345678000190"))
	assert.Equal(t, "12.345.678/0001-90", documento.FormatarCNPJ("12.345.678/0001-90"))
	assert.Equal(t, "123456", documento.FormatarCNPJ(" 123456 "))
}

func TestCodigoBarrasValido(t *testing.T) {
	for _, s := range []string{"", "SEM GTIN", "sem gtin", "SEM EAN", "0000000000000", "   "} {
		assert.False(t, documento.CodigoBarrasValido(s), "%q", s)
	}
	assert.True(t, documento.CodigoBarrasValido("7891234567895"))
}
