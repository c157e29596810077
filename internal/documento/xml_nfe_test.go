package documento_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autopecas/internal/documento"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

const nfeCompleta = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35240312345678000190550010000123451000123458" versao="4.00">
      <ide>
        <natOp>VENDA DE MERCADORIA</natOp>
        <serie>1</serie>
        <nNF>12345</nNF>
        <dhEmi>2024-03-12T10:30:00-03:00</dhEmi>
      </ide>
      <emit>
        <CNPJ>12345678000190</CNPJ>
        <xNome>DISTRIBUIDORA DE AUTOPECAS SUL LTDA</xNome>
        <xFant>AUTOPECAS SUL</xFant>
        <enderEmit>
          <xLgr>RUA DAS OFICINAS</xLgr>
          <nro>450</nro>
          <xBairro>DISTRITO INDUSTRIAL</xBairro>
          <xMun>CAMPINAS</xMun>
          <UF>SP</UF>
          <CEP>13050000</CEP>
          <fone>1932221100</fone>
        </enderEmit>
        <IE>244123456117</IE>
      </emit>
      <det nItem="1">
        <prod>
          <cProd>FO-1234</cProd>
          <cEAN>SEM GTIN</cEAN>
          <xProd>FILTRO DE OLEO PSL55</xProd>
          <NCM>84212300</NCM>
          <CEST>0104900</CEST>
          <CFOP>5405</CFOP>
          <uCom>UN</uCom>
          <qCom>10.0000</qCom>
          <vUnCom>18.5000000000</vUnCom>
          <vProd>185.00</vProd>
          <cEANTrib>7891234567895</cEANTrib>
        </prod>
        <imposto>
          <ICMS>
            <ICMS10>
              <orig>0</orig>
              <CST>10</CST>
              <vICMSST>12.30</vICMSST>
            </ICMS10>
          </ICMS>
          <IPI>
            <cEnq>999</cEnq>
            <IPITrib>
              <CST>50</CST>
              <vIPI>9.25</vIPI>
            </IPITrib>
          </IPI>
        </imposto>
      </det>
      <det nItem="2">
        <prod>
          <cProd>PF-2201</cProd>
          <cEAN>00000000</cEAN>
          <xProd>PASTILHA FREIO DIANTEIRA</xProd>
          <NCM>68138110</NCM>
          <CFOP>5102</CFOP>
          <uCom>JG</uCom>
          <qCom>2</qCom>
          <vUnCom>89.90</vUnCom>
          <vProd>179.80</vProd>
          <vDesc>4.80</vDesc>
        </prod>
        <imposto>
          <ICMS><ICMS00><CST>00</CST></ICMS00></ICMS>
        </imposto>
      </det>
      <total>
        <ICMSTot>
          <vProd>364.80</vProd>
          <vST>12.30</vST>
          <vFrete>20.00</vFrete>
          <vSeg>0.00</vSeg>
          <vDesc>4.80</vDesc>
          <vIPI>9.25</vIPI>
          <vOutro>0.00</vOutro>
          <vNF>401.55</vNF>
        </ICMSTot>
      </total>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParseXML_NFeCompleta(t *testing.T) {
	res := documento.ParseXML([]byte(nfeCompleta))

	require.True(t, res.Sucesso, "erros: %v", res.Erros)
	assert.Equal(t, documento.FormatoNFe, res.Formato)
	assert.Empty(t, res.Avisos)

	assert.Equal(t, "35240312345678000190550010000123451000123458", res.Cabecalho.ChaveAcesso)
	assert.Equal(t, "12345", res.Cabecalho.Numero)
	assert.Equal(t, "1", res.Cabecalho.Serie)
	assert.Equal(t, "VENDA DE MERCADORIA", res.Cabecalho.NaturezaOperacao)
	require.NotNil(t, res.Cabecalho.DataEmissao)
	assert.Equal(t, "2024-03-12T13:30:00Z", res.Cabecalho.DataEmissao.UTC().Format("2006-01-02T15:04:05Z07:00"))

	e := res.Emitente
	assert.Equal(t, "12.345.678/0001-90", e.CNPJ)
	assert.Equal(t, "DISTRIBUIDORA DE AUTOPECAS SUL LTDA", e.RazaoSocial)
	assert.Equal(t, "AUTOPECAS SUL", e.NomeFantasia)
	assert.Equal(t, "244123456117", e.InscricaoEstadual)
	assert.Equal(t, "CAMPINAS", e.Cidade)
	assert.Equal(t, "SP", e.UF)
	assert.Equal(t, "13050000", e.CEP)

	require.Len(t, res.Itens, 2)
	it := res.Itens[0]
	assert.Equal(t, 1, it.NumeroItem)
	assert.Equal(t, "FO-1234", it.Codigo)
	assert.Equal(t, "7891234567895", it.CodigoBarras, "cEAN sentinel falls back to cEANTrib")
	assert.Equal(t, "84212300", it.NCM)
	assert.Equal(t, "0104900", it.CEST)
	assertDecimal(t, "10", it.Quantidade)
	assertDecimal(t, "18.5", it.ValorUnitario)
	assertDecimal(t, "185", it.ValorTotal)
	assertDecimal(t, "9.25", it.ValorIPI)
	assertDecimal(t, "12.30", it.ValorICMSST)

	it2 := res.Itens[1]
	assert.Empty(t, it2.CodigoBarras, "all-zero barcode is rejected")
	assert.Equal(t, "JG", it2.Unidade)
	assertDecimal(t, "4.80", it2.ValorDesconto)
	assertDecimal(t, "0", it2.ValorIPI)
	assertDecimal(t, "0", it2.ValorICMSST)

	tot := res.Totais
	assertDecimal(t, "364.80", tot.ValorProdutos)
	assertDecimal(t, "20", tot.ValorFrete)
	assertDecimal(t, "4.80", tot.ValorDesconto)
	assertDecimal(t, "9.25", tot.ValorIPI)
	assertDecimal(t, "12.30", tot.ValorICMSST)
	assertDecimal(t, "401.55", tot.ValorTotal)
}

func TestParseXML_Deterministico(t *testing.T) {
	a := documento.ParseXML([]byte(nfeCompleta))
	b := documento.ParseXML([]byte(nfeCompleta))
	assert.Equal(t, a, b)
}

func TestParseXML_NamespacePrefixado(t *testing.T) {
	xml := `<nfe:NFe xmlns:nfe="http://www.portalfiscal.inf.br/nfe">
  <nfe:infNFe Id="NFe35240312345678000190550010000999991000999990">
    <nfe:ide><nfe:nNF>999</nfe:nNF><nfe:serie>2</nfe:serie><nfe:dEmi>2024-01-05</nfe:dEmi></nfe:ide>
    <nfe:emit><nfe:CNPJ>12345678000190</nfe:CNPJ><nfe:xNome>FORNECEDOR X</nfe:xNome></nfe:emit>
    <nfe:det nItem="1"><nfe:prod><nfe:cProd>A1</nfe:cProd><nfe:xProd>CORREIA</nfe:xProd>
      <nfe:uCom>UN</nfe:uCom><nfe:qCom>1</nfe:qCom><nfe:vUnCom>50.00</nfe:vUnCom><nfe:vProd>50.00</nfe:vProd></nfe:prod></nfe:det>
    <nfe:total><nfe:ICMSTot><nfe:vProd>50.00</nfe:vProd><nfe:vNF>50.00</nfe:vNF></nfe:ICMSTot></nfe:total>
  </nfe:infNFe>
</nfe:NFe>`

	res := documento.ParseXML([]byte(xml))
	require.True(t, res.Sucesso, "erros: %v", res.Erros)
	assert.Equal(t, "999", res.Cabecalho.Numero)
	assert.Equal(t, "2", res.Cabecalho.Serie)
	require.NotNil(t, res.Cabecalho.DataEmissao)
	assert.Equal(t, "2024-01-05", res.Cabecalho.DataEmissao.Format("2006-01-02"))
	require.Len(t, res.Itens, 1)
	assert.Equal(t, "CORREIA", res.Itens[0].Descricao)
}

func TestParseXML_SemNamespace(t *testing.T) {
	xml := `<NFe><infNFe Id="NFe123">
  <ide><nNF>77</nNF><serie>1</serie><dhEmi>ontem</dhEmi></ide>
  <emit><CPF>12345678909</CPF><xNome>JOAO DA SILVA</xNome></emit>
  <det nItem="1"><prod><cProd>X9</cProd><xProd>LAMPADA H4</xProd><uCom>UN</uCom>
    <qCom>4</qCom><vUnCom>12,50</vUnCom><vProd>50,00</vProd><vDesc>abc</vDesc></prod></det>
</infNFe></NFe>`

	res := documento.ParseXML([]byte(xml))
	require.True(t, res.Sucesso, "erros: %v", res.Erros)
	assert.Equal(t, "12345678909", res.Emitente.Documento())
	assert.Nil(t, res.Cabecalho.DataEmissao)

	require.Len(t, res.Itens, 1)
	assertDecimal(t, "12.50", res.Itens[0].ValorUnitario, "comma decimal fallback")
	assertDecimal(t, "50", res.Itens[0].ValorTotal)
	assertDecimal(t, "0", res.Itens[0].ValorDesconto, "malformed value becomes zero")

	assert.Contains(t, res.Avisos, "chave de acesso com formato inesperado: 123")
	assert.Contains(t, res.Avisos, `data de emissão inválida: "ontem"`)
	assert.Contains(t, res.Avisos, `valor inválido em item 1, vDesc: "abc"`)
	assert.Contains(t, res.Avisos, "grupo ICMSTot não encontrado")
}

func TestParseXML_Latin1(t *testing.T) {
	head := []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><NFe><infNFe Id="NFe1"><ide><nNF>5</nNF></ide>` +
		`<emit><CNPJ>12345678000190</CNPJ><xNome>PE`)
	// Ç = 0xC7, A = 'A', S = 'S'
	body := []byte{0xC7, 'A', 'S', ' ', 'B', 'O', 'A', 'S'}
	tail := []byte(`</xNome></emit><det nItem="1"><prod><cProd>1A2</cProd><xProd>ITEM</xProd>` +
		`<qCom>1</qCom><vUnCom>1</vUnCom><vProd>1</vProd></prod></det></infNFe></NFe>`)

	data := append(append(head, body...), tail...)
	res := documento.ParseXML(data)

	require.True(t, res.Sucesso, "erros: %v", res.Erros)
	assert.Equal(t, "PEÇAS BOAS", res.Emitente.RazaoSocial)
}

func TestParseXML_Falhas(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"not xml", "isto não é xml <", "XML inválido"},
		{"not an nfe", "<pedido><numero>1</numero></pedido>", "elemento infNFe não encontrado"},
		{"no items", `<NFe><infNFe Id="NFe1"><ide><nNF>1</nNF></ide><emit><CNPJ>1</CNPJ><xNome>A</xNome></emit></infNFe></NFe>`,
			documento.MsgSemItens},
		{"no number", `<NFe><infNFe Id="NFe1"><emit><CNPJ>1</CNPJ><xNome>A</xNome></emit>` +
			`<det><prod><cProd>A1</cProd><qCom>1</qCom></prod></det></infNFe></NFe>`, "número da nota (nNF) não encontrado"},
		{"no issuer", `<NFe><infNFe Id="NFe1"><ide><nNF>1</nNF></ide>` +
			`<det><prod><cProd>A1</cProd><qCom>1</qCom></prod></det></infNFe></NFe>`, "emitente sem CNPJ ou CPF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := documento.ParseXML([]byte(tt.input))
			assert.False(t, res.Sucesso)
			assert.Contains(t, strings.Join(res.Erros, "\n"), tt.contains)
		})
	}
}
