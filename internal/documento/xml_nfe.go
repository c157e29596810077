package documento

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"autopecas/internal/encoding"
)

const nsNFe = "http://www.portalfiscal.inf.br/nfe"

var layoutsDataEmissao = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
}

// ParseXML parses an NF-e (nfeProc or bare NFe). The same bytes always produce
// the same Resultado.
func ParseXML(data []byte) (res *Resultado) {
	res = novoResultado(FormatoNFe)
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("documento: panic no parser XML")
			res.Sucesso = false
			res.erro("falha inesperada ao processar XML: %v", rec)
		}
	}()

	conteudo, charset, err := encoding.ParaUTF8(data)
	if err != nil {
		res.erro("não foi possível decodificar o arquivo: %v", err)
		return res
	}
	if charset != encoding.UTF8 {
		res.aviso("arquivo convertido de %s para UTF-8", charset)
	}

	doc := etree.NewDocument()
	// Input is already UTF-8; ignore whatever the prolog declares.
	doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := doc.ReadFromBytes(conteudo); err != nil {
		res.erro("XML inválido: %v", err)
		return res
	}
	if doc.Root() == nil {
		res.erro("XML vazio")
		return res
	}

	inf := descendente(doc.Root(), "infNFe")
	if inf == nil {
		res.erro("elemento infNFe não encontrado: o arquivo não parece ser uma NF-e")
		return res
	}

	lerChave(inf, res)
	lerIde(filho(inf, "ide"), res)
	lerEmitente(filho(inf, "emit"), res)
	for i, det := range filhos(inf, "det") {
		res.Itens = append(res.Itens, lerItem(det, i+1, res))
	}
	lerTotais(descendente(inf, "ICMSTot"), res)

	validarNFe(res)
	return res
}

func lerChave(inf *etree.Element, res *Resultado) {
	id := strings.TrimSpace(inf.SelectAttrValue("Id", ""))
	chave := strings.TrimPrefix(id, "NFe")
	if chave == "" {
		res.aviso("chave de acesso ausente")
		return
	}
	if len(chave) != 44 || SomenteDigitos(chave) != chave {
		res.aviso("chave de acesso com formato inesperado: %s", chave)
	}
	res.Cabecalho.ChaveAcesso = chave
}

func lerIde(ide *etree.Element, res *Resultado) {
	if ide == nil {
		res.aviso("grupo ide não encontrado")
		return
	}
	res.Cabecalho.Numero = texto(ide, "nNF")
	res.Cabecalho.Serie = texto(ide, "serie")
	res.Cabecalho.NaturezaOperacao = texto(ide, "natOp")

	bruto := texto(ide, "dhEmi")
	if bruto == "" {
		bruto = texto(ide, "dEmi")
	}
	if bruto == "" {
		return
	}
	for _, layout := range layoutsDataEmissao {
		if t, err := time.Parse(layout, bruto); err == nil {
			res.Cabecalho.DataEmissao = &t
			return
		}
	}
	res.aviso("data de emissão inválida: %q", bruto)
}

func lerEmitente(emit *etree.Element, res *Resultado) {
	if emit == nil {
		return
	}
	e := &res.Emitente
	if cnpj := texto(emit, "CNPJ"); cnpj != "" {
		e.CNPJ = FormatarCNPJ(cnpj)
	}
	e.CPF = texto(emit, "CPF")
	e.RazaoSocial = texto(emit, "xNome")
	e.NomeFantasia = texto(emit, "xFant")
	e.InscricaoEstadual = texto(emit, "IE")

	end := filho(emit, "enderEmit")
	if end == nil {
		return
	}
	e.Logradouro = texto(end, "xLgr")
	e.Numero = texto(end, "nro")
	e.Bairro = texto(end, "xBairro")
	e.Cidade = texto(end, "xMun")
	e.UF = texto(end, "UF")
	e.CEP = texto(end, "CEP")
	e.Telefone = texto(end, "fone")
}

func lerItem(det *etree.Element, pos int, res *Resultado) Item {
	it := Item{NumeroItem: pos}
	if n, err := strconv.Atoi(det.SelectAttrValue("nItem", "")); err == nil && n > 0 {
		it.NumeroItem = n
	}

	prod := filho(det, "prod")
	if prod == nil {
		res.aviso("item %d sem grupo prod", it.NumeroItem)
		return it
	}

	campo := func(nome string) decimal.Decimal {
		return decimalCampo(prod, nome, it.NumeroItem, res)
	}

	it.Codigo = texto(prod, "cProd")
	it.CodigoBarras = texto(prod, "cEAN")
	if !CodigoBarrasValido(it.CodigoBarras) {
		it.CodigoBarras = texto(prod, "cEANTrib")
		if !CodigoBarrasValido(it.CodigoBarras) {
			it.CodigoBarras = ""
		}
	}
	it.Descricao = texto(prod, "xProd")
	it.NCM = texto(prod, "NCM")
	it.CFOP = texto(prod, "CFOP")
	it.CEST = texto(prod, "CEST")
	it.Unidade = texto(prod, "uCom")
	it.Quantidade = campo("qCom")
	it.ValorUnitario = campo("vUnCom")
	it.ValorTotal = campo("vProd")
	it.ValorDesconto = campo("vDesc")

	imposto := filho(det, "imposto")
	if imposto == nil {
		return it
	}
	if ipi := filho(imposto, "IPI"); ipi != nil {
		if trib := filho(ipi, "IPITrib"); trib != nil {
			it.ValorIPI = decimalCampo(trib, "vIPI", it.NumeroItem, res)
		}
	}
	if icms := filho(imposto, "ICMS"); icms != nil {
		// ICMS00, ICMS10, ICMSSN202...: only one group is present per item
		for _, grupo := range icms.ChildElements() {
			if filho(grupo, "vICMSST") != nil {
				it.ValorICMSST = decimalCampo(grupo, "vICMSST", it.NumeroItem, res)
				break
			}
		}
	}
	return it
}

func lerTotais(tot *etree.Element, res *Resultado) {
	if tot == nil {
		res.aviso("grupo ICMSTot não encontrado")
		return
	}
	campo := func(nome string) decimal.Decimal {
		return decimalCampo(tot, nome, 0, res)
	}
	t := &res.Totais
	t.ValorProdutos = campo("vProd")
	t.ValorFrete = campo("vFrete")
	t.ValorSeguro = campo("vSeg")
	t.ValorDesconto = campo("vDesc")
	t.ValorOutrasDespesas = campo("vOutro")
	t.ValorIPI = campo("vIPI")
	t.ValorICMSST = campo("vST")
	t.ValorTotal = campo("vNF")
}

func validarNFe(res *Resultado) {
	if len(res.Itens) == 0 {
		res.erro(MsgSemItens)
	}
	if res.Cabecalho.Numero == "" {
		res.erro("número da nota (nNF) não encontrado")
	}
	if res.Emitente.Documento() == "" {
		res.erro("emitente sem CNPJ ou CPF")
	}
	if res.Emitente.RazaoSocial == "" {
		res.erro("emitente sem razão social")
	}
	res.Sucesso = len(res.Erros) == 0
}

// decimalCampo reads a decimal child; malformed values become zero with a warning.
func decimalCampo(el *etree.Element, nome string, item int, res *Resultado) decimal.Decimal {
	bruto := texto(el, nome)
	d, ok := parseDecimalXML(bruto)
	if !ok {
		onde := nome
		if item > 0 {
			onde = fmt.Sprintf("item %d, %s", item, nome)
		}
		res.aviso("valor inválido em %s: %q", onde, bruto)
		return decimal.Zero
	}
	return d
}

// ── Element lookup ─────────────────────────────────────────────────────────
//
// NF-e files in the wild come with the proper default namespace, with a
// prefix (nfe:det), or with the namespace stripped altogether. Lookups try the
// NF-e namespace first and fall back to matching the local name.

func mesmoNome(el *etree.Element, nome string) bool {
	tag := el.Tag
	return tag == nome || strings.HasSuffix(tag, ":"+nome) || strings.HasSuffix(tag, "}"+nome)
}

func noNamespace(el *etree.Element, nome string) bool {
	return el.Tag == nome && el.NamespaceURI() == nsNFe
}

func filho(el *etree.Element, nome string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if noNamespace(c, nome) {
			return c
		}
	}
	for _, c := range el.ChildElements() {
		if mesmoNome(c, nome) {
			return c
		}
	}
	return nil
}

func filhos(el *etree.Element, nome string) []*etree.Element {
	var ns, sufixo []*etree.Element
	for _, c := range el.ChildElements() {
		if noNamespace(c, nome) {
			ns = append(ns, c)
		}
		if mesmoNome(c, nome) {
			sufixo = append(sufixo, c)
		}
	}
	if len(ns) > 0 {
		return ns
	}
	return sufixo
}

// descendente does a depth-first search below el.
func descendente(el *etree.Element, nome string) *etree.Element {
	if found := buscar(el, nome, noNamespace); found != nil {
		return found
	}
	return buscar(el, nome, mesmoNome)
}

func buscar(el *etree.Element, nome string, casa func(*etree.Element, string) bool) *etree.Element {
	if casa(el, nome) {
		return el
	}
	for _, c := range el.ChildElements() {
		if found := buscar(c, nome, casa); found != nil {
			return found
		}
	}
	return nil
}

func texto(el *etree.Element, nome string) string {
	c := filho(el, nome)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}
