package documento

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Header patterns shared by every purchase-order layout. [ \t] instead of \s
// keeps a label from capturing the first number of the next line.
var (
	reNumeroPedido = regexp.MustCompile(`(?i)pedido(?:[ \t]+de[ \t]+(?:compra|venda))?[ \t]*(?:n[º°o]?\.?[ \t]*)?[:#]?[ \t]*(\d{3,})`)
	reDataPedido   = regexp.MustCompile(`(?i)(?:emiss[ãa]o|data(?:[ \t]+do[ \t]+pedido)?)[ \t]*:?[ \t]*(\d{2}/\d{2}/\d{4})`)
	reSubtotal     = regexp.MustCompile(`(?i)\bsub-?[ \t]?total[ \t]*:?[ \t]*(?:R\$[ \t]*)?(\d[\d.,]*)`)
	reIPI          = regexp.MustCompile(`(?i)\bipi[ \t]*:?[ \t]*(?:R\$[ \t]*)?(\d[\d.,]*)`)
	reTotal        = regexp.MustCompile(`(?im)(?:^|[^a-z-])(?:valor[ \t]+)?total(?:[ \t]+(?:geral|do[ \t]+pedido))?[ \t]*:?[ \t]*(?:R\$[ \t]*)?(\d[\d.,]*)`)
	reCNPJRotulo   = regexp.MustCompile(`(?i)cnpj[ \t]*:?[ \t]*(\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2})`)
	reCNPJ         = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}`)
)

func ultimaCaptura(re *regexp.Regexp, texto string) string {
	all := re.FindAllStringSubmatch(texto, -1)
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1][1]
}

func primeiraCaptura(re *regexp.Regexp, texto string) string {
	m := re.FindStringSubmatch(texto)
	if m == nil {
		return ""
	}
	return m[1]
}

func lerCabecalhoPedido(texto string, res *Resultado) {
	res.Cabecalho.Numero = primeiraCaptura(reNumeroPedido, texto)

	if bruto := primeiraCaptura(reDataPedido, texto); bruto != "" {
		if t, err := time.Parse("02/01/2006", bruto); err == nil {
			res.Cabecalho.DataEmissao = &t
		} else {
			res.aviso("data de emissão inválida: %q", bruto)
		}
	}

	cnpj := primeiraCaptura(reCNPJRotulo, texto)
	if cnpj == "" {
		cnpj = reCNPJ.FindString(texto)
	}
	if cnpj != "" {
		res.Emitente.CNPJ = FormatarCNPJ(cnpj)
	}

	// totals stay zero here; fecharTotaisPedido fills the gaps from the items
	if v := ultimaCaptura(reSubtotal, texto); v != "" {
		res.Totais.ValorProdutos = valorOuAviso(v, "subtotal", res)
	}
	if v := ultimaCaptura(reIPI, texto); v != "" {
		res.Totais.ValorIPI = valorOuAviso(v, "IPI", res)
	}
	if v := ultimaCaptura(reTotal, texto); v != "" {
		res.Totais.ValorTotal = valorOuAviso(v, "total", res)
	}
}

func fecharTotaisPedido(res *Resultado) {
	soma := decimal.Zero
	for _, it := range res.Itens {
		soma = soma.Add(it.ValorTotal)
	}
	t := &res.Totais
	switch {
	case t.ValorProdutos.IsZero():
		t.ValorProdutos = soma
	case len(res.Itens) > 0 && t.ValorProdutos.Sub(soma).Abs().GreaterThan(decimal.NewFromFloat(0.01)):
		res.aviso("soma dos itens (%s) difere do subtotal do documento (%s)",
			soma.StringFixed(2), t.ValorProdutos.StringFixed(2))
	}
	if t.ValorTotal.IsZero() {
		t.ValorTotal = t.ValorProdutos.Add(t.ValorIPI)
	}
}

func valorOuAviso(bruto, campo string, res *Resultado) decimal.Decimal {
	d, ok := ParseValor(bruto)
	if !ok {
		res.aviso("valor inválido em %s: %q", campo, bruto)
		return decimal.Zero
	}
	return d
}

// ── Vendor line layouts ────────────────────────────────────────────────────

// layoutItem binds an item-line regex to the capture group of each field.
// A zero index means the layout does not carry that field.
type layoutItem struct {
	re                                   *regexp.Regexp
	numero, ean, codigo, descricao, unid int
	quantidade, unitario, total          int
}

func (l layoutItem) extrair(linhas []string, res *Resultado) {
	for _, linha := range linhas {
		m := l.re.FindStringSubmatch(linha)
		if m == nil {
			continue
		}
		it := Item{
			Codigo:    m[l.codigo],
			Descricao: strings.TrimSpace(m[l.descricao]),
			Unidade:   strings.ToUpper(m[l.unid]),
		}
		if n, err := strconv.Atoi(m[l.numero]); err == nil {
			it.NumeroItem = n
		}
		if l.ean > 0 && CodigoBarrasValido(m[l.ean]) {
			it.CodigoBarras = m[l.ean]
		}
		onde := "item " + m[l.numero]
		it.Quantidade = valorOuAviso(m[l.quantidade], onde+", quantidade", res)
		it.ValorUnitario = valorOuAviso(m[l.unitario], onde+", valor unitário", res)
		it.ValorTotal = valorOuAviso(m[l.total], onde+", valor total", res)
		res.Itens = append(res.Itens, it)
	}
	renumerarSeNecessario(res)
}

// renumerarSeNecessario keeps item numbers unique and positive even when the
// vendor restarts the sequence on each page.
func renumerarSeNecessario(res *Resultado) {
	vistos := make(map[int]bool, len(res.Itens))
	ok := true
	for _, it := range res.Itens {
		if it.NumeroItem <= 0 || vistos[it.NumeroItem] {
			ok = false
			break
		}
		vistos[it.NumeroItem] = true
	}
	if ok {
		return
	}
	for i := range res.Itens {
		res.Itens[i].NumeroItem = i + 1
	}
}
