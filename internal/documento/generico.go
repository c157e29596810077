package documento

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reTokenNumerico = regexp.MustCompile(`^\d[\d.,]*$`)
	reCodigoProduto = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-/]{2,19}$`)
	reSequencia     = regexp.MustCompile(`^\d{1,4}$`)

	toleranciaGenerica = decimal.NewFromFloat(0.10)

	unidadesConhecidas = map[string]bool{
		"UN": true, "UND": true, "UNID": true, "PC": true, "PÇ": true, "PCS": true,
		"CX": true, "JG": true, "KG": true, "LT": true, "L": true, "M": true,
		"MT": true, "PAR": true, "KIT": true, "CJ": true, "RL": true, "FD": true,
	}
)

// extrairGenerico accepts a line as an item when its last three numeric tokens
// read as quantity, unit price and total with qty*unit within 10% of total,
// and the line carries a 3-20 character product code with at least one digit.
func extrairGenerico(linhas []string, res *Resultado) {
	for _, linha := range linhas {
		if it, ok := itemGenerico(strings.Fields(linha)); ok {
			it.NumeroItem = len(res.Itens) + 1
			res.Itens = append(res.Itens, it)
		}
	}
}

func itemGenerico(tokens []string) (Item, bool) {
	var numericos []int
	for i, t := range tokens {
		if reTokenNumerico.MatchString(t) {
			numericos = append(numericos, i)
		}
	}
	if len(numericos) < 3 {
		return Item{}, false
	}
	cauda := numericos[len(numericos)-3:]

	qtd, ok1 := ParseValor(tokens[cauda[0]])
	unit, ok2 := ParseValor(tokens[cauda[1]])
	total, ok3 := ParseValor(tokens[cauda[2]])
	if !ok1 || !ok2 || !ok3 || !qtd.IsPositive() || !unit.IsPositive() || !total.IsPositive() {
		return Item{}, false
	}
	if qtd.Mul(unit).Sub(total).Abs().GreaterThan(total.Mul(toleranciaGenerica)) {
		return Item{}, false
	}

	antes := tokens[:cauda[0]]
	if len(antes) > 1 && reSequencia.MatchString(antes[0]) {
		antes = antes[1:]
	}

	codigo := -1
	for i, t := range antes {
		if reCodigoProduto.MatchString(t) && strings.ContainsAny(t, "0123456789") {
			codigo = i
			break
		}
	}
	if codigo < 0 {
		return Item{}, false
	}

	desc := make([]string, 0, len(antes))
	desc = append(desc, antes[:codigo]...)
	desc = append(desc, antes[codigo+1:]...)

	unidade := "UN"
	if n := len(desc); n > 0 && unidadesConhecidas[strings.ToUpper(desc[n-1])] {
		unidade = strings.ToUpper(desc[n-1])
		desc = desc[:n-1]
	}
	if len(desc) == 0 {
		return Item{}, false
	}

	return Item{
		Codigo:        antes[codigo],
		Descricao:     strings.Join(desc, " "),
		Unidade:       unidade,
		Quantidade:    qtd,
		ValorUnitario: unit,
		ValorTotal:    total,
	}, true
}
