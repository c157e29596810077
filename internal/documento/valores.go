package documento

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizarValor rewrites a monetary string to the "1234.56" form.
//
// With both separators present the one that appears last is the decimal
// separator ("1.234,56" vs "1,234.56"). A lone comma is decimal; repeated
// periods or commas are thousands separators.
func NormalizarValor(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return ""
	}

	ultimaVirgula := strings.LastIndex(s, ",")
	ultimoPonto := strings.LastIndex(s, ".")

	switch {
	case ultimaVirgula >= 0 && ultimoPonto >= 0:
		if ultimaVirgula > ultimoPonto {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case ultimaVirgula >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case ultimoPonto >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// ParseValor parses a monetary string in either Brazilian or US notation.
func ParseValor(s string) (decimal.Decimal, bool) {
	n := NormalizarValor(s)
	if n == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(n)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parseDecimalXML reads NF-e decimals, which use "." but are sometimes
// hand-edited with ",".
func parseDecimalXML(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d, true
	}
	return ParseValor(s)
}

// SomenteDigitos drops every non-digit rune.
func SomenteDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatarCNPJ punctuates a 14-digit CNPJ as 00.000.000/0000-00. Any other
// input is returned trimmed and unchanged.
func FormatarCNPJ(s string) string {
	d := SomenteDigitos(s)
	if len(d) != 14 {
		return strings.TrimSpace(s)
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// CodigoBarrasValido rejects the placeholders emitters use when a product has
// no GTIN.
func CodigoBarrasValido(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch strings.ToUpper(s) {
	case "SEM GTIN", "SEM EAN", "SEMGTIN", "SEM CODIGO", "NULL":
		return false
	}
	if strings.Trim(s, "0") == "" {
		return false
	}
	return true
}
