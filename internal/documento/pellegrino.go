package documento

import "regexp"

// Pellegrino lines carry the EAN right after the sequence number:
//
//	1 7891234567895 PEL-1020 AMORTECEDOR DIANT COFAP PC 2 245,00 490,00
var layoutPellegrino = layoutItem{
	re: regexp.MustCompile(
		`^(\d{1,4})\s+(\d{8}|\d{12,14})\s+([A-Z0-9][A-Z0-9.\-/]{1,24})\s+(.+?)\s+([A-Za-z]{1,3})\s+(\d[\d.,]*)\s+(\d[\d.,]*)\s+(\d[\d.,]*)$`),
	numero: 1, ean: 2, codigo: 3, descricao: 4, unid: 5,
	quantidade: 6, unitario: 7, total: 8,
}

func extrairPellegrino(linhas []string, res *Resultado) {
	layoutPellegrino.extrair(linhas, res)
	if res.Emitente.RazaoSocial == "" {
		res.Emitente.RazaoSocial = "Pellegrino Distribuidora"
	}
}
