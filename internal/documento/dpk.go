package documento

import "regexp"

// DPK order lines:
//
//	001 FO-1234 FILTRO DE OLEO TECFIL PSL55 UN 10 18,50 185,00
var layoutDPK = layoutItem{
	re: regexp.MustCompile(
		`^(\d{1,4})\s+([A-Z0-9][A-Z0-9.\-/]{1,24})\s+(.+?)\s+([A-Za-z]{1,3})\s+(\d[\d.,]*)\s+(\d[\d.,]*)\s+(\d[\d.,]*)$`),
	numero: 1, codigo: 2, descricao: 3, unid: 4,
	quantidade: 5, unitario: 6, total: 7,
}

func extrairDPK(linhas []string, res *Resultado) {
	layoutDPK.extrair(linhas, res)
	if res.Emitente.RazaoSocial == "" {
		res.Emitente.RazaoSocial = "DPK Distribuidora"
	}
}
