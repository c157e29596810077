package infra

// pdf.go — Conference report for a goods receipt using go-pdf/fpdf.
// A4 portrait with:
//   - Company name and receipt identification
//   - Supplier and dates
//   - Line table (code, description, document qty, counted qty, landed cost)
//   - Divergence marker per line
//   - Header totals

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"autopecas/internal/model"

	"github.com/go-pdf/fpdf"
)

// GerarRelatorioConferencia renders the report in memory.
func GerarRelatorioConferencia(nota *model.NotaEntrada, empresa string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(empresa), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Relatório de conferência de entrada"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Receipt info ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	ident := "NF " + nota.Numero
	if nota.Serie != "" {
		ident += " série " + nota.Serie
	}
	pdf.CellFormat(contentW, 5, tr(ident), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	if nota.Fornecedor != nil {
		pdf.CellFormat(contentW, 4, tr("Fornecedor: "+nota.Fornecedor.RazaoSocial+" ("+nota.Fornecedor.CNPJ+")"), "", 1, "L", false, 0, "")
	}
	if nota.ChaveAcesso != nil {
		pdf.CellFormat(contentW, 4, tr("Chave: "+*nota.ChaveAcesso), "", 1, "L", false, 0, "")
	}
	if nota.DataEmissao != nil {
		pdf.CellFormat(contentW, 4, tr("Emissão: "+nota.DataEmissao.Format("02/01/2006")), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, "Entrada: "+nota.DataEntrada.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Situação: "+string(nota.Status)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// ── Items header ──────────────────────────────────────────────────────────
	cols := []float64{10, 28, 72, 20, 20, 20, 20}
	pdf.SetFont("Helvetica", "B", 7)
	for i, h := range []string{"#", "Código", "Descrição", "Qtd NF", "Qtd conf.", "Custo un.", "Total"} {
		align := "L"
		if i >= 3 {
			align = "R"
		}
		pdf.CellFormat(cols[i], 5, tr(h), "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	for _, it := range nota.Itens {
		descricao := []rune(it.Descricao)
		if len(descricao) > 48 {
			descricao = append(descricao[:47], '.')
		}
		marca := ""
		if it.Divergencia {
			marca = " *"
		}
		pdf.CellFormat(cols[0], 5, fmt.Sprintf("%d%s", it.NumeroItem, marca), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 5, tr(it.CodigoFornecedor), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 5, tr(string(descricao)), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[3], 5, it.Quantidade.StringFixed(2), "", 0, "R", false, 0, "")
		conferida := "-"
		if it.Conferido {
			conferida = it.QuantidadeConferida.StringFixed(2)
		}
		pdf.CellFormat(cols[4], 5, conferida, "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[5], 5, it.CustoUnitario.StringFixed(4), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[6], 5, it.ValorTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	labelW := contentW - 30
	linha := func(label string, v string) {
		pdf.CellFormat(labelW, 4, tr(label), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 4, v, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 8)
	linha("Produtos:", nota.ValorProdutos.StringFixed(2))
	if !nota.ValorFrete.IsZero() {
		linha("Frete:", nota.ValorFrete.StringFixed(2))
	}
	if !nota.ValorIPI.IsZero() {
		linha("IPI:", nota.ValorIPI.StringFixed(2))
	}
	if !nota.ValorICMSST.IsZero() {
		linha("ICMS ST:", nota.ValorICMSST.StringFixed(2))
	}
	if !nota.ValorDesconto.IsZero() {
		linha("Desconto:", "-"+nota.ValorDesconto.StringFixed(2))
	}
	pdf.SetFont("Helvetica", "B", 9)
	linha("TOTAL:", nota.ValorTotal.StringFixed(2))

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("* item com divergência entre quantidade da nota e quantidade conferida"), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

// SalvarRelatorioConferencia writes the report to storagePath/conferencia_{id}.pdf
// and returns the file path.
func SalvarRelatorioConferencia(nota *model.NotaEntrada, empresa, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	data, err := GerarRelatorioConferencia(nota, empresa)
	if err != nil {
		return "", err
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("conferencia_%s.pdf", nota.ID))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
