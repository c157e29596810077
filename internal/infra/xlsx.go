package infra

import (
	"bytes"
	"fmt"

	"autopecas/internal/model"

	"github.com/xuri/excelize/v2"
)

const planilhaItens = "Itens"

var cabecalhoItens = []string{
	"Item", "Código fornecedor", "Código de barras", "Descrição", "NCM", "CFOP", "Unidade",
	"Quantidade", "Qtd. conferida", "Valor unitário", "Desconto", "Valor total",
	"IPI", "ICMS ST", "Custo unitário", "Produto", "Conferido", "Divergência",
}

// ExportarItensXLSX writes the receipt lines as a single-sheet workbook.
// nota.Itens must be loaded; Produto is optional per line.
func ExportarItensXLSX(nota *model.NotaEntrada) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", planilhaItens); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	// Add headers
	for i, h := range cabecalhoItens {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(planilhaItens, cell, h)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(cabecalhoItens), 1)
		f.SetCellStyle(planilhaItens, "A1", last, bold)
	}

	// Add data
	for r, it := range nota.Itens {
		produto := ""
		if it.Produto != nil {
			produto = it.Produto.Codigo + " - " + it.Produto.Descricao
		}
		row := []any{
			it.NumeroItem, it.CodigoFornecedor, it.CodigoBarras, it.Descricao, it.NCM, it.CFOP, it.Unidade,
			it.Quantidade.InexactFloat64(), it.QuantidadeConferida.InexactFloat64(),
			it.ValorUnitario.InexactFloat64(), it.ValorDesconto.InexactFloat64(), it.ValorTotal.InexactFloat64(),
			it.ValorIPI.InexactFloat64(), it.ValorICMSST.InexactFloat64(), it.CustoUnitario.InexactFloat64(),
			produto, simNao(it.Conferido), simNao(it.Divergencia),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(planilhaItens, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx: row %d: %w", r+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func simNao(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
