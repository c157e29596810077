package documento

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// ParsePDF extracts the text layer of a vendor purchase order and hands it to
// ParseTextoPedido. Scanned PDFs without text produce an error result.
func ParsePDF(data []byte) *Resultado {
	texto, err := ExtrairTextoPDF(data)
	if err != nil {
		res := novoResultado(FormatoGenerico)
		res.erro("não foi possível ler o PDF: %v", err)
		return res
	}
	if strings.TrimSpace(texto) == "" {
		res := novoResultado(FormatoGenerico)
		res.erro("PDF sem texto extraível: documento digitalizado não é suportado")
		res.erro(MsgSemItens)
		return res
	}
	return ParseTextoPedido(texto)
}

// ExtrairTextoPDF returns the text of every page, one visual row per line.
// Documents whose content stream yields no positioned glyphs fall back to the
// reader's plain text.
func ExtrairTextoPDF(data []byte) (texto string, err error) {
	defer func() {
		// the reader panics on some malformed cross-reference tables
		if rec := recover(); rec != nil {
			log.Warn().Interface("panic", rec).Msg("documento: panic ao ler PDF")
			texto, err = "", fmt.Errorf("pdf corrompido: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("abrir pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, linha := range linhasDaPagina(p.Content().Text) {
			b.WriteString(linha)
			b.WriteByte('\n')
		}
	}
	if b.Len() > 0 {
		return b.String(), nil
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extrair texto: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extrair texto: %w", err)
	}
	return string(raw), nil
}

// toleranciaLinha is how far apart, in points, two glyph baselines may be and
// still belong to the same visual row.
const toleranciaLinha = 2.0

// linhasDaPagina rebuilds visual rows from positioned glyphs: top to bottom,
// then left to right. A horizontal gap wider than a quarter of the font size
// becomes a space, which separates table cells drawn with their own Td.
func linhasDaPagina(glifos []pdf.Text) []string {
	if len(glifos) == 0 {
		return nil
	}
	ordenados := make([]pdf.Text, len(glifos))
	copy(ordenados, glifos)
	sort.SliceStable(ordenados, func(i, j int) bool { return ordenados[i].Y > ordenados[j].Y })

	var linhas []string
	inicio := 0
	for i := 1; i <= len(ordenados); i++ {
		if i < len(ordenados) && ordenados[inicio].Y-ordenados[i].Y <= toleranciaLinha {
			continue
		}
		if l := montarLinha(ordenados[inicio:i]); l != "" {
			linhas = append(linhas, l)
		}
		inicio = i
	}
	return linhas
}

func montarLinha(glifos []pdf.Text) string {
	sort.SliceStable(glifos, func(i, j int) bool { return glifos[i].X < glifos[j].X })

	var b strings.Builder
	for i, g := range glifos {
		if i > 0 {
			ant := glifos[i-1]
			limiar := g.FontSize / 4
			if limiar <= 0 {
				limiar = 1
			}
			if g.X-(ant.X+ant.W) > limiar {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return normalizarLinha(b.String())
}

func normalizarLinha(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func dividirLinhas(texto string) []string {
	brutas := strings.Split(strings.ReplaceAll(texto, "\r\n", "\n"), "\n")
	linhas := make([]string, 0, len(brutas))
	for _, l := range brutas {
		if l = normalizarLinha(l); l != "" {
			linhas = append(linhas, l)
		}
	}
	return linhas
}
