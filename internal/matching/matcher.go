// Package matching links receipt lines to catalog products.
//
// Tiers run in a fixed order and the first hit wins:
//
//  1. barcode
//  2. supplier code against the product code, then against the
//     manufacturer reference
//  3. description terms, accepted only when exactly one product matches
package matching

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"autopecas/internal/documento"
)

// Criterio tells which tier produced a link.
type Criterio string

const (
	CriterioNenhum       Criterio = ""
	CriterioExistente    Criterio = "existente"
	CriterioCodigoBarras Criterio = "codigo_barras"
	CriterioCodigo       Criterio = "codigo"
	CriterioReferencia   Criterio = "referencia_fabricante"
	CriterioDescricao    Criterio = "descricao"
)

const (
	maxTermos       = 3
	minTamanhoTermo = 4
)

// Catalogo is the product lookup the matcher runs against. Every method only
// considers active products and returns nil when nothing matches.
type Catalogo interface {
	BuscarPorCodigoBarras(ctx context.Context, codigo string) (*uuid.UUID, error)
	BuscarPorCodigo(ctx context.Context, codigo string) (*uuid.UUID, error)
	BuscarPorReferencia(ctx context.Context, referencia string) (*uuid.UUID, error)
	// BuscarPorTermos returns at most limite products whose description
	// contains every term, case-insensitively.
	BuscarPorTermos(ctx context.Context, termos []string, limite int) ([]uuid.UUID, error)
}

// Linha is the part of a receipt line the matcher looks at.
type Linha struct {
	ProdutoID        *uuid.UUID
	CodigoBarras     string
	CodigoFornecedor string
	Descricao        string
}

type Matcher struct {
	catalogo Catalogo
}

func New(c Catalogo) *Matcher {
	return &Matcher{catalogo: c}
}

// Encontrar runs the tiers in order. A line that is already linked keeps its
// link, so calling it again never produces a second one.
func (m *Matcher) Encontrar(ctx context.Context, l Linha) (*uuid.UUID, Criterio, error) {
	if l.ProdutoID != nil {
		return l.ProdutoID, CriterioExistente, nil
	}

	id, err := m.PorCodigoBarras(ctx, l.CodigoBarras)
	if err != nil || id != nil {
		return id, CriterioCodigoBarras, err
	}

	id, crit, err := m.PorCodigoFornecedor(ctx, l.CodigoFornecedor)
	if err != nil || id != nil {
		return id, crit, err
	}

	id, err = m.PorDescricao(ctx, l.Descricao)
	if err != nil || id != nil {
		return id, CriterioDescricao, err
	}
	return nil, CriterioNenhum, nil
}

func (m *Matcher) PorCodigoBarras(ctx context.Context, codigo string) (*uuid.UUID, error) {
	codigo = strings.TrimSpace(codigo)
	if !documento.CodigoBarrasValido(codigo) {
		return nil, nil
	}
	id, err := m.catalogo.BuscarPorCodigoBarras(ctx, codigo)
	if err != nil {
		return nil, fmt.Errorf("matching: codigo de barras: %w", err)
	}
	return id, nil
}

// PorCodigoFornecedor tries the product code first, then the manufacturer
// reference.
func (m *Matcher) PorCodigoFornecedor(ctx context.Context, codigo string) (*uuid.UUID, Criterio, error) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, CriterioNenhum, nil
	}
	id, err := m.catalogo.BuscarPorCodigo(ctx, codigo)
	if err != nil {
		return nil, CriterioNenhum, fmt.Errorf("matching: codigo: %w", err)
	}
	if id != nil {
		return id, CriterioCodigo, nil
	}
	id, err = m.catalogo.BuscarPorReferencia(ctx, codigo)
	if err != nil {
		return nil, CriterioNenhum, fmt.Errorf("matching: referencia: %w", err)
	}
	if id != nil {
		return id, CriterioReferencia, nil
	}
	return nil, CriterioNenhum, nil
}

// PorDescricao accepts a match only when the terms narrow the catalog down to
// a single product.
func (m *Matcher) PorDescricao(ctx context.Context, descricao string) (*uuid.UUID, error) {
	termos := TermosDescricao(descricao)
	if len(termos) == 0 {
		return nil, nil
	}
	ids, err := m.catalogo.BuscarPorTermos(ctx, termos, 2)
	if err != nil {
		return nil, fmt.Errorf("matching: descricao: %w", err)
	}
	if len(ids) != 1 {
		return nil, nil
	}
	return &ids[0], nil
}

// TermosDescricao keeps letters, digits and whitespace, then returns the first
// three words longer than three characters. Punctuation becomes a space rather
// than vanishing: "PASTILHA-FREIO" yields PASTILHA and FREIO, both of which a
// catalog description written with a space still contains.
func TermosDescricao(descricao string) []string {
	limpa := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, descricao)

	termos := make([]string, 0, maxTermos)
	for _, w := range strings.Fields(limpa) {
		if len([]rune(w)) < minTamanhoTermo {
			continue
		}
		termos = append(termos, w)
		if len(termos) == maxTermos {
			break
		}
	}
	return termos
}
