package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autopecas/internal/dto"
	"autopecas/internal/model"
	"autopecas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProdutoService exposes the catalog reads that back the receipt screens:
// product search for manual linking, price history and stock movements.
type ProdutoService interface {
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
	HistoricoPrecos(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistoricoPrecoListResponse, error)
	Movimentacoes(ctx context.Context, filter dto.MovimentacaoFilter) (*dto.MovimentacaoListResponse, error)
	Cotacoes(ctx context.Context, id uuid.UUID) ([]dto.CotacaoResponse, error)
}

type produtoService struct {
	repo          repository.ProdutoRepository
	historico     repository.HistoricoPrecoRepository
	movimentacoes repository.MovimentacaoEstoqueRepository
	cotacoes      repository.CotacaoFornecedorRepository
}

func NewProdutoService(
	repo repository.ProdutoRepository,
	historico repository.HistoricoPrecoRepository,
	movimentacoes repository.MovimentacaoEstoqueRepository,
	cotacoes repository.CotacaoFornecedorRepository,
) ProdutoService {
	return &produtoService{repo: repo, historico: historico, movimentacoes: movimentacoes, cotacoes: cotacoes}
}

func (s *produtoService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erroNaoEncontrado("produto não encontrado")
	}
	if err != nil {
		return nil, err
	}
	resp := produtoToResponse(p)
	return &resp, nil
}

func (s *produtoService) Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	produtos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page, limit := normalizarPagina(filter.Page, filter.Limit, 20, 100)
	data := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		data = append(data, produtoToResponse(&produtos[i]))
	}
	return &dto.ProdutoListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *produtoService) HistoricoPrecos(ctx context.Context, id uuid.UUID, page, limit int) (*dto.HistoricoPrecoListResponse, error) {
	if _, err := s.ObterPorID(ctx, id); err != nil {
		return nil, err
	}
	rows, total, err := s.historico.ListByProduto(ctx, id, page, limit)
	if err != nil {
		return nil, fmt.Errorf("listar histórico de preços: %w", err)
	}
	page, limit = normalizarPagina(page, limit, 50, 200)

	data := make([]dto.HistoricoPrecoItem, 0, len(rows))
	for _, h := range rows {
		item := dto.HistoricoPrecoItem{
			ID:            h.ID.String(),
			ProdutoID:     h.ProdutoID.String(),
			FornecedorID:  uuidString(h.FornecedorID),
			NotaEntradaID: uuidString(h.NotaEntradaID),
			CustoAnterior: h.CustoAnterior,
			CustoNovo:     h.CustoNovo,
			VendaAnterior: h.VendaAnterior,
			VendaNova:     h.VendaNova,
			Motivo:        h.Motivo,
			CreatedAt:     h.CreatedAt.Format(time.RFC3339),
		}
		if h.Fornecedor != nil {
			nome := h.Fornecedor.RazaoSocial
			item.FornecedorNome = &nome
		}
		data = append(data, item)
	}
	return &dto.HistoricoPrecoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *produtoService) Movimentacoes(ctx context.Context, filter dto.MovimentacaoFilter) (*dto.MovimentacaoListResponse, error) {
	f := repository.MovimentacaoFilter{Tipo: filter.Tipo, Page: filter.Page, Limit: filter.Limit}
	if filter.ProdutoID != "" {
		id, err := uuid.Parse(filter.ProdutoID)
		if err != nil {
			return nil, erroValidacao("produto_id inválido")
		}
		f.ProdutoID = &id
	}
	if filter.NotaEntradaID != "" {
		id, err := uuid.Parse(filter.NotaEntradaID)
		if err != nil {
			return nil, erroValidacao("nota_entrada_id inválido")
		}
		f.NotaEntradaID = &id
	}

	rows, total, err := s.movimentacoes.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar movimentações: %w", err)
	}
	page, limit := normalizarPagina(filter.Page, filter.Limit, 100, 500)

	data := make([]dto.MovimentacaoResponse, 0, len(rows))
	for _, m := range rows {
		r := dto.MovimentacaoResponse{
			ID:              m.ID.String(),
			ProdutoID:       m.ProdutoID.String(),
			Tipo:            m.Tipo,
			Quantidade:      m.Quantidade,
			EstoqueAnterior: m.EstoqueAnterior,
			EstoqueNovo:     m.EstoqueNovo,
			CustoUnitario:   m.CustoUnitario,
			ValorTotal:      m.ValorTotal,
			Documento:       m.Documento,
			NotaEntradaID:   uuidString(m.NotaEntradaID),
			Usuario:         m.Usuario,
			Motivo:          m.Motivo,
			CreatedAt:       m.CreatedAt.Format(time.RFC3339),
		}
		if m.Produto != nil {
			r.ProdutoDescricao = m.Produto.Descricao
		}
		data = append(data, r)
	}
	return &dto.MovimentacaoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *produtoService) Cotacoes(ctx context.Context, id uuid.UUID) ([]dto.CotacaoResponse, error) {
	if _, err := s.ObterPorID(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.cotacoes.ListByProduto(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listar cotações: %w", err)
	}
	return cotacoesToResponse(rows), nil
}

// normalizarPagina mirrors the clamping done by the repositories so responses
// report the page that was actually served.
func normalizarPagina(page, limit, padrao, maximo int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maximo {
		limit = padrao
	}
	return page, limit
}

func produtoToResponse(p *model.Produto) dto.ProdutoResponse {
	return dto.ProdutoResponse{
		ID:                   p.ID.String(),
		Codigo:               p.Codigo,
		CodigoBarras:         p.CodigoBarras,
		ReferenciaFabricante: p.ReferenciaFabricante,
		Descricao:            p.Descricao,
		Marca:                p.Marca,
		CategoriaID:          uuidString(p.CategoriaID),
		Unidade:              p.Unidade,
		NCM:                  p.NCM,
		PrecoCusto:           p.PrecoCusto,
		PrecoVenda:           p.PrecoVenda,
		PrecoVendaDebito:     p.PrecoVendaDebito,
		PrecoVendaCredito:    p.PrecoVendaCredito,
		MargemLucro:          p.MargemLucro,
		Estoque:              p.Estoque,
		EstoqueMinimo:        p.EstoqueMinimo,
		FornecedorID:         uuidString(p.FornecedorID),
		Ativo:                p.Ativo,
	}
}

func cotacoesToResponse(rows []model.CotacaoFornecedor) []dto.CotacaoResponse {
	resp := make([]dto.CotacaoResponse, 0, len(rows))
	for _, c := range rows {
		r := dto.CotacaoResponse{
			ID:               c.ID.String(),
			ProdutoID:        c.ProdutoID.String(),
			FornecedorID:     c.FornecedorID.String(),
			Preco:            c.Preco,
			PrazoEntregaDias: c.PrazoEntregaDias,
			Observacao:       c.Observacao,
			DataCotacao:      c.DataCotacao.Format(time.RFC3339),
		}
		if c.Produto != nil {
			r.ProdutoCodigo = c.Produto.Codigo
			r.ProdutoDescricao = c.Produto.Descricao
		}
		resp = append(resp, r)
	}
	return resp
}
