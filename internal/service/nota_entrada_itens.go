package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autopecas/internal/documento"
	"autopecas/internal/dto"
	"autopecas/internal/matching"
	"autopecas/internal/model"
	"autopecas/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Item insertion / removal ─────────────────────────────────────────────────

func (s *notaEntradaService) AdicionarItem(ctx context.Context, usuarioID, id uuid.UUID, req dto.ItemNotaEntradaRequest) (*dto.NotaEntradaResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := exigirEditavel(nota); err != nil {
			return err
		}

		it, err := s.novoItemTx(tx, req)
		if err != nil {
			return err
		}
		it.NotaEntradaID = nota.ID
		it.NumeroItem = len(nota.Itens) + 1
		if err := s.repo.CreateItemTx(tx, it); err != nil {
			return fmt.Errorf("criar item: %w", err)
		}
		nota.Itens = append(nota.Itens, *it)

		// a new unconferred line reopens the conference
		if nota.Status == model.StatusConferida {
			nota.Status = model.StatusEmConferencia
		}
		if err := s.recalcularTx(tx, nota); err != nil {
			return err
		}
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			ItemID:    &it.ID,
			Acao:      model.AcaoItemAdicionado,
			Descricao: fmt.Sprintf("Item %d adicionado: %s", it.NumeroItem, it.Descricao),
			Dados: map[string]any{
				"numero_item":    it.NumeroItem,
				"quantidade":     it.Quantidade,
				"valor_unitario": it.ValorUnitario,
				"valor_total":    it.ValorTotal,
			},
			UsuarioID: usuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.ObterPorID(ctx, id)
}

func (s *notaEntradaService) RemoverItem(ctx context.Context, usuarioID, id, itemID uuid.UUID) (*dto.NotaEntradaResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := exigirEditavel(nota); err != nil {
			return err
		}
		alvo, err := itemDaNota(nota, itemID)
		if err != nil {
			return err
		}
		removido := *alvo
		if err := s.repo.DeleteItemTx(tx, alvo); err != nil {
			return fmt.Errorf("remover item: %w", err)
		}

		restantes := make([]model.ItemNotaEntrada, 0, len(nota.Itens)-1)
		for _, it := range nota.Itens {
			if it.ID == itemID {
				continue
			}
			it.NumeroItem = len(restantes) + 1
			restantes = append(restantes, it)
		}
		nota.Itens = restantes

		if nota.Status == model.StatusEmConferencia && nota.TodosConferidos() {
			marcarConferida(nota, usuarioID)
		}
		if err := s.recalcularTx(tx, nota); err != nil {
			return err
		}
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			ItemID:    &removido.ID,
			Acao:      model.AcaoItemRemovido,
			Descricao: fmt.Sprintf("Item %d removido: %s", removido.NumeroItem, removido.Descricao),
			Dados: map[string]any{
				"numero_item": removido.NumeroItem,
				"descricao":   removido.Descricao,
				"quantidade":  removido.Quantidade,
				"valor_total": removido.ValorTotal,
			},
			UsuarioID: usuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.ObterPorID(ctx, id)
}

// ── Conference ───────────────────────────────────────────────────────────────

func marcarConferida(n *model.NotaEntrada, usuarioID uuid.UUID) {
	agora := time.Now()
	n.Status = model.StatusConferida
	n.DataConferencia = &agora
	n.ConferidoPorID = usuarioPtr(usuarioID)
}

// conferir applies a count to one line and recomputes its landed cost.
func conferir(n *model.NotaEntrada, it *model.ItemNotaEntrada, quantidade decimal.Decimal, observacao string) {
	it.Conferido = true
	it.QuantidadeConferida = quantidade
	it.Divergencia = !quantidade.Equal(it.Quantidade)
	it.Observacao = observacao
	it.CustoUnitario = CalcularCustoUnitario(n, it)
}

func (s *notaEntradaService) ConferirItem(ctx context.Context, usuarioID, id, itemID uuid.UUID, req dto.ConferirItemRequest) (*dto.NotaEntradaResponse, error) {
	if req.QuantidadeConferida.IsNegative() {
		return nil, erroValidacao("quantidade conferida não pode ser negativa")
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := exigirEditavel(nota); err != nil {
			return err
		}
		it, err := itemDaNota(nota, itemID)
		if err != nil {
			return err
		}

		conferir(nota, it, req.QuantidadeConferida, strings.TrimSpace(req.Observacao))
		if err := s.repo.SaveItemTx(tx, it); err != nil {
			return fmt.Errorf("salvar item: %w", err)
		}

		if nota.Status == model.StatusPendente {
			nota.Status = model.StatusEmConferencia
		}
		if nota.Status == model.StatusEmConferencia && nota.TodosConferidos() {
			marcarConferida(nota, usuarioID)
		}
		if err := s.repo.SaveTx(tx, nota); err != nil {
			return fmt.Errorf("salvar nota de entrada: %w", err)
		}

		descricao := fmt.Sprintf("Item %d conferido: %s de %s", it.NumeroItem,
			it.QuantidadeConferida.String(), it.Quantidade.String())
		if it.Divergencia {
			descricao += " (divergência)"
		}
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			ItemID:    &it.ID,
			Acao:      model.AcaoConferencia,
			Descricao: descricao,
			Dados: map[string]any{
				"quantidade_documento": it.Quantidade,
				"quantidade_conferida": it.QuantidadeConferida,
				"divergencia":          it.Divergencia,
				"observacao":           it.Observacao,
				"status_nota":          string(nota.Status),
			},
			UsuarioID: usuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.ObterPorID(ctx, id)
}

// ConferirTodos confers every pending line with the documented quantity.
func (s *notaEntradaService) ConferirTodos(ctx context.Context, usuarioID, id uuid.UUID) (*dto.NotaEntradaResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := exigirEditavel(nota); err != nil {
			return err
		}
		if len(nota.Itens) == 0 {
			return erroValidacao("nota de entrada sem itens")
		}

		conferidos := 0
		for i := range nota.Itens {
			it := &nota.Itens[i]
			if it.Conferido {
				continue
			}
			conferir(nota, it, it.Quantidade, it.Observacao)
			if err := s.repo.SaveItemTx(tx, it); err != nil {
				return fmt.Errorf("salvar item %d: %w", it.NumeroItem, err)
			}
			conferidos++
		}
		if nota.Status != model.StatusConferida {
			marcarConferida(nota, usuarioID)
		}
		if err := s.repo.SaveTx(tx, nota); err != nil {
			return fmt.Errorf("salvar nota de entrada: %w", err)
		}
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			Acao:      model.AcaoConferencia,
			Descricao: fmt.Sprintf("%d itens conferidos com a quantidade da nota", conferidos),
			Dados:     map[string]any{"itens_conferidos": conferidos, "status_nota": string(nota.Status)},
			UsuarioID: usuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.ObterPorID(ctx, id)
}

// ── Linking ──────────────────────────────────────────────────────────────────

func (s *notaEntradaService) VincularProduto(ctx context.Context, usuarioID, id, itemID, produtoID uuid.UUID) (*dto.NotaEntradaResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := exigirEditavel(nota); err != nil {
			return err
		}
		it, err := itemDaNota(nota, itemID)
		if err != nil {
			return err
		}
		produto, err := s.buscarProdutoTx(tx, produtoID)
		if err != nil {
			return err
		}

		anterior := it.ProdutoID
		it.ProdutoID = &produto.ID
		if err := s.repo.SaveItemTx(tx, it); err != nil {
			return fmt.Errorf("vincular item: %w", err)
		}
		dados := map[string]any{"produto_id": produto.ID.String(), "codigo": produto.Codigo, "criterio": "manual"}
		if anterior != nil {
			dados["produto_anterior_id"] = anterior.String()
		}
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			ItemID:    &it.ID,
			Acao:      model.AcaoVinculo,
			Descricao: fmt.Sprintf("Item %d vinculado ao produto %s - %s", it.NumeroItem, produto.Codigo, produto.Descricao),
			Dados:     dados,
			UsuarioID: usuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.ObterPorID(ctx, id)
}

func (s *notaEntradaService) DesvincularProduto(ctx context.Context, usuarioID, id, itemID uuid.UUID) (*dto.NotaEntradaResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := exigirEditavel(nota); err != nil {
			return err
		}
		it, err := itemDaNota(nota, itemID)
		if err != nil {
			return err
		}
		if it.ProdutoID == nil {
			return erroValidacao("item %d não está vinculado a um produto", it.NumeroItem)
		}

		anterior := *it.ProdutoID
		it.ProdutoID = nil
		if err := s.repo.SaveItemTx(tx, it); err != nil {
			return fmt.Errorf("desvincular item: %w", err)
		}
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			ItemID:    &it.ID,
			Acao:      model.AcaoDesvinculo,
			Descricao: fmt.Sprintf("Item %d desvinculado do produto %s", it.NumeroItem, anterior),
			Dados:     map[string]any{"produto_id": anterior.String()},
			UsuarioID: usuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.ObterPorID(ctx, id)
}

// VincularAutomaticamente runs the matcher again over the unlinked lines.
func (s *notaEntradaService) VincularAutomaticamente(ctx context.Context, usuarioID, id uuid.UUID) (*dto.VinculoAutomaticoResponse, error) {
	resp := &dto.VinculoAutomaticoResponse{}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := exigirEditavel(nota); err != nil {
			return err
		}

		matcher := matching.New(repository.NewCatalogoProdutos(tx))
		for i := range nota.Itens {
			it := &nota.Itens[i]
			if it.ProdutoID != nil {
				continue
			}
			produtoID, criterio, err := matcher.Encontrar(ctx, linhaDoItem(it))
			if err != nil {
				return fmt.Errorf("vincular item %d: %w", it.NumeroItem, err)
			}
			if produtoID == nil {
				continue
			}
			it.ProdutoID = produtoID
			if err := s.repo.SaveItemTx(tx, it); err != nil {
				return fmt.Errorf("vincular item %d: %w", it.NumeroItem, err)
			}
			if err := s.registrarVinculoTx(tx, nota.ID, it, criterio, usuarioID); err != nil {
				return err
			}
			resp.ItensVinculados++
		}
		resp.ItensPendentes = nota.ItensPendentes()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ── Product creation ─────────────────────────────────────────────────────────

// CriarProdutoDoItem registers a catalog product from an unmatched line and
// links the line to it.
func (s *notaEntradaService) CriarProdutoDoItem(ctx context.Context, usuarioID, id, itemID uuid.UUID, req dto.CriarProdutoDoItemRequest) (*dto.ProdutoResponse, error) {
	var produto *model.Produto
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := exigirEditavel(nota); err != nil {
			return err
		}
		it, err := itemDaNota(nota, itemID)
		if err != nil {
			return err
		}
		if it.ProdutoID != nil {
			return erroValidacao("item %d já está vinculado a um produto", it.NumeroItem)
		}

		p, err := s.produtoDoItemTx(tx, nota, it, req)
		if err != nil {
			return err
		}
		if err := s.produtos.CreateTx(tx, p); err != nil {
			return fmt.Errorf("criar produto: %w", err)
		}

		it.ProdutoID = &p.ID
		if err := s.repo.SaveItemTx(tx, it); err != nil {
			return fmt.Errorf("vincular item: %w", err)
		}
		produto = p
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			ItemID:    &it.ID,
			Acao:      model.AcaoCriacaoProduto,
			Descricao: fmt.Sprintf("Produto %s - %s criado a partir do item %d", p.Codigo, p.Descricao, it.NumeroItem),
			Dados: map[string]any{
				"produto_id":   p.ID.String(),
				"codigo":       p.Codigo,
				"preco_custo":  p.PrecoCusto,
				"preco_venda":  p.PrecoVenda,
				"margem_lucro": p.MargemLucro,
			},
			UsuarioID: usuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	resp := produtoToResponse(produto)
	return &resp, nil
}

// produtoDoItemTx derives the product from the line's supplier data and the
// caller's overrides. Cash price is cost / (1 - margin/100), credit is cash
// plus 5%, debit equals cash.
func (s *notaEntradaService) produtoDoItemTx(tx *gorm.DB, nota *model.NotaEntrada, it *model.ItemNotaEntrada, req dto.CriarProdutoDoItemRequest) (*model.Produto, error) {
	codigo := ""
	if req.Codigo != nil {
		codigo = strings.TrimSpace(*req.Codigo)
	}
	if codigo != "" {
		existe, err := s.produtos.ExisteCodigoTx(tx, codigo)
		if err != nil {
			return nil, fmt.Errorf("verificar código: %w", err)
		}
		if existe {
			return nil, erroValidacao("já existe um produto com o código %s", codigo)
		}
	} else {
		proximo, err := s.produtos.ProximoCodigoTx(tx)
		if err != nil {
			return nil, fmt.Errorf("gerar código: %w", err)
		}
		codigo = proximo
	}

	custo := it.CustoUnitario
	if !custo.IsPositive() {
		custo = it.ValorUnitario
	}
	custo = custo.Round(2)

	margem := nota.MargemPadrao
	if req.MargemLucro != nil {
		margem = *req.MargemLucro
	}
	if margem.GreaterThanOrEqual(cem) {
		margem = margemSubstituta
	}
	venda := PrecoVendaPorMargem(custo, margem)
	if req.PrecoVenda != nil {
		venda = req.PrecoVenda.Round(2)
	}

	p := &model.Produto{
		Codigo:               codigo,
		ReferenciaFabricante: it.CodigoFornecedor,
		Descricao:            it.Descricao,
		Unidade:              it.Unidade,
		NCM:                  it.NCM,
		PrecoCusto:           custo,
		PrecoVenda:           venda,
		PrecoVendaDebito:     venda,
		PrecoVendaCredito:    PrecoCredito(venda),
		MargemLucro:          margem,
		FornecedorID:         nota.FornecedorID,
		Ativo:                true,
	}
	if documento.CodigoBarrasValido(it.CodigoBarras) {
		cb := it.CodigoBarras
		p.CodigoBarras = &cb
	}
	if p.Unidade == "" {
		p.Unidade = "UN"
	}
	if req.Descricao != nil && strings.TrimSpace(*req.Descricao) != "" {
		p.Descricao = strings.TrimSpace(*req.Descricao)
	}
	if req.Marca != nil {
		p.Marca = strings.TrimSpace(*req.Marca)
	}
	if req.CategoriaID != nil && *req.CategoriaID != "" {
		cid, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, erroValidacao("categoria_id inválido")
		}
		var cat model.Categoria
		if err := tx.Where("id = ?", cid).First(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, erroNaoEncontrado("categoria não encontrada")
			}
			return nil, fmt.Errorf("buscar categoria: %w", err)
		}
		p.CategoriaID = &cat.ID
	}
	return p, nil
}
