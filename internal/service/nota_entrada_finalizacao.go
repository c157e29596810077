package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autopecas/internal/dto"
	"autopecas/internal/model"
	"autopecas/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// falhaItemError aborts the finalization transaction for one line.
type falhaItemError struct {
	numero int
	err    error
}

func (e *falhaItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.numero, e.err)
}

func (e *falhaItemError) Unwrap() error { return e.err }

// efeitoFinalizacao counts what one line changed.
type efeitoFinalizacao struct {
	preco   bool
	cotacao bool
}

// Finalizar applies the receipt to stock, cost, prices and supplier quotes in
// a single transaction. Any line failure rolls the whole receipt back.
func (s *notaEntradaService) Finalizar(ctx context.Context, usuarioID, id uuid.UUID) (*dto.ResultadoFinalizacaoResponse, error) {
	usuario := s.nomeUsuario(ctx, usuarioID)
	res := &dto.ResultadoFinalizacaoResponse{Erros: []string{}}
	var codigosBarras []string

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := validarFinalizacao(nota); err != nil {
			return err
		}

		for i := range nota.Itens {
			it := &nota.Itens[i]
			efeito, cb, err := s.finalizarItemTx(tx, nota, it, usuarioID, usuario)
			if err != nil {
				return &falhaItemError{numero: it.NumeroItem, err: err}
			}
			res.ItensProcessados++
			res.EstoqueAtualizado++
			if efeito.preco {
				res.PrecosAtualizados++
			}
			if efeito.cotacao {
				res.CotacoesAtualizadas++
			}
			if cb != "" {
				codigosBarras = append(codigosBarras, cb)
			}
		}

		agora := time.Now()
		nota.Status = model.StatusFinalizada
		nota.DataFinalizacao = &agora
		nota.FinalizadoPorID = usuarioPtr(usuarioID)
		if err := s.repo.SaveTx(tx, nota); err != nil {
			return fmt.Errorf("salvar nota de entrada: %w", err)
		}
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			Acao:      model.AcaoFinalizacao,
			Descricao: fmt.Sprintf("Nota %s finalizada: %d itens processados", nota.Numero, res.ItensProcessados),
			Dados: map[string]any{
				"itens_processados":    res.ItensProcessados,
				"precos_atualizados":   res.PrecosAtualizados,
				"cotacoes_atualizadas": res.CotacoesAtualizadas,
				"valor_total":          nota.ValorTotal,
			},
			UsuarioID: usuarioID,
		})
	})

	var falha *falhaItemError
	if errors.As(err, &falha) {
		log.Warn().Err(falha.err).Str("nota_id", id.String()).Int("item", falha.numero).
			Msg("finalização revertida")
		return &dto.ResultadoFinalizacaoResponse{
			Sucesso:  false,
			Mensagem: "Finalização revertida: nenhuma alteração foi aplicada",
			Erros:    []string{falha.Error()},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	res.Sucesso = true
	res.Mensagem = fmt.Sprintf("Nota finalizada: %d itens lançados no estoque", res.ItensProcessados)
	s.aposFinalizar(ctx, id, codigosBarras)
	return res, nil
}

func validarFinalizacao(n *model.NotaEntrada) error {
	if err := exigirEditavel(n); err != nil {
		return err
	}
	if len(n.Itens) == 0 {
		return erroValidacao("nota de entrada sem itens")
	}
	if p := n.ItensPendentes(); p > 0 {
		return erroValidacao("%d itens sem produto vinculado", p)
	}
	return nil
}

// finalizarItemTx applies one line and returns the product barcode, if any.
func (s *notaEntradaService) finalizarItemTx(tx *gorm.DB, nota *model.NotaEntrada, it *model.ItemNotaEntrada, usuarioID uuid.UUID, usuario string) (efeitoFinalizacao, string, error) {
	var efeito efeitoFinalizacao

	produto, err := s.produtos.FindByIDForUpdateTx(tx, *it.ProdutoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return efeito, "", fmt.Errorf("produto vinculado não encontrado")
	}
	if err != nil {
		return efeito, "", fmt.Errorf("buscar produto: %w", err)
	}

	quantidade := it.QuantidadeEntrada()
	estoqueAnterior := produto.Estoque
	if err := s.produtos.UpdateEstoqueTx(tx, produto.ID, quantidade); err != nil {
		return efeito, "", fmt.Errorf("atualizar estoque: %w", err)
	}
	produto.Estoque = estoqueAnterior + quantidade

	custoAnterior := produto.PrecoCusto
	vendaAnterior := produto.PrecoVenda

	custoEntrada := it.CustoUnitario
	if !custoEntrada.IsPositive() {
		custoEntrada = it.ValorUnitario
	}
	if nota.AtualizarPrecoCusto {
		produto.PrecoCusto = custoEntrada.Round(2)
	}
	if nota.AtualizarPrecoVenda && produto.PrecoCusto.IsPositive() {
		novos := ReprecificarFinalizacao(produto.PrecoCusto, nota.MargemPadrao, Precos{
			Venda:   produto.PrecoVenda,
			Debito:  produto.PrecoVendaDebito,
			Credito: produto.PrecoVendaCredito,
		})
		produto.PrecoVenda = novos.Venda
		produto.PrecoVendaDebito = novos.Debito
		produto.PrecoVendaCredito = novos.Credito
		if nota.MargemPadrao.LessThan(cem) {
			produto.MargemLucro = nota.MargemPadrao
		}
	}
	if err := s.produtos.SaveTx(tx, produto); err != nil {
		return efeito, "", fmt.Errorf("salvar produto: %w", err)
	}

	documentoNF := "NF " + nota.Numero
	mov := &model.MovimentacaoEstoque{
		ProdutoID:       produto.ID,
		Tipo:            model.MovimentacaoEntrada,
		Quantidade:      quantidade,
		EstoqueAnterior: estoqueAnterior,
		EstoqueNovo:     produto.Estoque,
		CustoUnitario:   custoEntrada.Round(4),
		ValorTotal:      custoEntrada.Mul(decimal.NewFromInt(int64(quantidade))).Round(2),
		Documento:       documentoNF,
		NotaEntradaID:   &nota.ID,
		Usuario:         usuario,
		Motivo:          "Entrada de mercadoria",
	}
	if err := s.movimentacoes.CreateTx(tx, mov); err != nil {
		return efeito, "", fmt.Errorf("registrar movimentação: %w", err)
	}

	alterouCusto := !produto.PrecoCusto.Equal(custoAnterior)
	alterouVenda := !produto.PrecoVenda.Equal(vendaAnterior)
	if alterouCusto || alterouVenda {
		h := &model.HistoricoPreco{
			ProdutoID:     produto.ID,
			FornecedorID:  nota.FornecedorID,
			NotaEntradaID: &nota.ID,
			CustoAnterior: custoAnterior,
			CustoNovo:     produto.PrecoCusto,
			VendaAnterior: vendaAnterior,
			VendaNova:     produto.PrecoVenda,
			Motivo:        documentoNF,
			UsuarioID:     usuarioPtr(usuarioID),
		}
		if err := s.historico.CreateTx(tx, h); err != nil {
			return efeito, "", fmt.Errorf("registrar histórico de preço: %w", err)
		}
		efeito.preco = true
	}

	if nota.AtualizarCotacao && nota.FornecedorID != nil {
		prazo := 0
		if nota.Fornecedor != nil {
			prazo = nota.Fornecedor.PrazoEntregaDias
		}
		agora := time.Now()
		c := &model.CotacaoFornecedor{
			ProdutoID:        produto.ID,
			FornecedorID:     *nota.FornecedorID,
			Preco:            it.ValorUnitario,
			PrazoEntregaDias: prazo,
			Observacao:       fmt.Sprintf("Atualizado pela NF %s em %s", nota.Numero, agora.Format("02/01/2006")),
			DataCotacao:      agora,
		}
		if err := s.cotacoes.UpsertTx(tx, c); err != nil {
			return efeito, "", fmt.Errorf("atualizar cotação: %w", err)
		}
		efeito.cotacao = true
	}

	if err := s.auditarItemFinalizadoTx(tx, nota, it, produto, usuarioID, estoqueAnterior, custoAnterior, vendaAnterior, efeito); err != nil {
		return efeito, "", err
	}

	cb := ""
	if produto.CodigoBarras != nil {
		cb = *produto.CodigoBarras
	}
	return efeito, cb, nil
}

func (s *notaEntradaService) auditarItemFinalizadoTx(
	tx *gorm.DB,
	nota *model.NotaEntrada,
	it *model.ItemNotaEntrada,
	produto *model.Produto,
	usuarioID uuid.UUID,
	estoqueAnterior int,
	custoAnterior, vendaAnterior decimal.Decimal,
	efeito efeitoFinalizacao,
) error {
	eventos := []Evento{{
		NotaID: nota.ID,
		ItemID: &it.ID,
		Acao:   model.AcaoAtualizacaoEstoque,
		Descricao: fmt.Sprintf("Estoque de %s: %d → %d", produto.Codigo,
			estoqueAnterior, produto.Estoque),
		Dados: map[string]any{
			"produto_id":       produto.ID.String(),
			"estoque_anterior": estoqueAnterior,
			"estoque_novo":     produto.Estoque,
			"custo_anterior":   custoAnterior,
			"custo_novo":       produto.PrecoCusto,
		},
		UsuarioID: usuarioID,
	}}
	if efeito.preco {
		eventos = append(eventos, Evento{
			NotaID: nota.ID,
			ItemID: &it.ID,
			Acao:   model.AcaoAtualizacaoPreco,
			Descricao: fmt.Sprintf("Preços de %s: custo %s → %s, venda %s → %s", produto.Codigo,
				custoAnterior.StringFixed(2), produto.PrecoCusto.StringFixed(2),
				vendaAnterior.StringFixed(2), produto.PrecoVenda.StringFixed(2)),
			Dados: map[string]any{
				"produto_id":         produto.ID.String(),
				"custo_anterior":     custoAnterior,
				"custo_novo":         produto.PrecoCusto,
				"venda_anterior":     vendaAnterior,
				"venda_nova":         produto.PrecoVenda,
				"venda_debito_nova":  produto.PrecoVendaDebito,
				"venda_credito_nova": produto.PrecoVendaCredito,
			},
			UsuarioID: usuarioID,
		})
	}
	if efeito.cotacao {
		eventos = append(eventos, Evento{
			NotaID:    nota.ID,
			ItemID:    &it.ID,
			Acao:      model.AcaoAtualizacaoCotacao,
			Descricao: fmt.Sprintf("Cotação de %s atualizada: %s", produto.Codigo, it.ValorUnitario.StringFixed(2)),
			Dados: map[string]any{
				"produto_id":    produto.ID.String(),
				"fornecedor_id": nota.FornecedorID.String(),
				"preco":         it.ValorUnitario,
			},
			UsuarioID: usuarioID,
		})
	}
	for _, e := range eventos {
		if err := s.auditoria.RegistrarTx(tx, e); err != nil {
			return err
		}
	}
	return nil
}

// aposFinalizar runs the side effects that must not undo a committed
// finalization.
func (s *notaEntradaService) aposFinalizar(ctx context.Context, id uuid.UUID, codigosBarras []string) {
	if len(codigosBarras) > 0 {
		if err := s.cache.Invalidar(ctx, codigosBarras...); err != nil {
			log.Warn().Err(err).Str("nota_id", id.String()).Msg("falha ao invalidar cache de preços")
		}
	}
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueRelatorio(ctx, worker.RelatorioJobPayload{NotaEntradaID: id.String()}); err != nil {
		log.Warn().Err(err).Str("nota_id", id.String()).Msg("falha ao enfileirar relatório de conferência")
	}
}
