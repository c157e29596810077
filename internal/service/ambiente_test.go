package service

import (
	"context"
	"fmt"
	"testing"

	"autopecas/internal/dto"
	"autopecas/internal/infra"
	"autopecas/internal/model"
	"autopecas/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ambiente is a service wired to a private in-memory SQLite database.
type ambiente struct {
	db      *gorm.DB
	svc     NotaEntradaService
	usuario model.Usuario
	ctx     context.Context
}

func novoAmbiente(t *testing.T) *ambiente {
	t.Helper()
	db, err := infra.NewDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	usuario := model.Usuario{Username: "compras", Nome: "Maria Compras", PasswordHash: "x", Rol: "comprador", Ativo: true}
	require.NoError(t, db.Create(&usuario).Error)

	svc := NewNotaEntradaService(NotaEntradaDeps{
		Notas:         repository.NewNotaEntradaRepository(db),
		Produtos:      repository.NewProdutoRepository(db),
		Fornecedores:  repository.NewFornecedorRepository(db),
		Movimentacoes: repository.NewMovimentacaoEstoqueRepository(db),
		Historico:     repository.NewHistoricoPrecoRepository(db),
		Cotacoes:      repository.NewCotacaoFornecedorRepository(db),
		Usuarios:      repository.NewUsuarioRepository(db),
		Auditoria:     NewAuditoriaService(repository.NewEventoNotaEntradaRepository(db)),
		Config:        NotaEntradaConfig{MargemPadrao: decimal.NewFromInt(30), NomeEmpresa: "Autopeças Teste"},
	})
	return &ambiente{db: db, svc: svc, usuario: usuario, ctx: context.Background()}
}

func (a *ambiente) fornecedor(t *testing.T, cnpj string, prazo int) model.Fornecedor {
	t.Helper()
	f := model.Fornecedor{RazaoSocial: "Fornecedor " + cnpj, CNPJ: cnpj, PrazoEntregaDias: prazo, Ativo: true}
	require.NoError(t, a.db.Create(&f).Error)
	return f
}

func (a *ambiente) produto(t *testing.T, codigo string, ajustar func(*model.Produto)) model.Produto {
	t.Helper()
	p := model.Produto{Codigo: codigo, Descricao: "Produto " + codigo, Unidade: "UN", Ativo: true}
	if ajustar != nil {
		ajustar(&p)
	}
	ativo := p.Ativo
	require.NoError(t, a.db.Create(&p).Error)
	if !ativo {
		// Create writes the column default over a false bool and backfills the struct
		require.NoError(t, a.db.Model(&p).Update("ativo", false).Error)
		p.Ativo = false
	}
	return p
}

func (a *ambiente) recarregarProduto(t *testing.T, id uuid.UUID) model.Produto {
	t.Helper()
	var p model.Produto
	require.NoError(t, a.db.Where("id = ?", id).First(&p).Error)
	return p
}

func (a *ambiente) contarEventos(t *testing.T, notaID string, acao model.AcaoEvento) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Model(&model.EventoNotaEntrada{}).
		Where("nota_entrada_id = ? AND acao = ?", notaID, acao).Count(&n).Error)
	return n
}

// notaManual creates a receipt with one request per line.
func (a *ambiente) notaManual(t *testing.T, fornecedorID *uuid.UUID, numero string, itens ...dto.ItemNotaEntradaRequest) *dto.NotaEntradaResponse {
	t.Helper()
	req := dto.CriarNotaEntradaRequest{Numero: numero, Serie: "1", Itens: itens}
	if fornecedorID != nil {
		s := fornecedorID.String()
		req.FornecedorID = &s
	}
	nota, err := a.svc.Criar(a.ctx, a.usuario.ID, req)
	require.NoError(t, err)
	return nota
}

func linha(descricao, qtd, unit string) dto.ItemNotaEntradaRequest {
	return dto.ItemNotaEntradaRequest{Descricao: descricao, Quantidade: d(qtd), ValorUnitario: d(unit)}
}

func linhaVinculada(p model.Produto, qtd, unit string) dto.ItemNotaEntradaRequest {
	req := linha(p.Descricao, qtd, unit)
	id := p.ID.String()
	req.ProdutoID = &id
	return req
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
