package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autopecas/internal/documento"
	"autopecas/internal/dto"
	"autopecas/internal/infra"
	"autopecas/internal/model"
	"autopecas/internal/repository"
	"autopecas/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NotaEntradaService drives a goods receipt from import to finalization.
// Every mutating operation runs in one transaction and takes the receipt row
// lock before checking its state.
type NotaEntradaService interface {
	Analisar(data []byte) *documento.Resultado
	ImportarXML(ctx context.Context, usuarioID uuid.UUID, data []byte, opcoes dto.OpcoesProcessamento) (*dto.ImportacaoResponse, error)
	ImportarPDF(ctx context.Context, usuarioID uuid.UUID, data []byte, fornecedorID uuid.UUID, opcoes dto.OpcoesProcessamento) (*dto.ImportacaoResponse, error)
	Criar(ctx context.Context, usuarioID uuid.UUID, req dto.CriarNotaEntradaRequest) (*dto.NotaEntradaResponse, error)

	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.NotaEntradaResponse, error)
	Listar(ctx context.Context, filter dto.NotaEntradaFilter) (*dto.NotaEntradaListResponse, error)
	AtualizarOpcoes(ctx context.Context, usuarioID, id uuid.UUID, opcoes dto.OpcoesProcessamento) (*dto.NotaEntradaResponse, error)

	AdicionarItem(ctx context.Context, usuarioID, id uuid.UUID, req dto.ItemNotaEntradaRequest) (*dto.NotaEntradaResponse, error)
	RemoverItem(ctx context.Context, usuarioID, id, itemID uuid.UUID) (*dto.NotaEntradaResponse, error)
	ConferirItem(ctx context.Context, usuarioID, id, itemID uuid.UUID, req dto.ConferirItemRequest) (*dto.NotaEntradaResponse, error)
	ConferirTodos(ctx context.Context, usuarioID, id uuid.UUID) (*dto.NotaEntradaResponse, error)
	VincularProduto(ctx context.Context, usuarioID, id, itemID, produtoID uuid.UUID) (*dto.NotaEntradaResponse, error)
	DesvincularProduto(ctx context.Context, usuarioID, id, itemID uuid.UUID) (*dto.NotaEntradaResponse, error)
	VincularAutomaticamente(ctx context.Context, usuarioID, id uuid.UUID) (*dto.VinculoAutomaticoResponse, error)
	CriarProdutoDoItem(ctx context.Context, usuarioID, id, itemID uuid.UUID, req dto.CriarProdutoDoItemRequest) (*dto.ProdutoResponse, error)

	Finalizar(ctx context.Context, usuarioID, id uuid.UUID) (*dto.ResultadoFinalizacaoResponse, error)
	Cancelar(ctx context.Context, usuarioID, id uuid.UUID, motivo string) (*dto.NotaEntradaResponse, error)
	ListarEventos(ctx context.Context, id uuid.UUID) ([]dto.EventoNotaEntradaResponse, error)

	ExportarItensXLSX(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	GerarRelatorioPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

// NotaEntradaConfig holds the business defaults of the purchasing module.
type NotaEntradaConfig struct {
	MargemPadrao decimal.Decimal
	NomeEmpresa  string
}

// NotaEntradaDeps wires the repositories and collaborators of the service.
// Locker, Cache and Dispatcher may be nil.
type NotaEntradaDeps struct {
	Notas         repository.NotaEntradaRepository
	Produtos      repository.ProdutoRepository
	Fornecedores  repository.FornecedorRepository
	Movimentacoes repository.MovimentacaoEstoqueRepository
	Historico     repository.HistoricoPrecoRepository
	Cotacoes      repository.CotacaoFornecedorRepository
	Usuarios      repository.UsuarioRepository
	Auditoria     AuditoriaService
	Locker        infra.Locker
	Cache         infra.CachePrecos
	Dispatcher    *worker.Dispatcher
	Config        NotaEntradaConfig
}

type notaEntradaService struct {
	repo          repository.NotaEntradaRepository
	produtos      repository.ProdutoRepository
	fornecedores  repository.FornecedorRepository
	movimentacoes repository.MovimentacaoEstoqueRepository
	historico     repository.HistoricoPrecoRepository
	cotacoes      repository.CotacaoFornecedorRepository
	usuarios      repository.UsuarioRepository
	auditoria     AuditoriaService
	locker        infra.Locker
	cache         infra.CachePrecos
	dispatcher    *worker.Dispatcher
	cfg           NotaEntradaConfig
}

func NewNotaEntradaService(d NotaEntradaDeps) NotaEntradaService {
	if d.Locker == nil {
		d.Locker = infra.NewRedisLocker(nil, 0)
	}
	if d.Cache == nil {
		d.Cache = infra.NewCachePrecos(nil, 0)
	}
	if d.Config.MargemPadrao.IsZero() {
		d.Config.MargemPadrao = decimal.NewFromInt(30)
	}
	if d.Config.NomeEmpresa == "" {
		d.Config.NomeEmpresa = "Autopeças"
	}
	return &notaEntradaService{
		repo:          d.Notas,
		produtos:      d.Produtos,
		fornecedores:  d.Fornecedores,
		movimentacoes: d.Movimentacoes,
		historico:     d.Historico,
		cotacoes:      d.Cotacoes,
		usuarios:      d.Usuarios,
		auditoria:     d.Auditoria,
		locker:        d.Locker,
		cache:         d.Cache,
		dispatcher:    d.Dispatcher,
		cfg:           d.Config,
	}
}

// ── Shared helpers ───────────────────────────────────────────────────────────

// carregarTx locks the receipt row and loads its lines.
func (s *notaEntradaService) carregarTx(tx *gorm.DB, id uuid.UUID) (*model.NotaEntrada, error) {
	nota, err := s.repo.FindByIDForUpdateTx(tx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erroNaoEncontrado("nota de entrada não encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("carregar nota de entrada: %w", err)
	}
	return nota, nil
}

// exigirEditavel blocks changes once the receipt is finalized or cancelled.
func exigirEditavel(n *model.NotaEntrada) error {
	switch n.Status {
	case model.StatusFinalizada:
		return erroValidacao("nota de entrada já finalizada")
	case model.StatusCancelada:
		return erroValidacao("nota de entrada cancelada")
	}
	return nil
}

func itemDaNota(n *model.NotaEntrada, itemID uuid.UUID) (*model.ItemNotaEntrada, error) {
	for i := range n.Itens {
		if n.Itens[i].ID == itemID {
			return &n.Itens[i], nil
		}
	}
	return nil, erroNaoEncontrado("item não encontrado na nota de entrada")
}

// opcoesPadrao fills the processing flags of a new receipt.
func (s *notaEntradaService) opcoesPadrao(n *model.NotaEntrada) {
	n.AtualizarPrecoCusto = true
	n.AtualizarPrecoVenda = false
	n.MargemPadrao = s.cfg.MargemPadrao
	n.RatearFrete = true
	n.AtualizarCotacao = true
}

func aplicarOpcoes(n *model.NotaEntrada, o dto.OpcoesProcessamento) {
	if o.AtualizarPrecoCusto != nil {
		n.AtualizarPrecoCusto = *o.AtualizarPrecoCusto
	}
	if o.AtualizarPrecoVenda != nil {
		n.AtualizarPrecoVenda = *o.AtualizarPrecoVenda
	}
	if o.MargemPadrao != nil {
		n.MargemPadrao = *o.MargemPadrao
	}
	if o.RatearFrete != nil {
		n.RatearFrete = *o.RatearFrete
	}
	if o.AtualizarCotacao != nil {
		n.AtualizarCotacao = *o.AtualizarCotacao
	}
}

// recalcularTx refreshes header totals and every line's landed cost, then
// persists both. The freight share of each line depends on ValorProdutos, so
// all lines move together.
func (s *notaEntradaService) recalcularTx(tx *gorm.DB, n *model.NotaEntrada) error {
	CalcularTotais(n, n.Itens)
	for i := range n.Itens {
		it := &n.Itens[i]
		it.CustoUnitario = CalcularCustoUnitario(n, it)
		if err := s.repo.SaveItemTx(tx, it); err != nil {
			return fmt.Errorf("salvar item %d: %w", it.NumeroItem, err)
		}
	}
	return s.repo.SaveTx(tx, n)
}

// nomeUsuario resolves the display name used on stock movements. It runs
// before the transaction opens.
func (s *notaEntradaService) nomeUsuario(ctx context.Context, usuarioID uuid.UUID) string {
	if usuarioID == uuid.Nil || s.usuarios == nil {
		return model.UsuarioSistema
	}
	u, err := s.usuarios.FindByID(ctx, usuarioID)
	if err != nil || u.Nome == "" {
		return model.UsuarioSistema
	}
	return u.Nome
}

// novoItem builds a line from a request. The caller sets NotaEntradaID and
// NumeroItem.
func (s *notaEntradaService) novoItemTx(tx *gorm.DB, req dto.ItemNotaEntradaRequest) (*model.ItemNotaEntrada, error) {
	it := &model.ItemNotaEntrada{
		CodigoFornecedor: strings.TrimSpace(req.CodigoFornecedor),
		Descricao:        strings.TrimSpace(req.Descricao),
		NCM:              req.NCM,
		CFOP:             req.CFOP,
		CEST:             req.CEST,
		Unidade:          strings.ToUpper(strings.TrimSpace(req.Unidade)),
		Quantidade:       req.Quantidade,
		ValorUnitario:    req.ValorUnitario,
		ValorDesconto:    req.ValorDesconto,
		ValorIPI:         req.ValorIPI,
		ValorICMSST:      req.ValorICMSST,
	}
	if it.Unidade == "" {
		it.Unidade = "UN"
	}
	if documento.CodigoBarrasValido(req.CodigoBarras) {
		it.CodigoBarras = strings.TrimSpace(req.CodigoBarras)
	}
	if req.ValorTotal != nil {
		it.ValorTotal = req.ValorTotal.Round(2)
	} else {
		it.ValorTotal = TotalItem(req.Quantidade, req.ValorUnitario, req.ValorDesconto)
	}

	if req.ProdutoID != nil && *req.ProdutoID != "" {
		pid, err := uuid.Parse(*req.ProdutoID)
		if err != nil {
			return nil, erroValidacao("produto_id inválido")
		}
		if _, err := s.buscarProdutoTx(tx, pid); err != nil {
			return nil, err
		}
		it.ProdutoID = &pid
	}
	return it, nil
}

func (s *notaEntradaService) buscarProdutoTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	p, err := s.produtos.FindByIDTx(tx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erroNaoEncontrado("produto não encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("buscar produto: %w", err)
	}
	if !p.Ativo {
		return nil, erroValidacao("produto %s está inativo", p.Codigo)
	}
	return p, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *notaEntradaService) carregar(ctx context.Context, id uuid.UUID) (*model.NotaEntrada, error) {
	nota, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erroNaoEncontrado("nota de entrada não encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("carregar nota de entrada: %w", err)
	}
	return nota, nil
}

func (s *notaEntradaService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.NotaEntradaResponse, error) {
	nota, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := notaToResponse(nota)
	return &resp, nil
}

func (s *notaEntradaService) Listar(ctx context.Context, filter dto.NotaEntradaFilter) (*dto.NotaEntradaListResponse, error) {
	notas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	data := make([]dto.NotaEntradaResponse, 0, len(notas))
	for i := range notas {
		data = append(data, notaToResponse(&notas[i]))
	}
	return &dto.NotaEntradaListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *notaEntradaService) ListarEventos(ctx context.Context, id uuid.UUID) ([]dto.EventoNotaEntradaResponse, error) {
	if _, err := s.carregar(ctx, id); err != nil {
		return nil, err
	}
	return s.auditoria.Listar(ctx, id)
}

// ── Criar (manual) ───────────────────────────────────────────────────────────

func (s *notaEntradaService) Criar(ctx context.Context, usuarioID uuid.UUID, req dto.CriarNotaEntradaRequest) (*dto.NotaEntradaResponse, error) {
	var notaID uuid.UUID
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var fornecedor *model.Fornecedor
		if req.FornecedorID != nil && *req.FornecedorID != "" {
			fid, err := uuid.Parse(*req.FornecedorID)
			if err != nil {
				return erroValidacao("fornecedor_id inválido")
			}
			f, err := s.fornecedores.FindByIDTx(tx, fid)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return erroNaoEncontrado("fornecedor não encontrado")
			}
			if err != nil {
				return fmt.Errorf("buscar fornecedor: %w", err)
			}
			fornecedor = f
		}

		nota := &model.NotaEntrada{
			Numero:              strings.TrimSpace(req.Numero),
			Serie:               strings.TrimSpace(req.Serie),
			NaturezaOperacao:    req.NaturezaOperacao,
			DataEmissao:         req.DataEmissao,
			DataEntrada:         time.Now(),
			ValorFrete:          req.ValorFrete,
			ValorSeguro:         req.ValorSeguro,
			ValorDesconto:       req.ValorDesconto,
			ValorOutrasDespesas: req.ValorOutrasDespesas,
			ValorIPI:            req.ValorIPI,
			ValorICMSST:         req.ValorICMSST,
			TipoEntrada:         model.EntradaManual,
			Status:              model.StatusPendente,
			Observacoes:         req.Observacoes,
			CriadoPorID:         usuarioPtr(usuarioID),
		}
		if req.DataEntrada != nil {
			nota.DataEntrada = *req.DataEntrada
		}
		if fornecedor != nil {
			nota.FornecedorID = &fornecedor.ID
		}
		if req.ChaveAcesso != nil && *req.ChaveAcesso != "" {
			chave := *req.ChaveAcesso
			nota.ChaveAcesso = &chave
		}
		s.opcoesPadrao(nota)
		aplicarOpcoes(nota, req.Opcoes)

		if err := s.garantirIdentificadorLivreTx(tx, nota); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, nota); err != nil {
			return fmt.Errorf("criar nota de entrada: %w", err)
		}

		for i, itReq := range req.Itens {
			it, err := s.novoItemTx(tx, itReq)
			if err != nil {
				return err
			}
			it.NotaEntradaID = nota.ID
			it.NumeroItem = i + 1
			if err := s.repo.CreateItemTx(tx, it); err != nil {
				return fmt.Errorf("criar item %d: %w", it.NumeroItem, err)
			}
			nota.Itens = append(nota.Itens, *it)
		}
		if err := s.recalcularTx(tx, nota); err != nil {
			return err
		}

		notaID = nota.ID
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			Acao:      model.AcaoCriacao,
			Descricao: fmt.Sprintf("Nota %s criada manualmente com %d itens", nota.Numero, len(nota.Itens)),
			Dados:     map[string]any{"itens": len(nota.Itens), "valor_total": nota.ValorTotal},
			UsuarioID: usuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.ObterPorID(ctx, notaID)
}

// garantirIdentificadorLivreTx rejects a manual receipt whose number or access
// key is already used by a live receipt.
func (s *notaEntradaService) garantirIdentificadorLivreTx(tx *gorm.DB, n *model.NotaEntrada) error {
	if n.ChaveAcesso != nil {
		existentes, err := s.repo.FindByChaveAcessoTx(tx, *n.ChaveAcesso)
		if err != nil {
			return fmt.Errorf("verificar chave de acesso: %w", err)
		}
		if viva := notaViva(existentes); viva != nil {
			return &ImportacaoDuplicadaError{NotaID: viva.ID, Status: viva.Status, Identificador: *n.ChaveAcesso}
		}
	}
	existentes, err := s.repo.FindByNumeroFornecedorTx(tx, n.Numero, n.Serie, n.FornecedorID)
	if err != nil {
		return fmt.Errorf("verificar número da nota: %w", err)
	}
	if viva := notaViva(existentes); viva != nil {
		return &ImportacaoDuplicadaError{NotaID: viva.ID, Status: viva.Status, Identificador: n.Numero}
	}
	return nil
}

func notaViva(notas []model.NotaEntrada) *model.NotaEntrada {
	for i := range notas {
		if notas[i].Status != model.StatusCancelada {
			return &notas[i]
		}
	}
	return nil
}

// ── AtualizarOpcoes ──────────────────────────────────────────────────────────

func (s *notaEntradaService) AtualizarOpcoes(ctx context.Context, usuarioID, id uuid.UUID, opcoes dto.OpcoesProcessamento) (*dto.NotaEntradaResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		if err := exigirEditavel(nota); err != nil {
			return err
		}
		aplicarOpcoes(nota, opcoes)
		// RatearFrete changes every landed cost
		return s.recalcularTx(tx, nota)
	})
	if err != nil {
		return nil, err
	}
	return s.ObterPorID(ctx, id)
}

// ── Cancelar ─────────────────────────────────────────────────────────────────

func (s *notaEntradaService) Cancelar(ctx context.Context, usuarioID, id uuid.UUID, motivo string) (*dto.NotaEntradaResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, erroValidacao("informe o motivo do cancelamento")
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nota, err := s.carregarTx(tx, id)
		if err != nil {
			return err
		}
		switch nota.Status {
		case model.StatusFinalizada:
			return erroValidacao("nota de entrada finalizada não pode ser cancelada")
		case model.StatusCancelada:
			return erroValidacao("nota de entrada já cancelada")
		}

		anterior := nota.Status
		nota.Status = model.StatusCancelada
		nota.Observacoes = anexarObservacao(nota.Observacoes,
			fmt.Sprintf("Cancelada em %s: %s", time.Now().Format("02/01/2006 15:04"), motivo))
		if err := s.repo.SaveTx(tx, nota); err != nil {
			return fmt.Errorf("cancelar nota de entrada: %w", err)
		}
		return s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    nota.ID,
			Acao:      model.AcaoCancelamento,
			Descricao: "Nota cancelada: " + motivo,
			Dados:     map[string]any{"motivo": motivo, "status_anterior": string(anterior)},
			UsuarioID: usuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.ObterPorID(ctx, id)
}

func anexarObservacao(atual, nova string) string {
	if strings.TrimSpace(atual) == "" {
		return nova
	}
	return atual + "\n" + nova
}

// ── Exports ──────────────────────────────────────────────────────────────────

func (s *notaEntradaService) ExportarItensXLSX(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	nota, err := s.carregar(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := infra.ExportarItensXLSX(nota)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("nota_%s_itens.xlsx", nomeArquivo(nota.Numero)), nil
}

func (s *notaEntradaService) GerarRelatorioPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	nota, err := s.carregar(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := infra.GerarRelatorioConferencia(nota, s.cfg.NomeEmpresa)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("conferencia_nota_%s.pdf", nomeArquivo(nota.Numero)), nil
}

// nomeArquivo keeps only characters that are safe in a Content-Disposition name.
func nomeArquivo(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "sem_numero"
	}
	return b.String()
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func formatarData(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func notaToResponse(n *model.NotaEntrada) dto.NotaEntradaResponse {
	r := dto.NotaEntradaResponse{
		ID:                  n.ID.String(),
		FornecedorID:        uuidString(n.FornecedorID),
		Numero:              n.Numero,
		Serie:               n.Serie,
		ChaveAcesso:         n.ChaveAcesso,
		NaturezaOperacao:    n.NaturezaOperacao,
		DataEmissao:         formatarData(n.DataEmissao),
		DataEntrada:         n.DataEntrada.Format(time.RFC3339),
		ValorProdutos:       n.ValorProdutos,
		ValorFrete:          n.ValorFrete,
		ValorSeguro:         n.ValorSeguro,
		ValorDesconto:       n.ValorDesconto,
		ValorOutrasDespesas: n.ValorOutrasDespesas,
		ValorIPI:            n.ValorIPI,
		ValorICMSST:         n.ValorICMSST,
		ValorTotal:          n.ValorTotal,
		TipoEntrada:         string(n.TipoEntrada),
		Status:              string(n.Status),
		AtualizarPrecoCusto: n.AtualizarPrecoCusto,
		AtualizarPrecoVenda: n.AtualizarPrecoVenda,
		MargemPadrao:        n.MargemPadrao,
		RatearFrete:         n.RatearFrete,
		AtualizarCotacao:    n.AtualizarCotacao,
		DataConferencia:     formatarData(n.DataConferencia),
		DataFinalizacao:     formatarData(n.DataFinalizacao),
		Observacoes:         n.Observacoes,
		ItensPendentes:      n.ItensPendentes(),
		TodosConferidos:     n.TodosConferidos(),
		Itens:               make([]dto.ItemNotaEntradaResponse, 0, len(n.Itens)),
		CreatedAt:           n.CreatedAt.Format(time.RFC3339),
	}
	if n.Fornecedor != nil {
		r.FornecedorNome = n.Fornecedor.RazaoSocial
	}
	for i := range n.Itens {
		r.Itens = append(r.Itens, itemToResponse(&n.Itens[i]))
	}
	return r
}

func itemToResponse(it *model.ItemNotaEntrada) dto.ItemNotaEntradaResponse {
	r := dto.ItemNotaEntradaResponse{
		ID:                  it.ID.String(),
		NumeroItem:          it.NumeroItem,
		ProdutoID:           uuidString(it.ProdutoID),
		CodigoFornecedor:    it.CodigoFornecedor,
		CodigoBarras:        it.CodigoBarras,
		Descricao:           it.Descricao,
		NCM:                 it.NCM,
		CFOP:                it.CFOP,
		CEST:                it.CEST,
		Unidade:             it.Unidade,
		Quantidade:          it.Quantidade,
		QuantidadeConferida: it.QuantidadeConferida,
		ValorUnitario:       it.ValorUnitario,
		ValorDesconto:       it.ValorDesconto,
		ValorTotal:          it.ValorTotal,
		ValorIPI:            it.ValorIPI,
		ValorICMSST:         it.ValorICMSST,
		CustoUnitario:       it.CustoUnitario,
		Conferido:           it.Conferido,
		Divergencia:         it.Divergencia,
		Observacao:          it.Observacao,
	}
	if it.Produto != nil {
		r.ProdutoCodigo = it.Produto.Codigo
		r.ProdutoDescricao = it.Produto.Descricao
	}
	return r
}
