package service

import (
	"bytes"
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
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Analisar parses a document without persisting anything. PDF is recognized
// by its magic number, everything else goes through the XML pipeline.
func (s *notaEntradaService) Analisar(data []byte) *documento.Resultado {
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("%PDF")) {
		return documento.ParsePDF(data)
	}
	return documento.ParseXML(data)
}

// importacao is what both pipelines hand to the shared import transaction.
type importacao struct {
	resultado   *documento.Resultado
	tipo        model.TipoEntrada
	acao        model.AcaoEvento
	fornecedor  *model.Fornecedor // known supplier (PDF)
	opcoes      dto.OpcoesProcessamento
	usuarioID   uuid.UUID
	chaveLock   string
	avisosExtra []string
}

func (s *notaEntradaService) ImportarXML(ctx context.Context, usuarioID uuid.UUID, data []byte, opcoes dto.OpcoesProcessamento) (*dto.ImportacaoResponse, error) {
	res := documento.ParseXML(data)
	if !res.Sucesso {
		return nil, &DocumentoInvalidoError{Resultado: res}
	}
	chave := res.Cabecalho.ChaveAcesso
	if chave == "" {
		chave = res.Emitente.Documento() + "/" + res.Cabecalho.Serie + "/" + res.Cabecalho.Numero
	}
	return s.importar(ctx, importacao{
		resultado: res,
		tipo:      model.EntradaXML,
		acao:      model.AcaoImportacaoXML,
		opcoes:    opcoes,
		usuarioID: usuarioID,
		chaveLock: "importacao:nfe:" + chave,
	})
}

func (s *notaEntradaService) ImportarPDF(ctx context.Context, usuarioID uuid.UUID, data []byte, fornecedorID uuid.UUID, opcoes dto.OpcoesProcessamento) (*dto.ImportacaoResponse, error) {
	fornecedor, err := s.fornecedores.FindByID(ctx, fornecedorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, erroNaoEncontrado("fornecedor não encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("buscar fornecedor: %w", err)
	}

	res := documento.ParsePDF(data)
	if !res.Sucesso {
		return nil, &DocumentoInvalidoError{Resultado: res}
	}

	imp := importacao{
		resultado:  res,
		tipo:       model.EntradaPDF,
		acao:       model.AcaoImportacaoPDF,
		fornecedor: fornecedor,
		opcoes:     opcoes,
		usuarioID:  usuarioID,
		chaveLock:  "importacao:pedido:" + fornecedor.ID.String() + ":" + res.Cabecalho.Numero,
	}
	if doc := res.Emitente.CNPJ; doc != "" && fornecedor.CNPJ != "" &&
		documento.SomenteDigitos(doc) != documento.SomenteDigitos(fornecedor.CNPJ) {
		imp.avisosExtra = append(imp.avisosExtra,
			fmt.Sprintf("CNPJ do documento (%s) difere do fornecedor selecionado (%s)", doc, fornecedor.CNPJ))
	}
	return s.importar(ctx, imp)
}

// importar runs the shared import transaction under the document lock.
func (s *notaEntradaService) importar(ctx context.Context, imp importacao) (*dto.ImportacaoResponse, error) {
	var (
		notaID     uuid.UUID
		vinculados int
		avisos     = append(append([]string{}, imp.resultado.Avisos...), imp.avisosExtra...)
	)

	err := s.locker.Executar(ctx, imp.chaveLock, func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			res := imp.resultado

			fornecedor := imp.fornecedor
			if fornecedor == nil {
				f, err := s.fornecedorDoEmitenteTx(tx, res.Emitente)
				if err != nil {
					return err
				}
				fornecedor = f
			}

			nota := &model.NotaEntrada{
				FornecedorID:        &fornecedor.ID,
				Numero:              res.Cabecalho.Numero,
				Serie:               res.Cabecalho.Serie,
				NaturezaOperacao:    res.Cabecalho.NaturezaOperacao,
				DataEmissao:         res.Cabecalho.DataEmissao,
				DataEntrada:         time.Now(),
				ValorProdutos:       res.Totais.ValorProdutos,
				ValorFrete:          res.Totais.ValorFrete,
				ValorSeguro:         res.Totais.ValorSeguro,
				ValorDesconto:       res.Totais.ValorDesconto,
				ValorOutrasDespesas: res.Totais.ValorOutrasDespesas,
				ValorIPI:            res.Totais.ValorIPI,
				ValorICMSST:         res.Totais.ValorICMSST,
				ValorTotal:          res.Totais.ValorTotal,
				TipoEntrada:         imp.tipo,
				Status:              model.StatusPendente,
				CriadoPorID:         usuarioPtr(imp.usuarioID),
			}
			if res.Cabecalho.ChaveAcesso != "" {
				chave := res.Cabecalho.ChaveAcesso
				nota.ChaveAcesso = &chave
			}
			s.opcoesPadrao(nota)
			aplicarOpcoes(nota, imp.opcoes)

			recicladas, err := s.guardaDuplicidadeTx(tx, nota, imp)
			if err != nil {
				return err
			}
			avisos = append(avisos, recicladas...)

			if err := s.repo.CreateTx(tx, nota); err != nil {
				return fmt.Errorf("criar nota de entrada: %w", err)
			}

			for _, di := range res.Itens {
				it := itemDoDocumento(di)
				it.NotaEntradaID = nota.ID
				it.NumeroItem = len(nota.Itens) + 1
				nota.Itens = append(nota.Itens, it)
			}
			// Document totals win; a document without a totals block gets them computed.
			if !nota.ValorProdutos.IsPositive() {
				CalcularTotais(nota, nota.Itens)
			}

			matcher := matching.New(repository.NewCatalogoProdutos(tx))
			for i := range nota.Itens {
				it := &nota.Itens[i]
				it.CustoUnitario = CalcularCustoUnitario(nota, it)
				produtoID, criterio, err := matcher.Encontrar(ctx, linhaDoItem(it))
				if err != nil {
					return fmt.Errorf("vincular item %d: %w", it.NumeroItem, err)
				}
				it.ProdutoID = produtoID
				if err := s.repo.CreateItemTx(tx, it); err != nil {
					return fmt.Errorf("criar item %d: %w", it.NumeroItem, err)
				}
				if produtoID != nil {
					vinculados++
					if err := s.registrarVinculoTx(tx, nota.ID, it, criterio, imp.usuarioID); err != nil {
						return err
					}
				}
			}
			if err := s.repo.SaveTx(tx, nota); err != nil {
				return fmt.Errorf("salvar nota de entrada: %w", err)
			}

			notaID = nota.ID
			dados := map[string]any{
				"formato":          string(res.Formato),
				"itens":            len(nota.Itens),
				"itens_vinculados": vinculados,
				"avisos":           avisos,
			}
			if nota.ChaveAcesso != nil {
				dados["chave_acesso"] = *nota.ChaveAcesso
			}
			return s.auditoria.RegistrarTx(tx, Evento{
				NotaID: nota.ID,
				Acao:   imp.acao,
				Descricao: fmt.Sprintf("Documento %s importado (%s): %d itens, %d vinculados automaticamente",
					nota.Numero, res.Formato, len(nota.Itens), vinculados),
				Dados:     dados,
				UsuarioID: imp.usuarioID,
			})
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("nota_id", notaID.String()).
		Str("tipo", string(imp.tipo)).
		Int("itens_vinculados", vinculados).
		Msg("compras: documento importado")

	nota, err := s.ObterPorID(ctx, notaID)
	if err != nil {
		return nil, err
	}
	return &dto.ImportacaoResponse{Nota: *nota, Avisos: avisos, ItensVinculados: vinculados}, nil
}

// guardaDuplicidadeTx rejects a document already imported into a live receipt.
// Cancelled receipts holding the identifier get it suffixed with -CANC-<hex>
// so the new import can take it; the original value stays in their audit trail.
func (s *notaEntradaService) guardaDuplicidadeTx(tx *gorm.DB, nota *model.NotaEntrada, imp importacao) ([]string, error) {
	var (
		existentes    []model.NotaEntrada
		identificador string
		err           error
	)
	if nota.ChaveAcesso != nil {
		identificador = *nota.ChaveAcesso
		existentes, err = s.repo.FindByChaveAcessoTx(tx, identificador)
	} else {
		identificador = nota.Numero
		existentes, err = s.repo.FindByNumeroFornecedorTx(tx, nota.Numero, nota.Serie, nota.FornecedorID)
	}
	if err != nil {
		return nil, fmt.Errorf("verificar duplicidade: %w", err)
	}
	if viva := notaViva(existentes); viva != nil {
		return nil, &ImportacaoDuplicadaError{NotaID: viva.ID, Status: viva.Status, Identificador: identificador}
	}
	if nota.ChaveAcesso != nil {
		// the same number from the same supplier may exist under another key
		mesmoNumero, err := s.repo.FindByNumeroFornecedorTx(tx, nota.Numero, nota.Serie, nota.FornecedorID)
		if err != nil {
			return nil, fmt.Errorf("verificar duplicidade: %w", err)
		}
		if viva := notaViva(mesmoNumero); viva != nil {
			return nil, &ImportacaoDuplicadaError{NotaID: viva.ID, Status: viva.Status, Identificador: nota.Numero}
		}
	}

	var avisos []string
	for i := range existentes {
		antiga := &existentes[i]
		sufixo := "-CANC-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		campo := "numero"
		if nota.ChaveAcesso != nil {
			campo = "chave_acesso"
			novo := *antiga.ChaveAcesso + sufixo
			antiga.ChaveAcesso = &novo
		} else {
			antiga.Numero += sufixo
		}
		if err := s.repo.SaveTx(tx, antiga); err != nil {
			return nil, fmt.Errorf("liberar identificador da nota cancelada: %w", err)
		}
		if err := s.auditoria.RegistrarTx(tx, Evento{
			NotaID:    antiga.ID,
			Acao:      model.AcaoCancelamento,
			Descricao: fmt.Sprintf("Identificador %s liberado para nova importação", identificador),
			Dados:     map[string]any{"campo": campo, "valor_original": identificador, "sufixo": sufixo},
			UsuarioID: imp.usuarioID,
		}); err != nil {
			return nil, err
		}
		avisos = append(avisos, fmt.Sprintf(
			"documento %s já existia na nota cancelada %s; o identificador antigo recebeu o sufixo %s",
			identificador, antiga.ID, sufixo))
	}
	return avisos, nil
}

// fornecedorDoEmitenteTx finds the issuer by CNPJ/CPF or registers it.
func (s *notaEntradaService) fornecedorDoEmitenteTx(tx *gorm.DB, e documento.Emitente) (*model.Fornecedor, error) {
	doc := e.Documento()
	if doc == "" {
		return nil, erroValidacao("documento sem CNPJ/CPF do emitente")
	}
	f, err := s.fornecedores.FindByCNPJTx(tx, doc)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("buscar fornecedor: %w", err)
	}

	f = &model.Fornecedor{
		RazaoSocial:       e.RazaoSocial,
		NomeFantasia:      e.NomeFantasia,
		CNPJ:              doc,
		InscricaoEstadual: e.InscricaoEstadual,
		Logradouro:        e.Logradouro,
		Numero:            e.Numero,
		Bairro:            e.Bairro,
		Cidade:            e.Cidade,
		UF:                e.UF,
		CEP:               e.CEP,
		Telefone:          e.Telefone,
		Ativo:             true,
	}
	if f.RazaoSocial == "" {
		f.RazaoSocial = doc
	}
	if err := s.fornecedores.CreateTx(tx, f); err != nil {
		return nil, fmt.Errorf("cadastrar fornecedor: %w", err)
	}
	log.Info().Str("cnpj", doc).Str("razao_social", f.RazaoSocial).Msg("compras: fornecedor cadastrado pela importação")
	return f, nil
}

func itemDoDocumento(di documento.Item) model.ItemNotaEntrada {
	it := model.ItemNotaEntrada{
		CodigoFornecedor: di.Codigo,
		CodigoBarras:     di.CodigoBarras,
		Descricao:        di.Descricao,
		NCM:              di.NCM,
		CFOP:             di.CFOP,
		CEST:             di.CEST,
		Unidade:          strings.ToUpper(di.Unidade),
		Quantidade:       di.Quantidade,
		ValorUnitario:    di.ValorUnitario,
		ValorDesconto:    di.ValorDesconto,
		ValorTotal:       di.ValorTotal,
		ValorIPI:         di.ValorIPI,
		ValorICMSST:      di.ValorICMSST,
	}
	if it.Unidade == "" {
		it.Unidade = "UN"
	}
	if it.Descricao == "" {
		it.Descricao = di.Codigo
	}
	if !it.ValorTotal.IsPositive() {
		it.ValorTotal = TotalItem(it.Quantidade, it.ValorUnitario, it.ValorDesconto)
	}
	return it
}

func linhaDoItem(it *model.ItemNotaEntrada) matching.Linha {
	return matching.Linha{
		ProdutoID:        it.ProdutoID,
		CodigoBarras:     it.CodigoBarras,
		CodigoFornecedor: it.CodigoFornecedor,
		Descricao:        it.Descricao,
	}
}

func (s *notaEntradaService) registrarVinculoTx(tx *gorm.DB, notaID uuid.UUID, it *model.ItemNotaEntrada, criterio matching.Criterio, usuarioID uuid.UUID) error {
	return s.auditoria.RegistrarTx(tx, Evento{
		NotaID:    notaID,
		ItemID:    &it.ID,
		Acao:      model.AcaoVinculo,
		Descricao: fmt.Sprintf("Item %d vinculado ao produto %s (%s)", it.NumeroItem, it.ProdutoID, criterio),
		Dados:     map[string]any{"produto_id": it.ProdutoID.String(), "criterio": string(criterio)},
		UsuarioID: usuarioID,
	})
}
