package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"autopecas/internal/apierror"
	"autopecas/internal/dto"
	"autopecas/internal/middleware"
	"autopecas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// ComprasHandler serves the goods-receipt workflow under /v1/compras.
type ComprasHandler struct {
	svc         service.NotaEntradaService
	maxXMLBytes int64
	maxPDFBytes int64
}

func NewComprasHandler(svc service.NotaEntradaService, maxXMLBytes, maxPDFBytes int64) *ComprasHandler {
	return &ComprasHandler{svc: svc, maxXMLBytes: maxXMLBytes, maxPDFBytes: maxPDFBytes}
}

// lerArquivo reads the multipart field "arquivo", refusing files above limite.
func lerArquivo(c *gin.Context, limite int64) ([]byte, bool) {
	fh, err := c.FormFile("arquivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Campo 'arquivo' é obrigatório"))
		return nil, false
	}
	if limite > 0 && fh.Size > limite {
		c.JSON(http.StatusRequestEntityTooLarge,
			apierror.New(fmt.Sprintf("Arquivo excede o limite de %d bytes", limite)))
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Não foi possível ler o arquivo"))
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Não foi possível ler o arquivo"))
		return nil, false
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Arquivo vazio"))
		return nil, false
	}
	return data, true
}

// opcoesDoFormulario reads the optional processing flags sent next to an upload.
func opcoesDoFormulario(c *gin.Context) (dto.OpcoesProcessamento, bool) {
	var op dto.OpcoesProcessamento
	flags := map[string]**bool{
		"atualizar_preco_custo": &op.AtualizarPrecoCusto,
		"atualizar_preco_venda": &op.AtualizarPrecoVenda,
		"ratear_frete":          &op.RatearFrete,
		"atualizar_cotacao":     &op.AtualizarCotacao,
	}
	for campo, destino := range flags {
		v, ok := c.GetPostForm(campo)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Valor inválido para "+campo))
			return op, false
		}
		*destino = &b
	}
	if v, ok := c.GetPostForm("margem_padrao"); ok && v != "" {
		m, err := decimal.NewFromString(v)
		if err != nil || m.IsNegative() {
			c.JSON(http.StatusBadRequest, apierror.New("Valor inválido para margem_padrao"))
			return op, false
		}
		op.MargemPadrao = &m
	}
	return op, true
}

// ── Importação ───────────────────────────────────────────────────────────────

// ImportarXML godoc
// @Summary Importa uma NF-e (XML)
// @Tags compras
// @Accept multipart/form-data
// @Produce json
// @Param arquivo formData file true "XML da NF-e"
// @Success 201 {object} dto.ImportacaoResponse
// @Failure 409 {object} apierror.ConflictError
// @Failure 422 {object} apierror.DocumentError
// @Router /v1/compras/notas/importar-xml [post]
func (h *ComprasHandler) ImportarXML(c *gin.Context) {
	data, ok := lerArquivo(c, h.maxXMLBytes)
	if !ok {
		return
	}
	opcoes, ok := opcoesDoFormulario(c)
	if !ok {
		return
	}
	resp, err := h.svc.ImportarXML(c.Request.Context(), middleware.UserID(c), data, opcoes)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ImportarPDF godoc
// @Summary Importa um pedido ou DANFE em PDF
// @Tags compras
// @Accept multipart/form-data
// @Produce json
// @Param arquivo formData file true "PDF"
// @Param fornecedor_id formData string true "UUID do fornecedor"
// @Success 201 {object} dto.ImportacaoResponse
// @Router /v1/compras/notas/importar-pdf [post]
func (h *ComprasHandler) ImportarPDF(c *gin.Context) {
	fornecedorID, err := uuid.Parse(c.PostForm("fornecedor_id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"fornecedor_id": "uuid"}))
		return
	}
	data, ok := lerArquivo(c, h.maxPDFBytes)
	if !ok {
		return
	}
	opcoes, ok := opcoesDoFormulario(c)
	if !ok {
		return
	}
	resp, err := h.svc.ImportarPDF(c.Request.Context(), middleware.UserID(c), data, fornecedorID, opcoes)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Analisar POST /v1/compras/documentos/analisar
// Parses the upload and returns the extraction result without persisting.
func (h *ComprasHandler) Analisar(c *gin.Context) {
	limite := h.maxPDFBytes
	if h.maxXMLBytes > limite {
		limite = h.maxXMLBytes
	}
	data, ok := lerArquivo(c, limite)
	if !ok {
		return
	}
	res := h.svc.Analisar(data)
	status := http.StatusOK
	if !res.Sucesso {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, res)
}

// Criar POST /v1/compras/notas
func (h *ComprasHandler) Criar(c *gin.Context) {
	var req dto.CriarNotaEntradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ── Consulta ─────────────────────────────────────────────────────────────────

// Listar GET /v1/compras/notas
func (h *ComprasHandler) Listar(c *gin.Context) {
	var filter dto.NotaEntradaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObterPorID GET /v1/compras/notas/:id
func (h *ComprasHandler) ObterPorID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterPorID(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eventos GET /v1/compras/notas/:id/eventos
func (h *ComprasHandler) Eventos(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarEventos(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AtualizarOpcoes PATCH /v1/compras/notas/:id/opcoes
func (h *ComprasHandler) AtualizarOpcoes(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.OpcoesProcessamento
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarOpcoes(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Itens ────────────────────────────────────────────────────────────────────

// AdicionarItem POST /v1/compras/notas/:id/itens
func (h *ComprasHandler) AdicionarItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ItemNotaEntradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdicionarItem(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RemoverItem DELETE /v1/compras/notas/:id/itens/:item_id
func (h *ComprasHandler) RemoverItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	resp, err := h.svc.RemoverItem(c.Request.Context(), middleware.UserID(c), id, itemID)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConferirItem POST /v1/compras/notas/:id/itens/:item_id/conferir
func (h *ComprasHandler) ConferirItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	var req dto.ConferirItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConferirItem(c.Request.Context(), middleware.UserID(c), id, itemID, req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConferirTodos POST /v1/compras/notas/:id/conferir-todos
func (h *ComprasHandler) ConferirTodos(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ConferirTodos(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VincularProduto POST /v1/compras/notas/:id/itens/:item_id/vincular
func (h *ComprasHandler) VincularProduto(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	var req dto.VincularProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	produtoID, _ := uuid.Parse(req.ProdutoID)
	resp, err := h.svc.VincularProduto(c.Request.Context(), middleware.UserID(c), id, itemID, produtoID)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DesvincularProduto DELETE /v1/compras/notas/:id/itens/:item_id/vincular
func (h *ComprasHandler) DesvincularProduto(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	resp, err := h.svc.DesvincularProduto(c.Request.Context(), middleware.UserID(c), id, itemID)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VincularAutomaticamente POST /v1/compras/notas/:id/vincular-automatico
func (h *ComprasHandler) VincularAutomaticamente(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.VincularAutomaticamente(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CriarProduto POST /v1/compras/notas/:id/itens/:item_id/criar-produto
func (h *ComprasHandler) CriarProduto(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	var req dto.CriarProdutoDoItemRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarProdutoDoItem(c.Request.Context(), middleware.UserID(c), id, itemID, req)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ── Ciclo de vida ────────────────────────────────────────────────────────────

// Finalizar godoc
// @Summary Finaliza a nota: estoque, custos, preços e cotações
// @Tags compras
// @Produce json
// @Param id path string true "UUID da nota"
// @Success 200 {object} dto.ResultadoFinalizacaoResponse
// @Failure 422 {object} dto.ResultadoFinalizacaoResponse
// @Router /v1/compras/notas/{id}/finalizar [post]
func (h *ComprasHandler) Finalizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Finalizar(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	if !resp.Sucesso {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar POST /v1/compras/notas/:id/cancelar
func (h *ComprasHandler) Cancelar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarNotaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), middleware.UserID(c), id, req.Motivo)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Exportação ───────────────────────────────────────────────────────────────

// ExportarXLSX GET /v1/compras/notas/:id/itens.xlsx
func (h *ComprasHandler) ExportarXLSX(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	data, nome, err := h.svc.ExportarItensXLSX(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, nome))
	c.Data(http.StatusOK, mimeXLSX, data)
}

// RelatorioPDF GET /v1/compras/notas/:id/relatorio.pdf
func (h *ComprasHandler) RelatorioPDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	data, nome, err := h.svc.GerarRelatorioPDF(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, nome))
	c.Data(http.StatusOK, mimePDF, data)
}
