package handler

import (
	"net/http"
	"strconv"

	"autopecas/internal/dto"
	"autopecas/internal/service"

	"github.com/gin-gonic/gin"
)

// ProdutosHandler exposes the catalog reads used while linking receipt lines.
type ProdutosHandler struct{ svc service.ProdutoService }

func NewProdutosHandler(svc service.ProdutoService) *ProdutosHandler {
	return &ProdutosHandler{svc: svc}
}

// Listar GET /v1/produtos
func (h *ProdutosHandler) Listar(c *gin.Context) {
	var filter dto.ProdutoFilter
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

// ObterPorID GET /v1/produtos/:id
func (h *ProdutosHandler) ObterPorID(c *gin.Context) {
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

// HistoricoPrecos godoc
// @Summary      Histórico de preços de um produto
// @Tags         produtos
// @Produce      json
// @Param        id    path     string  true  "UUID do produto"
// @Param        page  query    int     false "Página (default 1)"
// @Param        limit query    int     false "Registros por página (default 50, max 200)"
// @Success      200   {object} dto.HistoricoPrecoListResponse
// @Failure      400   {object} apierror.APIError
// @Failure      404   {object} apierror.APIError
// @Router       /v1/produtos/{id}/historico-precos [get]
func (h *ProdutosHandler) HistoricoPrecos(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.HistoricoPrecos(c.Request.Context(), id, page, limit)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cotacoes GET /v1/produtos/:id/cotacoes
func (h *ProdutosHandler) Cotacoes(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cotacoes(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimentacoes GET /v1/estoque/movimentacoes
func (h *ProdutosHandler) Movimentacoes(c *gin.Context) {
	var filter dto.MovimentacaoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Movimentacoes(c.Request.Context(), filter)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
