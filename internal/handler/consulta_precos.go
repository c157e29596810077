package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"autopecas/internal/apierror"
	"autopecas/internal/dto"
	"autopecas/internal/infra"
	"autopecas/internal/repository"

	"github.com/gin-gonic/gin"
)

// ConsultaPrecosHandler serves the public price check endpoint.
// No authentication required and no side effects. Finalizing a receipt
// invalidates the cached entries of the products it repriced.
type ConsultaPrecosHandler struct {
	repo  repository.ProdutoRepository
	cache infra.CachePrecos
}

func NewConsultaPrecosHandler(repo repository.ProdutoRepository, cache infra.CachePrecos) *ConsultaPrecosHandler {
	return &ConsultaPrecosHandler{repo: repo, cache: cache}
}

// PorCodigoBarras godoc
// @Summary Consulta de preço por código de barras (sem autenticação)
// @Tags preco
// @Produce json
// @Param barcode path string true "Código de barras"
// @Success 200 {object} dto.ConsultaPrecoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/preco/{barcode} [get]
func (h *ConsultaPrecosHandler) PorCodigoBarras(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()

	if cached, ok := h.cache.Obter(ctx, barcode); ok {
		var resp dto.ConsultaPrecoResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	p, err := h.repo.FindByCodigoBarras(ctx, barcode)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Produto não encontrado"))
		return
	}

	resp := dto.ConsultaPrecoResponse{
		Descricao:         p.Descricao,
		Marca:             p.Marca,
		PrecoVenda:        p.PrecoVenda,
		PrecoVendaDebito:  p.PrecoVendaDebito,
		PrecoVendaCredito: p.PrecoVendaCredito,
		EstoqueDisponivel: p.Estoque,
	}

	// best effort
	if b, err := json.Marshal(resp); err == nil {
		h.cache.Guardar(context.Background(), barcode, b)
	}

	c.JSON(http.StatusOK, resp)
}
