package api

import (
	"net/http"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) supplierMe(c *gin.Context) {
	sup, err := h.suppliers.Me(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (h *Handler) supplierProducts(c *gin.Context) {
	products, err := h.suppliers.ListProducts(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) submitProduct(c *gin.Context) {
	var req service.ProductInput
	if !bind(c, &req) {
		return
	}

	product, err := h.suppliers.SubmitProduct(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Produto submetido para aprovação.",
		"product": product,
	})
}

func (h *Handler) supplierOrders(c *gin.Context) {
	orders, err := h.suppliers.ListOrders(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) supplierOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	detail, err := h.suppliers.GetOrder(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
