package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) listStorefront(c *gin.Context) {
	products, err := h.catalog.Storefront(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getStorefrontProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	product, err := h.catalog.Product(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) viewCart(c *gin.Context) {
	detail, err := h.carts.View(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) addToCart(c *gin.Context) {
	req := addToCartRequest{Quantity: 1}
	if !bind(c, &req) {
		return
	}

	if err := h.carts.AddToCart(c.Request.Context(), principal(c), req.ProductID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Produto adicionado ao carrinho.")
}

func (h *Handler) decreaseCartItem(c *gin.Context) {
	productID, valid := pathID(c, "product_id")
	if !valid {
		return
	}
	req := quantityRequest{Quantity: 1}
	if !bindOptional(c, &req) {
		return
	}

	if err := h.carts.DecreaseQuantity(c.Request.Context(), principal(c), productID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Carrinho atualizado.")
}

func (h *Handler) removeCartItem(c *gin.Context) {
	productID, valid := pathID(c, "product_id")
	if !valid {
		return
	}
	if err := h.carts.RemoveFromCart(c.Request.Context(), principal(c), productID); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Produto removido do carrinho.")
}

func (h *Handler) checkout(c *gin.Context) {
	detail, err := h.carts.Checkout(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Encomenda finalizada com sucesso.",
		"order":   detail,
	})
}
