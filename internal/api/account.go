package api

import (
	"net/http"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

type changePasswordRequest struct {
	Current string `json:"password_current"`
	New     string `json:"password_new"`
	Confirm string `json:"password_confirm"`
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.accounts.Profile(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req service.ProfileInput
	if !bind(c, &req) {
		return
	}

	token, _ := c.Get(tokenKey)
	tokenStr, _ := token.(string)

	p, err := h.accounts.UpdateProfile(c.Request.Context(), tokenStr, principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Perfil atualizado com sucesso.",
		"user":    p,
	})
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bind(c, &req) {
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), principal(c), req.Current, req.New, req.Confirm); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Password alterada com sucesso.")
}

func (h *Handler) listMyOrders(c *gin.Context) {
	orders, err := h.orders.ListMine(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) getMyOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	detail, err := h.orders.GetMine(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) cancelMyOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.orders.CancelMine(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Encomenda cancelada com sucesso.")
}
