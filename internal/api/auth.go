package api

import (
	"net/http"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterInput
	if !bind(c, &req) {
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Conta criada com sucesso. Já podes iniciar sessão.",
		"user":    user,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	token, p, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Sessão iniciada.",
		"token":   token,
		"user":    p,
	})
}

func (h *Handler) logout(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		if err := h.accounts.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}
	h.clearSessionCookie(c)
	ok(c, "Sessão terminada.")
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, principal(c))
}
