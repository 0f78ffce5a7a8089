package api

import (
	"errors"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/service"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{service.ErrUnauthenticated, http.StatusUnauthorized, "Precisas de iniciar sessão."},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Credenciais inválidas."},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests, "Demasiadas tentativas de login. Tenta mais tarde."},
	{service.ErrNotClient, http.StatusForbidden, "Apenas clientes podem usar o carrinho."},
	{service.ErrNotSupplier, http.StatusForbidden, "Não foi encontrado fornecedor associado ao teu email."},

	{service.ErrInvalidQuantity, http.StatusBadRequest, "A quantidade deve ser um número inteiro maior que zero."},
	{service.ErrQuantityBelowZero, http.StatusBadRequest, "Quantidade a remover inválida."},
	{service.ErrWrongPassword, http.StatusBadRequest, "Password atual incorreta."},

	{service.ErrProductNotFound, http.StatusNotFound, "Produto não encontrado."},
	{service.ErrLineNotFound, http.StatusNotFound, "O produto não está no carrinho."},
	{service.ErrOrderNotFound, http.StatusNotFound, "Encomenda não encontrada."},
	{service.ErrUserNotFound, http.StatusNotFound, "Utilizador não encontrado."},
	{service.ErrSupplierNotFound, http.StatusNotFound, "Fornecedor não encontrado."},
	{service.ErrNotFound, http.StatusNotFound, "Registo não encontrado."},

	{service.ErrInsufficientStock, http.StatusConflict, "Stock insuficiente."},
	{service.ErrCartEmpty, http.StatusConflict, "O carrinho está vazio."},
	{service.ErrOrderNotCancellable, http.StatusConflict, "Só encomendas pendentes podem ser canceladas."},
	{service.ErrEmailTaken, http.StatusConflict, "Já existe um utilizador com esse email."},
	{service.ErrInUse, http.StatusConflict, "O registo está em uso e não pode ser removido."},

	{service.ErrProductInactive, http.StatusUnprocessableEntity, "O produto não está disponível."},
}

// mapError returns the status and user-facing message for err
func mapError(err error) (int, gin.H) {
	var v *service.ValidationError
	if errors.As(err, &v) {
		return http.StatusBadRequest, gin.H{"error": v.Message, "field": v.Field}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, gin.H{"error": m.message}
		}
	}
	return http.StatusInternalServerError, gin.H{"error": "Ocorreu um erro inesperado."}
}

// respondError writes err as JSON. Unexpected errors are logged.
func respondError(c *gin.Context, err error) {
	status, body := mapError(err)
	if status == http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()))
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

func denied(c *gin.Context, tier auth.Tier, p *auth.Principal) {
	if p == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Precisas de iniciar sessão."})
		return
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": tier.DenialMessage()})
}
