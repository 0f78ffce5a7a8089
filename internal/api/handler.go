package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options tunes cookie handling
type Options struct {
	SessionTTL    time.Duration
	SecureCookies bool
}

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	accounts  Accounts
	catalog   Catalog
	carts     Carts
	orders    Orders
	suppliers Suppliers
	news      News
	reports   Reports
	opts      Options
	checks    map[string]ReadinessCheck
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, opts Options) *Handler {
	return &Handler{
		accounts:  svc.Accounts,
		catalog:   svc.Catalog,
		carts:     svc.Carts,
		orders:    svc.Orders,
		suppliers: svc.Suppliers,
		news:      svc.News,
		reports:   svc.Reports,
		opts:      opts,
		checks:    map[string]ReadinessCheck{},
	}
}

// AddReadinessCheck registers a dependency probed by /ready
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checks[name] = check
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(h.session())

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.logout)
		authGroup.GET("/me", requireTier(auth.TierAuthenticated), h.me)
	}

	shop := v1.Group("/shop")
	{
		shop.GET("/products", h.listStorefront)
		shop.GET("/products/:id", h.getStorefrontProduct)

		cart := shop.Group("/cart", requireTier(auth.TierClient))
		cart.GET("", h.viewCart)
		cart.POST("/items", h.addToCart)
		cart.POST("/items/:product_id/decrease", h.decreaseCartItem)
		cart.DELETE("/items/:product_id", h.removeCartItem)
		cart.POST("/checkout", h.checkout)
	}

	account := v1.Group("/account", requireTier(auth.TierAuthenticated))
	{
		account.GET("/profile", h.getProfile)
		account.PUT("/profile", h.updateProfile)
		account.PUT("/password", h.changePassword)
		account.GET("/orders", h.listMyOrders)
		account.GET("/orders/:id", h.getMyOrder)
		account.POST("/orders/:id/cancel", h.cancelMyOrder)
	}

	supplier := v1.Group("/supplier", requireTier(auth.TierSupplier))
	{
		supplier.GET("/me", h.supplierMe)
		supplier.GET("/products", h.supplierProducts)
		supplier.POST("/products", h.submitProduct)
		supplier.GET("/orders", h.supplierOrders)
		supplier.GET("/orders/:id", h.supplierOrder)
	}

	news := v1.Group("/news")
	{
		news.GET("", h.listNews)
		news.GET("/types", h.listNewsTypes)
		news.GET("/:id", h.getNews)
	}

	admin := v1.Group("/admin", requireTier(auth.TierStaff))
	h.adminRoutes(admin)

	users := v1.Group("/admin/users", requireTier(auth.TierAdmin))
	{
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.POST("", h.createUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck probes each registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// pathID parses a numeric path parameter, answering 400 when it is not one
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Identificador inválido.")
		return 0, false
	}
	return id, true
}

// bind decodes a JSON body, answering 400 when it is malformed
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Pedido inválido.",
			"details": err.Error(),
		})
		return false
	}
	return true
}

// bindOptional is bind for bodies that may be omitted entirely
func bindOptional(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bind(c, dst)
}

func ok(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}
