package api

import (
	"net/http"
	"strconv"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

type labelRequest struct {
	Label string `json:"label"`
}

type lineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) adminRoutes(admin *gin.RouterGroup) {
	admin.GET("/products", h.adminListProducts)
	admin.GET("/products/pending", h.adminPendingProducts)
	admin.GET("/products/:id", h.adminGetProduct)
	admin.POST("/products", h.adminCreateProduct)
	admin.PUT("/products/:id", h.adminUpdateProduct)
	admin.DELETE("/products/:id", h.adminDeleteProduct)
	admin.POST("/products/:id/approve", h.adminApproveProduct)
	admin.POST("/products/:id/reject", h.adminRejectProduct)

	admin.GET("/product-types", h.adminListProductTypes)
	admin.GET("/product-types/:id", h.adminGetProductType)
	admin.POST("/product-types", h.adminCreateProductType)
	admin.PUT("/product-types/:id", h.adminUpdateProductType)
	admin.DELETE("/product-types/:id", h.adminDeleteProductType)

	admin.GET("/suppliers", h.adminListSuppliers)
	admin.GET("/suppliers/:id", h.adminGetSupplier)
	admin.POST("/suppliers", h.adminCreateSupplier)
	admin.PUT("/suppliers/:id", h.adminUpdateSupplier)
	admin.DELETE("/suppliers/:id", h.adminDeleteSupplier)

	admin.GET("/user-types", h.adminListUserTypes)
	admin.GET("/user-types/:id", h.adminGetUserType)
	admin.POST("/user-types", h.adminCreateUserType)
	admin.PUT("/user-types/:id", h.adminUpdateUserType)
	admin.DELETE("/user-types/:id", h.adminDeleteUserType)

	admin.GET("/orders", h.adminListOrders)
	admin.GET("/orders/:id", h.adminGetOrder)
	admin.POST("/orders", h.adminCreateOrder)
	admin.PUT("/orders/:id", h.adminUpdateOrder)
	admin.DELETE("/orders/:id", h.adminDeleteOrder)
	admin.POST("/orders/:id/lines", h.adminAddLine)
	admin.PUT("/orders/:id/lines/:product_id", h.adminUpdateLine)
	admin.DELETE("/orders/:id/lines/:product_id", h.adminRemoveLine)

	admin.GET("/news", h.listNews)
	admin.POST("/news", h.adminCreateNews)
	admin.PUT("/news/:id", h.adminUpdateNews)
	admin.DELETE("/news/:id", h.adminDeleteNews)

	admin.GET("/reports/top-suppliers", h.adminTopSuppliers)
}

// products

func (h *Handler) adminListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) adminPendingProducts(c *gin.Context) {
	products, err := h.catalog.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) adminGetProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) adminCreateProduct(c *gin.Context) {
	var req service.ProductInput
	if !bind(c, &req) {
		return
	}
	product, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Produto criado com sucesso.", "product": product})
}

func (h *Handler) adminUpdateProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req service.ProductInput
	if !bind(c, &req) {
		return
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produto atualizado com sucesso.", "product": product})
}

func (h *Handler) adminDeleteProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Produto removido com sucesso.")
}

func (h *Handler) adminApproveProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.Approve(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Produto aprovado.")
}

func (h *Handler) adminRejectProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.Reject(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Produto rejeitado.")
}

// product types

func (h *Handler) adminListProductTypes(c *gin.Context) {
	types, err := h.catalog.ListProductTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_types": types})
}

func (h *Handler) adminGetProductType(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	pt, err := h.catalog.GetProductType(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pt)
}

func (h *Handler) adminCreateProductType(c *gin.Context) {
	var req labelRequest
	if !bind(c, &req) {
		return
	}
	pt, err := h.catalog.CreateProductType(c.Request.Context(), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Tipo de produto criado com sucesso.", "product_type": pt})
}

func (h *Handler) adminUpdateProductType(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req labelRequest
	if !bind(c, &req) {
		return
	}
	if err := h.catalog.UpdateProductType(c.Request.Context(), id, req.Label); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Tipo de produto atualizado com sucesso.")
}

func (h *Handler) adminDeleteProductType(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeleteProductType(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Tipo de produto removido com sucesso.")
}

// suppliers

func (h *Handler) adminListSuppliers(c *gin.Context) {
	suppliers, err := h.catalog.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}

func (h *Handler) adminGetSupplier(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	sup, err := h.catalog.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (h *Handler) adminCreateSupplier(c *gin.Context) {
	var req service.SupplierInput
	if !bind(c, &req) {
		return
	}
	sup, err := h.catalog.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Fornecedor criado com sucesso.", "supplier": sup})
}

func (h *Handler) adminUpdateSupplier(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req service.SupplierInput
	if !bind(c, &req) {
		return
	}
	sup, err := h.catalog.UpdateSupplier(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fornecedor atualizado com sucesso.", "supplier": sup})
}

func (h *Handler) adminDeleteSupplier(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Fornecedor removido com sucesso.")
}

// users and user types

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) getUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	user, err := h.accounts.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) createUser(c *gin.Context) {
	var req service.UserInput
	if !bind(c, &req) {
		return
	}
	user, err := h.accounts.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Utilizador criado com sucesso.", "user": user})
}

func (h *Handler) updateUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req service.UserInput
	if !bind(c, &req) {
		return
	}
	user, err := h.accounts.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Utilizador atualizado com sucesso.", "user": user})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.accounts.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Utilizador removido com sucesso.")
}

func (h *Handler) adminListUserTypes(c *gin.Context) {
	types, err := h.accounts.ListUserTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_types": types})
}

func (h *Handler) adminGetUserType(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	ut, err := h.accounts.GetUserType(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ut)
}

func (h *Handler) adminCreateUserType(c *gin.Context) {
	var req labelRequest
	if !bind(c, &req) {
		return
	}
	ut, err := h.accounts.CreateUserType(c.Request.Context(), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Tipo de utilizador criado com sucesso.", "user_type": ut})
}

func (h *Handler) adminUpdateUserType(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req labelRequest
	if !bind(c, &req) {
		return
	}
	if err := h.accounts.UpdateUserType(c.Request.Context(), id, req.Label); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Tipo de utilizador atualizado com sucesso.")
}

func (h *Handler) adminDeleteUserType(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.accounts.DeleteUserType(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Tipo de utilizador removido com sucesso.")
}

// orders

func (h *Handler) adminListOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) adminGetOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	detail, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) adminCreateOrder(c *gin.Context) {
	var req service.OrderInput
	if !bind(c, &req) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Encomenda criada com sucesso.", "order": order})
}

func (h *Handler) adminUpdateOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req service.OrderInput
	if !bind(c, &req) {
		return
	}
	if err := h.orders.Update(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Encomenda atualizada com sucesso.")
}

func (h *Handler) adminDeleteOrder(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Encomenda removida com sucesso.")
}

func (h *Handler) adminAddLine(c *gin.Context) {
	orderID, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req lineRequest
	if !bind(c, &req) {
		return
	}
	if err := h.orders.AddLine(c.Request.Context(), orderID, req.ProductID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Produto adicionado à encomenda.")
}

func (h *Handler) adminUpdateLine(c *gin.Context) {
	orderID, valid := pathID(c, "id")
	if !valid {
		return
	}
	productID, valid := pathID(c, "product_id")
	if !valid {
		return
	}
	var req quantityRequest
	if !bind(c, &req) {
		return
	}
	if err := h.orders.UpdateLine(c.Request.Context(), orderID, productID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Linha de encomenda atualizada.")
}

func (h *Handler) adminRemoveLine(c *gin.Context) {
	orderID, valid := pathID(c, "id")
	if !valid {
		return
	}
	productID, valid := pathID(c, "product_id")
	if !valid {
		return
	}
	if err := h.orders.RemoveLine(c.Request.Context(), orderID, productID); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Linha de encomenda removida.")
}

// news

func (h *Handler) adminCreateNews(c *gin.Context) {
	var req service.NewsInput
	if !bind(c, &req) {
		return
	}
	n, err := h.news.Create(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Notícia criada com sucesso.", "news": n})
}

func (h *Handler) adminUpdateNews(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req service.NewsInput
	if !bind(c, &req) {
		return
	}
	n, err := h.news.Update(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notícia atualizada com sucesso.", "news": n})
}

func (h *Handler) adminDeleteNews(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.news.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Notícia removida com sucesso.")
}

// reports

func (h *Handler) adminTopSuppliers(c *gin.Context) {
	if h.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Relatórios indisponíveis."})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "Limite inválido.")
			return
		}
		limit = n
	}

	sales, err := h.reports.TopSuppliers(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": sales})
}
