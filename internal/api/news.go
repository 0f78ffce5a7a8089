package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listNews(c *gin.Context) {
	news, err := h.news.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": news})
}

func (h *Handler) getNews(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	n, err := h.news.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) listNewsTypes(c *gin.Context) {
	types, err := h.news.ListTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news_types": types})
}
