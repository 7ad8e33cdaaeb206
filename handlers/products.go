package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kahenya/sales-crm/models"
	"github.com/kahenya/sales-crm/store"
)

const productCacheTTL = 5 * time.Minute

// productCacheKey is shared with the order handler, which drops cached
// entries whenever the order workflow changes stock.
func productCacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

type ProductHandler struct {
	products *store.ProductStore
	cache    *redis.Client
}

func NewProductHandler(products *store.ProductStore, cache *redis.Client) *ProductHandler {
	return &ProductHandler{products: products, cache: cache}
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get serves a single product, read through the redis cache when one is
// configured.
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cacheKey := productCacheKey(id)

	if h.cache != nil {
		if data, err := h.cache.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(data), &product); err == nil {
				c.JSON(http.StatusOK, product)
				return
			}
		}
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.cache != nil {
		if data, err := json.Marshal(product); err == nil {
			h.cache.Set(c.Request.Context(), cacheKey, data, productCacheTTL)
		}
	}
	c.JSON(http.StatusOK, product)
}

// Search matches product names against the q query parameter.
func (h *ProductHandler) Search(c *gin.Context) {
	text := c.Query("q")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing search text"})
		return
	}
	products, err := h.products.Search(c.Request.Context(), text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type productInput struct {
	Name  string   `json:"name" binding:"required"`
	Stock *int     `json:"stock" binding:"required,gte=0"`
	Price *float64 `json:"price" binding:"required,gte=0"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product := models.Product{Name: input.Name, Stock: *input.Stock, Price: *input.Price}
	if err := h.products.Create(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	product.Name = input.Name
	product.Stock = *input.Stock
	product.Price = *input.Price
	if err := h.products.Update(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.products.GetByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

func (h *ProductHandler) invalidate(ctx context.Context, id uint) {
	if h.cache != nil {
		h.cache.Del(ctx, productCacheKey(id))
	}
}
