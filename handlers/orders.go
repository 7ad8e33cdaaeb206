package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kahenya/sales-crm/middleware"
	"github.com/kahenya/sales-crm/models"
	"github.com/kahenya/sales-crm/service"
	"github.com/kahenya/sales-crm/store"
)

type OrderHandler struct {
	orders  *store.OrderStore
	service *service.OrderService
	cache   *redis.Client
}

func NewOrderHandler(orders *store.OrderStore, svc *service.OrderService, cache *redis.Client) *OrderHandler {
	return &OrderHandler{orders: orders, service: svc, cache: cache}
}

// invalidateItems drops cached product entries whose stock the order
// workflow just changed, so reads straight after an order see the new
// stock instead of a stale cache hit.
func (h *OrderHandler) invalidateItems(ctx context.Context, items []models.OrderItem) {
	if h.cache == nil {
		return
	}
	for _, item := range items {
		h.cache.Del(ctx, productCacheKey(item.ProductID))
	}
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListMine returns the orders placed by the caller.
func (h *OrderHandler) ListMine(c *gin.Context) {
	ident, _ := middleware.CallerIdentity(c)
	orders, err := h.orders.ListBySeller(c.Request.Context(), ident.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListMineByStatus filters the caller's orders by lifecycle state.
func (h *OrderHandler) ListMineByStatus(c *gin.Context) {
	status := models.OrderStatus(c.Param("status"))
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status"})
		return
	}
	ident, _ := middleware.CallerIdentity(c)
	orders, err := h.orders.ListBySellerAndStatus(c.Request.Context(), ident.ID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get returns a single order; only the seller who placed it may see it.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ident, _ := middleware.CallerIdentity(c)
	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := service.AuthorizeOrder(order, ident); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Place creates an order for a client of the caller, reserving stock for
// every line item.
func (h *OrderHandler) Place(c *gin.Context) {
	var input service.PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ident, _ := middleware.CallerIdentity(c)
	order, err := h.service.Place(c.Request.Context(), ident, input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.invalidateItems(c.Request.Context(), order.Items)
	c.JSON(http.StatusCreated, order)
}

// Revise replaces an order's client, line items and status.
func (h *OrderHandler) Revise(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input service.ReviseOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Status != "" && !input.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status"})
		return
	}
	ident, _ := middleware.CallerIdentity(c)
	order, err := h.service.Revise(c.Request.Context(), ident, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	if input.Items != nil {
		h.invalidateItems(c.Request.Context(), order.Items)
	}
	c.JSON(http.StatusOK, order)
}

// Cancel deletes an order placed by the caller.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ident, _ := middleware.CallerIdentity(c)
	if err := h.service.Cancel(c.Request.Context(), ident, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}
