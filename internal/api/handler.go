package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"inventory-service/internal/service"
	"inventory-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	items      *service.ItemService
	purchases  *service.PurchaseService
	orders     *service.OrderService
	dashboard  *service.DashboardService
	invoiceDir string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	items *service.ItemService,
	purchases *service.PurchaseService,
	orders *service.OrderService,
	dashboard *service.DashboardService,
	invoiceDir string,
) *Handler {
	return &Handler{
		items:      items,
		purchases:  purchases,
		orders:     orders,
		dashboard:  dashboard,
		invoiceDir: invoiceDir,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Static("/invoices", h.invoiceDir)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/dashboard/stats", h.dashboardStats)

		v1.POST("/items", h.createItem)
		v1.GET("/items", h.listItems)
		v1.GET("/items/search", h.searchItems)
		v1.GET("/items/category/:category", h.itemsByCategory)
		v1.POST("/items/batch", h.getMultipleItems)
		v1.GET("/items/:id", h.getItem)
		v1.PUT("/items/:id", h.updateItem)
		v1.DELETE("/items/:id", h.deleteItem)

		v1.POST("/purchases", h.restock)
		v1.POST("/purchases/new", h.newItemPurchase)
		v1.GET("/purchases", h.listPurchases)

		v1.POST("/orders", h.createOrder)
		v1.POST("/orders/no-invoice", h.createOrderWithoutInvoice)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/search", h.searchOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.PATCH("/orders/:id/status", h.updateOrderStatus)
		v1.DELETE("/orders/:id", h.deleteOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// --- items ---

func (h *Handler) createItem(c *gin.Context) {
	var req service.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	item, err := h.items.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.items.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) searchItems(c *gin.Context) {
	items, err := h.items.Search(c.Request.Context(), c.Query("name"), c.Query("style"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) itemsByCategory(c *gin.Context) {
	items, err := h.items.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getMultipleItems(c *gin.Context) {
	var req struct {
		IDs []int64 `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	items, err := h.items.GetMultiple(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) updateItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	item, err := h.items.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.items.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

// --- purchases ---

func (h *Handler) restock(c *gin.Context) {
	var req service.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	purchase, err := h.purchases.Restock(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"purchase": purchase})
}

func (h *Handler) newItemPurchase(c *gin.Context) {
	var req service.NewItemPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	item, purchase, err := h.purchases.NewItemPurchase(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"item": item, "purchase": purchase})
}

func (h *Handler) listPurchases(c *gin.Context) {
	purchases, err := h.purchases.ListPurchases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

// --- orders ---

func (h *Handler) createOrder(c *gin.Context) {
	h.placeOrder(c, true)
}

func (h *Handler) createOrderWithoutInvoice(c *gin.Context) {
	h.placeOrder(c, false)
}

func (h *Handler) placeOrder(c *gin.Context, withInvoice bool) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.orders.CreateOrder(c.Request.Context(), &req, withInvoice)
	if err != nil {
		respondError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) listOrders(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)

	orders, totalPages, err := h.orders.ListOrders(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

func (h *Handler) searchOrders(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)

	orders, totalPages, err := h.orders.SearchOrders(c.Request.Context(), c.Query("query"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"orderStatus" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted and stock updated successfully"})
}

// --- helpers ---

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// respondError maps the service error taxonomy onto HTTP statuses:
// invalid input 400, missing identifiers 404, stock conflicts 409,
// everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrVariantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock), errors.Is(err, service.ErrNegativeStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error", "details": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
