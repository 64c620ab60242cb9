package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the persistence contract for order fulfillment.
type OrderStore interface {
	GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error)
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, page, limit int) ([]models.Order, int, error)
	SearchOrders(ctx context.Context, query string, page, limit int) ([]models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
	DeleteOrder(ctx context.Context, id int64) error
}

// OrderEventPublisher publishes order lifecycle events. Publishing is
// best-effort: a failure is logged and never fails the order.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
}

// OrderService converts carts into persisted orders without ever
// over-selling, and restores stock when an order is deleted.
type OrderService struct {
	store            OrderStore
	stock            *StockService
	publisher        OrderEventPublisher
	logger           *zap.Logger
	priceBandPercent int
	invoiceBaseURL   string
}

// NewOrderService creates a new order fulfillment service
func NewOrderService(store OrderStore, stock *StockService, publisher OrderEventPublisher, priceBandPercent int, invoiceBaseURL string) *OrderService {
	return &OrderService{
		store:            store,
		stock:            stock,
		publisher:        publisher,
		logger:           util.GetLogger(),
		priceBandPercent: priceBandPercent,
		invoiceBaseURL:   invoiceBaseURL,
	}
}

// CartLine is one entry of an order request. At least one variant
// dimension must be named; the named variants are the ones decremented.
type CartLine struct {
	ItemID          int64 `json:"itemId" binding:"required"`
	Quantity        int   `json:"quantity" binding:"required,min=1"`
	UnitPrice       int64 `json:"price"`
	SizeVariantID   int64 `json:"sizeId"`
	DesignVariantID int64 `json:"designId"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerName  string     `json:"customerName" binding:"required"`
	Mobile        string     `json:"mobile" binding:"required"`
	Email         string     `json:"email"`
	Address       string     `json:"address"`
	InternalNotes string     `json:"internalNotes"`
	Lines         []CartLine `json:"items" binding:"required,min=1"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	Order      *models.Order `json:"order"`
	InvoiceURL string        `json:"pdfUrl,omitempty"`
}

// appliedAdjustment remembers one decrement so it can be reversed if a
// later line fails.
type appliedAdjustment struct {
	itemID int64
	target Target
	qty    int
}

// CreateOrder runs one fulfillment attempt: validate the cart, price it
// from a batch read, reserve stock line by line, persist the order.
// The cart is all-or-nothing: a failed line reverses every decrement
// already applied before the error returns. With withInvoice set the
// response carries the invoice URL; rendering itself happens off the
// request path.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest, withInvoice bool) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := s.validateRequest(req, withInvoice); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	items, err := s.resolveItems(ctx, req.Lines)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("item_not_found").Inc()
		return nil, err
	}

	orderLines, err := s.priceLines(req.Lines, items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("pricing_rejected").Inc()
		return nil, err
	}

	applied, err := s.reserveStock(ctx, req.Lines, items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, err
	}

	var totalAmount int64
	for _, l := range orderLines {
		totalAmount += l.LineTotal
	}

	order := &models.Order{
		CustomerName:  req.CustomerName,
		Mobile:        req.Mobile,
		Email:         defaultNA(req.Email),
		Address:       defaultNA(req.Address),
		Status:        models.OrderStatusDelivered,
		TotalAmount:   totalAmount,
		InternalNotes: req.InternalNotes,
		Lines:         orderLines,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		// The stock is already decremented; give it back before failing.
		s.rollback(ctx, applied)
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("total_amount", order.TotalAmount),
		zap.Bool("with_invoice", withInvoice))

	s.publishOrderCreated(ctx, order, withInvoice)

	resp := &CreateOrderResponse{Order: order}
	if withInvoice {
		resp.InvoiceURL = fmt.Sprintf("%s/order_%d.pdf", s.invoiceBaseURL, order.ID)
	}
	return resp, nil
}

func (s *OrderService) validateRequest(req *CreateOrderRequest, withInvoice bool) error {
	if req.CustomerName == "" || req.Mobile == "" {
		return fmt.Errorf("customerName and mobile are required: %w", ErrInvalidInput)
	}
	if withInvoice && (req.Email == "" || req.Address == "") {
		return fmt.Errorf("email and address are required for an invoiced order: %w", ErrInvalidInput)
	}
	if len(req.Lines) == 0 {
		return fmt.Errorf("items must be a non-empty list: %w", ErrInvalidInput)
	}
	for _, line := range req.Lines {
		if line.ItemID == 0 || line.Quantity <= 0 {
			return fmt.Errorf("every line needs an itemId and a positive quantity: %w", ErrInvalidInput)
		}
		if line.SizeVariantID == 0 && line.DesignVariantID == 0 {
			return fmt.Errorf("every line must name a size or design variant: %w", ErrInvalidInput)
		}
	}
	return nil
}

// resolveItems reads all cart items in one batch and verifies each line
// resolves to a stored item.
func (s *OrderService) resolveItems(ctx context.Context, lines []CartLine) (map[int64]*models.Item, error) {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ItemID] {
			seen[line.ItemID] = true
			ids = append(ids, line.ItemID)
		}
	}

	items, err := s.store.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart items: %w", err)
	}

	byID := make(map[int64]*models.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
	}
	return byID, nil
}

// priceLines builds the order lines from the cart and the resolved
// items. The caller-supplied price is used but must stay inside the
// configured band around the item's reference price; a zero price
// falls back to the reference price.
func (s *OrderService) priceLines(lines []CartLine, items map[int64]*models.Item) ([]models.OrderLine, error) {
	orderLines := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		item := items[line.ItemID]

		price := line.UnitPrice
		if price == 0 {
			price = item.Price
		}
		if err := s.checkPriceBand(item, price); err != nil {
			return nil, err
		}

		var sizeLabel, designLabel string
		if line.SizeVariantID != 0 {
			sv := findSizeVariant(item, line.SizeVariantID)
			if sv == nil {
				return nil, fmt.Errorf("size variant %d of item %d: %w", line.SizeVariantID, item.ID, ErrVariantNotFound)
			}
			sizeLabel = sv.Label
		}
		if line.DesignVariantID != 0 {
			dv := findDesignVariant(item, line.DesignVariantID)
			if dv == nil {
				return nil, fmt.Errorf("design variant %d of item %d: %w", line.DesignVariantID, item.ID, ErrVariantNotFound)
			}
			designLabel = dv.Label
		}

		orderLines = append(orderLines, models.OrderLine{
			ItemID:      item.ID,
			Name:        item.Name,
			UnitPrice:   price,
			Quantity:    line.Quantity,
			SizeLabel:   sizeLabel,
			DesignLabel: designLabel,
			LineTotal:   price * int64(line.Quantity),
		})
	}
	return orderLines, nil
}

// checkPriceBand bounds the negotiated price instead of trusting it
// outright. A zero reference price accepts any non-negative price.
func (s *OrderService) checkPriceBand(item *models.Item, price int64) error {
	if price < 0 {
		return fmt.Errorf("negative price for item %q: %w", item.Name, ErrInvalidInput)
	}
	if item.Price == 0 || s.priceBandPercent <= 0 {
		return nil
	}
	band := item.Price * int64(s.priceBandPercent) / 100
	if price < item.Price-band || price > item.Price+band {
		return fmt.Errorf("price %d for item %q outside allowed band around %d: %w",
			price, item.Name, item.Price, ErrInvalidInput)
	}
	return nil
}

// reserveStock decrements every line's named variants. On the first
// failure it reverses the decrements already applied and returns
// ErrInsufficientStock naming the offending item; no line of the cart
// keeps a partial decrement.
func (s *OrderService) reserveStock(ctx context.Context, lines []CartLine, items map[int64]*models.Item) ([]appliedAdjustment, error) {
	start := time.Now()
	defer func() {
		util.OrderReserveLatency.Observe(time.Since(start).Seconds())
	}()

	var applied []appliedAdjustment
	for _, line := range lines {
		targets := make([]Target, 0, 2)
		if line.SizeVariantID != 0 {
			targets = append(targets, Target{Kind: models.VariantKindSize, VariantID: line.SizeVariantID})
		}
		if line.DesignVariantID != 0 {
			targets = append(targets, Target{Kind: models.VariantKindDesign, VariantID: line.DesignVariantID})
		}

		for _, target := range targets {
			if _, err := s.stock.Adjust(ctx, line.ItemID, target, -line.Quantity); err != nil {
				s.rollback(ctx, applied)
				if errors.Is(err, ErrNegativeStock) {
					return nil, fmt.Errorf("not enough stock for item %q: %w", items[line.ItemID].Name, ErrInsufficientStock)
				}
				return nil, fmt.Errorf("failed to reserve stock for item %d: %w", line.ItemID, err)
			}
			applied = append(applied, appliedAdjustment{itemID: line.ItemID, target: target, qty: line.Quantity})
		}
	}
	return applied, nil
}

// rollback reverses already-applied decrements (compensation in place
// of a cross-item transaction).
func (s *OrderService) rollback(ctx context.Context, applied []appliedAdjustment) {
	if len(applied) == 0 {
		return
	}
	util.OrderRollbacksTotal.Inc()
	for _, a := range applied {
		if _, err := s.stock.Adjust(ctx, a.itemID, a.target, a.qty); err != nil {
			s.logger.Error("Failed to compensate reservation",
				zap.Int64("item_id", a.itemID),
				zap.Int64("variant_id", a.target.VariantID),
				zap.Int("quantity", a.qty),
				zap.Error(err))
		}
	}
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *models.Order, withInvoice bool) {
	if s.publisher == nil {
		return
	}

	lines := make([]models.OrderLineData, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, models.OrderLineData{
			ItemID:      l.ItemID,
			Name:        l.Name,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			SizeLabel:   l.SizeLabel,
			DesignLabel: l.DesignLabel,
			LineTotal:   l.LineTotal,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Mobile:       order.Mobile,
		Email:        order.Email,
		Address:      order.Address,
		TotalAmount:  order.TotalAmount,
		Lines:        lines,
		WithInvoice:  withInvoice,
	}

	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
}

// GetOrder retrieves an order with its lines.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return order, nil
}

// ListOrders returns one page of orders plus the page count.
func (s *OrderService) ListOrders(ctx context.Context, page, limit int) ([]models.Order, int, error) {
	orders, total, err := s.store.ListOrders(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return orders, totalPages(total, limit), nil
}

// SearchOrders filters orders by customer name.
func (s *OrderService) SearchOrders(ctx context.Context, query string, page, limit int) ([]models.Order, int, error) {
	if query == "" {
		return nil, 0, fmt.Errorf("search query is required: %w", ErrInvalidInput)
	}
	orders, total, err := s.store.SearchOrders(ctx, query, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return orders, totalPages(total, limit), nil
}

// UpdateStatus transitions the order status, the only mutation an
// order accepts after creation.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("invalid order status %q: %w", status, ErrInvalidInput)
	}
	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return translateStoreErr(err)
	}
	return nil
}

// DeleteOrder removes an order and restores each line's quantity to the
// variants recorded on the line. Lines whose item or variant no longer
// exists are skipped with a warning, not failed: the deletion itself
// stands.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return translateStoreErr(err)
	}

	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		return translateStoreErr(err)
	}

	restored, skipped := 0, 0
	for _, line := range order.Lines {
		item, err := s.store.GetItemByID(ctx, line.ItemID)
		if err != nil {
			skipped++
			s.logger.Warn("Skipping stock restoration, item gone",
				zap.Int64("order_id", orderID),
				zap.Int64("item_id", line.ItemID),
				zap.Error(err))
			continue
		}

		if s.restoreLine(ctx, item, line) {
			restored++
		} else {
			skipped++
		}
	}

	util.OrdersDeletedTotal.Inc()
	s.logger.Info("Order deleted and stock restored",
		zap.Int64("order_id", orderID),
		zap.Int("restored_lines", restored),
		zap.Int("skipped_lines", skipped))

	if s.publisher != nil {
		event := &models.OrderDeletedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderDeleted,
				Timestamp: time.Now(),
			},
			OrderID:       orderID,
			RestoredLines: restored,
			SkippedLines:  skipped,
		}
		if err := s.publisher.PublishOrderDeleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderDeleted event",
				zap.Int64("order_id", orderID),
				zap.Error(err))
		}
	}

	return nil
}

// restoreLine gives one line's quantity back to the variants named by
// the recorded labels. Returns false when nothing could be restored.
func (s *OrderService) restoreLine(ctx context.Context, item *models.Item, line models.OrderLine) bool {
	restoredAny := false

	if line.SizeLabel != "" {
		if sv := findSizeVariantByLabel(item, line.SizeLabel); sv != nil {
			if _, err := s.stock.Adjust(ctx, item.ID, Target{Kind: models.VariantKindSize, VariantID: sv.ID}, line.Quantity); err != nil {
				s.logger.Warn("Failed to restore size variant stock",
					zap.Int64("item_id", item.ID),
					zap.String("size", line.SizeLabel),
					zap.Error(err))
			} else {
				restoredAny = true
			}
		} else {
			s.logger.Warn("Skipping size restoration, variant gone",
				zap.Int64("item_id", item.ID),
				zap.String("size", line.SizeLabel))
		}
	}

	if line.DesignLabel != "" {
		if dv := findDesignVariantByLabel(item, line.DesignLabel); dv != nil {
			if _, err := s.stock.Adjust(ctx, item.ID, Target{Kind: models.VariantKindDesign, VariantID: dv.ID}, line.Quantity); err != nil {
				s.logger.Warn("Failed to restore design variant stock",
					zap.Int64("item_id", item.ID),
					zap.String("design", line.DesignLabel),
					zap.Error(err))
			} else {
				restoredAny = true
			}
		} else {
			s.logger.Warn("Skipping design restoration, variant gone",
				zap.Int64("item_id", item.ID),
				zap.String("design", line.DesignLabel))
		}
	}

	return restoredAny
}

func defaultNA(s string) string {
	if s == "" {
		return "NA"
	}
	return s
}

func totalPages(total, limit int) int {
	if limit < 1 {
		limit = 10
	}
	return (total + limit - 1) / limit
}

func findSizeVariant(item *models.Item, id int64) *models.SizeVariant {
	for i := range item.Sizes {
		if item.Sizes[i].ID == id {
			return &item.Sizes[i]
		}
	}
	return nil
}

func findDesignVariant(item *models.Item, id int64) *models.DesignVariant {
	for i := range item.Designs {
		if item.Designs[i].ID == id {
			return &item.Designs[i]
		}
	}
	return nil
}

func findSizeVariantByLabel(item *models.Item, label string) *models.SizeVariant {
	for i := range item.Sizes {
		if item.Sizes[i].Label == label {
			return &item.Sizes[i]
		}
	}
	return nil
}

func findDesignVariantByLabel(item *models.Item, label string) *models.DesignVariant {
	for i := range item.Designs {
		if item.Designs[i].Label == label {
			return &item.Designs[i]
		}
	}
	return nil
}
