package models

import "time"

// Event types
const (
	EventTypeOrderCreated = "ORDER_CREATED"
	EventTypeOrderDeleted = "ORDER_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent is published after an order has been persisted.
// The invoice worker consumes it; WithInvoice false skips rendering.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID      int64           `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	Mobile       string          `json:"mobile"`
	Email        string          `json:"email"`
	Address      string          `json:"address"`
	TotalAmount  int64           `json:"total_amount"`
	Lines        []OrderLineData `json:"lines"`
	WithInvoice  bool            `json:"with_invoice"`
}

// OrderDeletedEvent is published after an order was deleted and its
// stock restored.
type OrderDeletedEvent struct {
	BaseEvent
	OrderID       int64 `json:"order_id"`
	RestoredLines int   `json:"restored_lines"`
	SkippedLines  int   `json:"skipped_lines"`
}

// OrderLineData represents line data carried in events
type OrderLineData struct {
	ItemID      int64  `json:"item_id"`
	Name        string `json:"name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	SizeLabel   string `json:"size"`
	DesignLabel string `json:"design"`
	LineTotal   int64  `json:"line_total"`
}
