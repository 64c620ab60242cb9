package models

import "time"

// VariantKind selects which variant dimension an adjustment targets.
type VariantKind string

const (
	VariantKindSize   VariantKind = "size"
	VariantKindDesign VariantKind = "design"
)

// Item categories
const (
	CategoryTiles     = "Tiles"
	CategoryBathTub   = "Bath Tub"
	CategoryWashBasin = "Wash Basin"
)

// Categories lists the valid item categories.
var Categories = []string{CategoryTiles, CategoryBathTub, CategoryWashBasin}

// ValidCategory reports whether c is a known item category.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if cat == c {
			return true
		}
	}
	return false
}

// Item represents a stocked item. TotalQuantity is derived: it always
// equals the sum of all size and design variant quantities.
type Item struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Style         string    `db:"style" json:"style"`
	Shed          string    `db:"shed" json:"shed"`
	Unit          string    `db:"unit" json:"unit"` // Box/Sqft/No
	Category      string    `db:"category" json:"category"`
	Price         int64     `db:"price" json:"price"`
	Notes         string    `db:"notes" json:"notes"`
	TotalQuantity int       `db:"total_quantity" json:"totalQuantity"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	Sizes   []SizeVariant   `db:"-" json:"sizes"`
	Designs []DesignVariant `db:"-" json:"designs"`
}

// SizeVariant is a per-size stock record owned by a single item.
type SizeVariant struct {
	ID       int64  `db:"id" json:"id"`
	ItemID   int64  `db:"item_id" json:"item_id"`
	Label    string `db:"label" json:"size"`
	Quantity int    `db:"quantity" json:"quantity"`
}

// DesignVariant is a per-design stock record owned by a single item.
type DesignVariant struct {
	ID       int64  `db:"id" json:"id"`
	ItemID   int64  `db:"item_id" json:"item_id"`
	Label    string `db:"label" json:"design"`
	Quantity int    `db:"quantity" json:"quantity"`
}

// Purchase is an append-only ledger entry for incoming stock. Rows are
// never edited or deleted once written.
type Purchase struct {
	ID              int64     `db:"id" json:"id"`
	ItemID          int64     `db:"item_id" json:"itemId"`
	SizeVariantID   int64     `db:"size_variant_id" json:"sizeId"`
	DesignVariantID int64     `db:"design_variant_id" json:"designId"`
	Quantity        int       `db:"quantity" json:"quantity"`
	UnitPrice       int64     `db:"unit_price" json:"price"`
	Notes           string    `db:"notes" json:"notes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Order statuses
const (
	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Order is a customer order. Immutable after creation except for status
// transitions and deletion (which restores the consumed stock).
type Order struct {
	ID            int64     `db:"id" json:"id"`
	CustomerName  string    `db:"customer_name" json:"customerName"`
	Mobile        string    `db:"mobile" json:"mobile"`
	Email         string    `db:"email" json:"email"`
	Address       string    `db:"address" json:"address"`
	Status        string    `db:"status" json:"orderStatus"`
	TotalAmount   int64     `db:"total_amount" json:"totalAmount"`
	InternalNotes string    `db:"internal_notes" json:"internalNotes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	Lines []OrderLine `db:"-" json:"items"`
}

// OrderLine snapshots one cart line at the time of sale.
type OrderLine struct {
	ID          int64  `db:"id" json:"id"`
	OrderID     int64  `db:"order_id" json:"order_id"`
	ItemID      int64  `db:"item_id" json:"item_id"`
	Name        string `db:"name" json:"name"`
	UnitPrice   int64  `db:"unit_price" json:"price"`
	Quantity    int    `db:"quantity" json:"quantity"`
	SizeLabel   string `db:"size_label" json:"size"`
	DesignLabel string `db:"design_label" json:"design"`
	LineTotal   int64  `db:"line_total" json:"item_total_price"`
}

// CategoryStats is the per-category slice of the dashboard.
type CategoryStats struct {
	Category      string          `json:"category"`
	TotalQuantity int             `json:"totalQuantity"`
	Sizes         []SizeVariant   `json:"sizes"`
	Designs       []DesignVariant `json:"designs"`
}

// TopSeller is the highest-selling item by cumulative ordered quantity.
type TopSeller struct {
	Name      string `db:"name" json:"name"`
	TotalSold int    `db:"total_sold" json:"totalSold"`
}

// DashboardStats is the full dashboard payload, recomputed from the
// source data on every call.
type DashboardStats struct {
	TotalItems           int             `json:"totalItems"`
	TotalQuantity        int             `json:"totalQuantity"`
	CategoryWiseQuantity []CategoryStats `json:"categoryWiseQuantity"`
	HighestSellItem      *TopSeller      `json:"highestSellItem"`
	HighestOrderAmount   int64           `json:"highestOrderAmount"`
	TotalOrderAmount     int64           `json:"totalOrderAmount"`
}
