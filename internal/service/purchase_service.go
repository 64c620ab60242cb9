package service

import (
	"context"
	"fmt"

	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// PurchaseStore is the persistence contract for purchase intake.
type PurchaseStore interface {
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	CreatePurchase(ctx context.Context, p *models.Purchase) error
	ListPurchases(ctx context.Context) ([]models.Purchase, error)
}

// PurchaseService records incoming stock. Each successful call appends
// exactly one ledger row; retries are the caller's responsibility.
type PurchaseService struct {
	store  PurchaseStore
	stock  *StockService
	logger *zap.Logger
}

// NewPurchaseService creates a new purchase intake service
func NewPurchaseService(store PurchaseStore, stock *StockService) *PurchaseService {
	return &PurchaseService{
		store:  store,
		stock:  stock,
		logger: util.GetLogger(),
	}
}

// RestockRequest replenishes an existing item.
type RestockRequest struct {
	ItemID          int64  `json:"itemId" binding:"required"`
	SizeVariantID   int64  `json:"sizeId" binding:"required"`
	DesignVariantID int64  `json:"designId" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	UnitPrice       int64  `json:"price"`
	Notes           string `json:"notes"`
}

// NewItemPurchaseRequest creates a new item through a purchase.
type NewItemPurchaseRequest struct {
	Name     string `json:"name" binding:"required"`
	Style    string `json:"style"`
	Shed     string `json:"shed"`
	Unit     string `json:"unit"`
	Category string `json:"category" binding:"required"`
	Price    int64  `json:"price"`
	Notes    string `json:"notes"`
	Size     string `json:"size" binding:"required"`
	Design   string `json:"design" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// Restock records a purchase against an existing item. The size and
// design deltas are applied as two adjustments but the purchase is one
// logical event: both variant identifiers are resolved against the
// loaded item before any stock moves, so a bad identifier fails the
// whole operation with no partial update.
func (s *PurchaseService) Restock(ctx context.Context, req *RestockRequest) (*models.Purchase, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.Restock")
	defer span.End()

	if req.ItemID == 0 || req.SizeVariantID == 0 || req.DesignVariantID == 0 || req.Quantity <= 0 {
		return nil, fmt.Errorf("itemId, sizeId, designId and a positive quantity are required: %w", ErrInvalidInput)
	}

	item, err := s.store.GetItemByID(ctx, req.ItemID)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	if !hasSizeVariant(item, req.SizeVariantID) {
		return nil, fmt.Errorf("size variant %d of item %d: %w", req.SizeVariantID, item.ID, ErrVariantNotFound)
	}
	if !hasDesignVariant(item, req.DesignVariantID) {
		return nil, fmt.Errorf("design variant %d of item %d: %w", req.DesignVariantID, item.ID, ErrVariantNotFound)
	}

	if _, err := s.stock.Adjust(ctx, item.ID, Target{models.VariantKindSize, req.SizeVariantID}, req.Quantity); err != nil {
		return nil, fmt.Errorf("apply size delta: %w", err)
	}
	if _, err := s.stock.Adjust(ctx, item.ID, Target{models.VariantKindDesign, req.DesignVariantID}, req.Quantity); err != nil {
		// Reverse the size delta so the failed purchase leaves no trace.
		if _, rerr := s.stock.Adjust(ctx, item.ID, Target{models.VariantKindSize, req.SizeVariantID}, -req.Quantity); rerr != nil {
			s.logger.Error("Failed to reverse size delta after design failure",
				zap.Int64("item_id", item.ID),
				zap.Int64("size_variant_id", req.SizeVariantID),
				zap.Error(rerr))
		}
		return nil, fmt.Errorf("apply design delta: %w", err)
	}

	unitPrice := req.UnitPrice
	if unitPrice == 0 {
		unitPrice = item.Price
	}

	purchase := &models.Purchase{
		ItemID:          item.ID,
		SizeVariantID:   req.SizeVariantID,
		DesignVariantID: req.DesignVariantID,
		Quantity:        req.Quantity,
		UnitPrice:       unitPrice,
		Notes:           req.Notes,
	}
	if err := s.store.CreatePurchase(ctx, purchase); err != nil {
		// The ledger row is the record of the event; without it the
		// stock increments must not stand either.
		s.reverseDeltas(ctx, item.ID, req.SizeVariantID, req.DesignVariantID, req.Quantity)
		return nil, fmt.Errorf("failed to append purchase: %w", err)
	}

	util.PurchasesRecordedTotal.WithLabelValues("restock").Inc()
	s.logger.Info("Purchase recorded",
		zap.Int64("purchase_id", purchase.ID),
		zap.Int64("item_id", item.ID),
		zap.Int("quantity", req.Quantity))

	return purchase, nil
}

// NewItemPurchase creates a new item with its initial size and design
// variants and appends the purchase that brought it in.
func (s *PurchaseService) NewItemPurchase(ctx context.Context, req *NewItemPurchaseRequest) (*models.Item, *models.Purchase, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.NewItemPurchase")
	defer span.End()

	if req.Name == "" || req.Size == "" || req.Design == "" || req.Quantity <= 0 {
		return nil, nil, fmt.Errorf("name, size, design and a positive quantity are required: %w", ErrInvalidInput)
	}
	if !models.ValidCategory(req.Category) {
		return nil, nil, fmt.Errorf("invalid category %q: %w", req.Category, ErrInvalidInput)
	}

	item := &models.Item{
		Name:     req.Name,
		Style:    req.Style,
		Shed:     req.Shed,
		Unit:     req.Unit,
		Category: req.Category,
		Price:    req.Price,
		Notes:    req.Notes,
		Sizes:    []models.SizeVariant{{Label: req.Size, Quantity: req.Quantity}},
		Designs:  []models.DesignVariant{{Label: req.Design, Quantity: req.Quantity}},
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, nil, fmt.Errorf("failed to create item: %w", err)
	}

	purchase := &models.Purchase{
		ItemID:          item.ID,
		SizeVariantID:   item.Sizes[0].ID,
		DesignVariantID: item.Designs[0].ID,
		Quantity:        req.Quantity,
		UnitPrice:       req.Price,
		Notes:           req.Notes,
	}
	if err := s.store.CreatePurchase(ctx, purchase); err != nil {
		// Same whole-event rule as Restock: no ledger row, no item.
		if derr := s.store.DeleteItem(ctx, item.ID); derr != nil {
			s.logger.Error("Failed to remove item after ledger failure",
				zap.Int64("item_id", item.ID),
				zap.Error(derr))
		}
		return nil, nil, fmt.Errorf("failed to append purchase: %w", err)
	}

	util.PurchasesRecordedTotal.WithLabelValues("new_item").Inc()
	s.logger.Info("New item created via purchase",
		zap.Int64("item_id", item.ID),
		zap.Int64("purchase_id", purchase.ID))

	return item, purchase, nil
}

// reverseDeltas takes back the size and design increments of a failed
// restock. Reversal errors are logged; there is nothing further to
// unwind.
func (s *PurchaseService) reverseDeltas(ctx context.Context, itemID, sizeVariantID, designVariantID int64, qty int) {
	for _, t := range []Target{
		{models.VariantKindSize, sizeVariantID},
		{models.VariantKindDesign, designVariantID},
	} {
		if _, err := s.stock.Adjust(ctx, itemID, t, -qty); err != nil {
			s.logger.Error("Failed to reverse stock delta after ledger failure",
				zap.Int64("item_id", itemID),
				zap.String("target", string(t.Kind)),
				zap.Int64("variant_id", t.VariantID),
				zap.Error(err))
		}
	}
}

// ListPurchases returns the full ledger, newest first.
func (s *PurchaseService) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	return s.store.ListPurchases(ctx)
}

func hasSizeVariant(item *models.Item, id int64) bool {
	for _, v := range item.Sizes {
		if v.ID == id {
			return true
		}
	}
	return false
}

func hasDesignVariant(item *models.Item, id int64) bool {
	for _, v := range item.Designs {
		if v.ID == id {
			return true
		}
	}
	return false
}
