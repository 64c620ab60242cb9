package service

import (
	"context"
	"errors"

	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// StockStore is the persistence contract the stock service needs: one
// conditional adjustment that moves a variant quantity and the item
// aggregate together or not at all.
type StockStore interface {
	AdjustVariantQuantity(ctx context.Context, itemID int64, kind models.VariantKind, variantID int64, delta int) (int, error)
}

// Target locates one variant inside an item.
type Target struct {
	Kind      models.VariantKind
	VariantID int64
}

// StockService is the only component allowed to change variant
// quantities. Purchase intake drives it with positive deltas, order
// fulfillment with negative ones.
type StockService struct {
	store  StockStore
	logger *zap.Logger
}

// NewStockService creates a new stock adjustment service
func NewStockService(store StockStore) *StockService {
	return &StockService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Adjust applies a signed delta to the targeted variant and the item
// aggregate. It fails with ErrVariantNotFound when the target does not
// resolve and ErrNegativeStock when the result would drop below zero;
// in both cases nothing is written. A zero delta is a no-op success
// returning the current quantity.
func (s *StockService) Adjust(ctx context.Context, itemID int64, target Target, delta int) (int, error) {
	ctx, span := util.StartSpan(ctx, "StockService.Adjust")
	defer span.End()

	newQuantity, err := s.store.AdjustVariantQuantity(ctx, itemID, target.Kind, target.VariantID, delta)
	if err != nil {
		err = translateStoreErr(err)
		util.StockAdjustmentsRejected.WithLabelValues(rejectReason(err)).Inc()
		return 0, err
	}

	if delta != 0 {
		util.StockAdjustmentsTotal.WithLabelValues(string(target.Kind), direction(delta)).Inc()
	}

	s.logger.Debug("Stock adjusted",
		zap.Int64("item_id", itemID),
		zap.String("target", string(target.Kind)),
		zap.Int64("variant_id", target.VariantID),
		zap.Int("delta", delta),
		zap.Int("new_quantity", newQuantity))

	return newQuantity, nil
}

func direction(delta int) string {
	if delta < 0 {
		return "decrement"
	}
	return "increment"
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrVariantNotFound):
		return "variant_not_found"
	case errors.Is(err, ErrNegativeStock):
		return "negative_stock"
	case errors.Is(err, ErrNotFound):
		return "item_not_found"
	default:
		return "storage_error"
	}
}
