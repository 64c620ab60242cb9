package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestock(t *testing.T) {
	f := newFakeStore()
	item := seedTileItem(f, 5, 5)
	svc := NewPurchaseService(f, NewStockService(f))

	purchase, err := svc.Restock(context.Background(), &RestockRequest{
		ItemID:          item.ID,
		SizeVariantID:   item.Sizes[0].ID,
		DesignVariantID: item.Designs[0].ID,
		Quantity:        10,
	})

	require.NoError(t, err)
	assert.Equal(t, 15, f.sizeQty(item.ID, item.Sizes[0].ID))
	assert.Equal(t, 15, f.designQty(item.ID, item.Designs[0].ID))
	// Both dimensions moved, so the aggregate gained twice the quantity.
	assert.Equal(t, 30, f.totalQty(item.ID))

	// Exactly one ledger row, priced from the item's reference price.
	assert.NotZero(t, purchase.ID)
	assert.Equal(t, item.Price, purchase.UnitPrice)
	ledger, err := svc.ListPurchases(context.Background())
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, 10, ledger[0].Quantity)
}

func TestRestockUnknownDesignFailsWholeEvent(t *testing.T) {
	f := newFakeStore()
	item := seedTileItem(f, 5, 5)
	svc := NewPurchaseService(f, NewStockService(f))

	_, err := svc.Restock(context.Background(), &RestockRequest{
		ItemID:          item.ID,
		SizeVariantID:   item.Sizes[0].ID,
		DesignVariantID: 9999,
		Quantity:        10,
	})

	assert.True(t, errors.Is(err, ErrVariantNotFound))
	// No partial update: the size variant never moved, no ledger row.
	assert.Equal(t, 5, f.sizeQty(item.ID, item.Sizes[0].ID))
	assert.Equal(t, 10, f.totalQty(item.ID))
	ledger, _ := svc.ListPurchases(context.Background())
	assert.Empty(t, ledger)
}

func TestRestockReversesSizeWhenDesignFails(t *testing.T) {
	f := newFakeStore()
	item := seedTileItem(f, 5, 5)
	svc := NewPurchaseService(f, NewStockService(f))

	// The design variant resolves against the loaded item but the write
	// itself fails, forcing the compensating reversal of the size delta.
	f.adjustErr = map[models.VariantKind]error{
		models.VariantKindDesign: fmt.Errorf("connection reset"),
	}

	_, err := svc.Restock(context.Background(), &RestockRequest{
		ItemID:          item.ID,
		SizeVariantID:   item.Sizes[0].ID,
		DesignVariantID: item.Designs[0].ID,
		Quantity:        10,
	})

	require.Error(t, err)
	assert.Equal(t, 5, f.sizeQty(item.ID, item.Sizes[0].ID))
	assert.Equal(t, 5, f.designQty(item.ID, item.Designs[0].ID))
	assert.Equal(t, 10, f.totalQty(item.ID))
	ledger, _ := svc.ListPurchases(context.Background())
	assert.Empty(t, ledger)
}

func TestRestockReversesStockWhenLedgerFails(t *testing.T) {
	f := newFakeStore()
	item := seedTileItem(f, 5, 5)
	svc := NewPurchaseService(f, NewStockService(f))

	f.failCreatePurchase = true

	_, err := svc.Restock(context.Background(), &RestockRequest{
		ItemID:          item.ID,
		SizeVariantID:   item.Sizes[0].ID,
		DesignVariantID: item.Designs[0].ID,
		Quantity:        10,
	})

	require.Error(t, err)
	// Both increments were taken back: stock never rises without a
	// matching ledger row.
	assert.Equal(t, 5, f.sizeQty(item.ID, item.Sizes[0].ID))
	assert.Equal(t, 5, f.designQty(item.ID, item.Designs[0].ID))
	assert.Equal(t, 10, f.totalQty(item.ID))
	ledger, _ := svc.ListPurchases(context.Background())
	assert.Empty(t, ledger)
}

func TestNewItemPurchase(t *testing.T) {
	f := newFakeStore()
	svc := NewPurchaseService(f, NewStockService(f))

	item, purchase, err := svc.NewItemPurchase(context.Background(), &NewItemPurchaseRequest{
		Name:     "Royal Bath Tub",
		Category: models.CategoryBathTub,
		Price:    1200000,
		Size:     "5ft",
		Design:   "Oval",
		Quantity: 4,
	})

	require.NoError(t, err)
	require.Len(t, item.Sizes, 1)
	require.Len(t, item.Designs, 1)
	assert.Equal(t, 4, item.Sizes[0].Quantity)
	assert.Equal(t, 4, item.Designs[0].Quantity)
	assert.Equal(t, 8, f.totalQty(item.ID))

	assert.Equal(t, item.ID, purchase.ItemID)
	assert.Equal(t, item.Sizes[0].ID, purchase.SizeVariantID)
	assert.Equal(t, item.Designs[0].ID, purchase.DesignVariantID)
	assert.Equal(t, 4, purchase.Quantity)
}

func TestNewItemPurchaseRemovesItemWhenLedgerFails(t *testing.T) {
	f := newFakeStore()
	svc := NewPurchaseService(f, NewStockService(f))

	f.failCreatePurchase = true

	_, _, err := svc.NewItemPurchase(context.Background(), &NewItemPurchaseRequest{
		Name:     "Royal Bath Tub",
		Category: models.CategoryBathTub,
		Price:    1200000,
		Size:     "5ft",
		Design:   "Oval",
		Quantity: 4,
	})

	require.Error(t, err)
	items, err := f.GetItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewItemPurchaseInvalidCategory(t *testing.T) {
	f := newFakeStore()
	svc := NewPurchaseService(f, NewStockService(f))

	_, _, err := svc.NewItemPurchase(context.Background(), &NewItemPurchaseRequest{
		Name:     "Mystery Item",
		Category: "Furniture",
		Size:     "M",
		Design:   "Plain",
		Quantity: 1,
	})

	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestRestockRejectsNonPositiveQuantity(t *testing.T) {
	f := newFakeStore()
	item := seedTileItem(f, 5, 5)
	svc := NewPurchaseService(f, NewStockService(f))

	_, err := svc.Restock(context.Background(), &RestockRequest{
		ItemID:          item.ID,
		SizeVariantID:   item.Sizes[0].ID,
		DesignVariantID: item.Designs[0].ID,
		Quantity:        0,
	})

	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestListPurchasesNewestFirst(t *testing.T) {
	f := newFakeStore()
	item := seedTileItem(f, 5, 5)
	svc := NewPurchaseService(f, NewStockService(f))

	for _, qty := range []int{1, 2, 3} {
		_, err := svc.Restock(context.Background(), &RestockRequest{
			ItemID:          item.ID,
			SizeVariantID:   item.Sizes[0].ID,
			DesignVariantID: item.Designs[0].ID,
			Quantity:        qty,
		})
		require.NoError(t, err)
	}

	ledger, err := svc.ListPurchases(context.Background())
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, 3, ledger[0].Quantity)
	assert.Equal(t, 1, ledger[2].Quantity)
}
