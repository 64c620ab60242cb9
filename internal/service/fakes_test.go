package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"inventory-service/internal/models"
	"inventory-service/internal/store"
)

// fakeStore is an in-memory stand-in for *store.Store. It honors the
// same sentinel errors and the same non-negative guard so the service
// layer can be tested without a database.
type fakeStore struct {
	mu        sync.Mutex
	items     map[int64]*models.Item
	orders    map[int64]*models.Order
	purchases []models.Purchase
	nextID    int64

	failCreateOrder    bool
	failCreatePurchase bool
	adjustErr          map[models.VariantKind]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:  make(map[int64]*models.Item),
		orders: make(map[int64]*models.Order),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// seedItem registers an item, assigning IDs and the aggregate.
func (f *fakeStore) seedItem(item *models.Item) *models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()

	item.ID = f.id()
	total := 0
	for i := range item.Sizes {
		item.Sizes[i].ID = f.id()
		item.Sizes[i].ItemID = item.ID
		total += item.Sizes[i].Quantity
	}
	for i := range item.Designs {
		item.Designs[i].ID = f.id()
		item.Designs[i].ItemID = item.ID
		total += item.Designs[i].Quantity
	}
	item.TotalQuantity = total
	f.items[item.ID] = item
	return item
}

func (f *fakeStore) AdjustVariantQuantity(ctx context.Context, itemID int64, kind models.VariantKind, variantID int64, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.adjustErr[kind]; err != nil {
		return 0, err
	}

	item, ok := f.items[itemID]
	if !ok {
		return 0, fmt.Errorf("item %d: %w", itemID, store.ErrNotFound)
	}

	var qty *int
	switch kind {
	case models.VariantKindSize:
		for i := range item.Sizes {
			if item.Sizes[i].ID == variantID {
				qty = &item.Sizes[i].Quantity
			}
		}
	case models.VariantKindDesign:
		for i := range item.Designs {
			if item.Designs[i].ID == variantID {
				qty = &item.Designs[i].Quantity
			}
		}
	}
	if qty == nil {
		return 0, fmt.Errorf("%s variant %d of item %d: %w", kind, variantID, itemID, store.ErrVariantNotFound)
	}
	if *qty+delta < 0 {
		return 0, fmt.Errorf("%s variant %d of item %d: %w", kind, variantID, itemID, store.ErrNegativeStock)
	}

	*qty += delta
	item.TotalQuantity += delta
	return *qty, nil
}

func (f *fakeStore) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, store.ErrNotFound)
	}
	return item, nil
}

func (f *fakeStore) GetItems(ctx context.Context) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Item, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeStore) GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Item
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchItems(ctx context.Context, name, style string) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Item
	for _, item := range f.items {
		if name != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(name)) {
			continue
		}
		if style != "" && !strings.Contains(strings.ToLower(item.Style), strings.ToLower(style)) {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeStore) GetItemsByCategory(ctx context.Context, category string) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Item
	for _, item := range f.items {
		if item.Category == category {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateItem(ctx context.Context, item *models.Item) error {
	f.seedItem(item)
	return nil
}

func (f *fakeStore) UpdateItem(ctx context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[item.ID]; !ok {
		return fmt.Errorf("item %d: %w", item.ID, store.ErrNotFound)
	}
	total := 0
	for i := range item.Sizes {
		if item.Sizes[i].ID == 0 {
			item.Sizes[i].ID = f.id()
			item.Sizes[i].ItemID = item.ID
		}
		total += item.Sizes[i].Quantity
	}
	for i := range item.Designs {
		if item.Designs[i].ID == 0 {
			item.Designs[i].ID = f.id()
			item.Designs[i].ItemID = item.ID
		}
		total += item.Designs[i].Quantity
	}
	item.TotalQuantity = total
	f.items[item.ID] = item
	return nil
}

func (f *fakeStore) DeleteItem(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return fmt.Errorf("item %d: %w", id, store.ErrNotFound)
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) CreatePurchase(ctx context.Context, p *models.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreatePurchase {
		return fmt.Errorf("purchase insert failed")
	}
	p.ID = f.id()
	f.purchases = append(f.purchases, *p)
	return nil
}

func (f *fakeStore) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Purchase, len(f.purchases))
	for i, p := range f.purchases {
		out[len(f.purchases)-1-i] = p
	}
	return out, nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreateOrder {
		return fmt.Errorf("order insert failed")
	}
	order.ID = f.id()
	for i := range order.Lines {
		order.Lines[i].ID = f.id()
		order.Lines[i].OrderID = order.ID
	}
	stored := *order
	stored.Lines = append([]models.OrderLine(nil), order.Lines...)
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	return order, nil
}

func (f *fakeStore) ListOrders(ctx context.Context, page, limit int) ([]models.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (f *fakeStore) SearchOrders(ctx context.Context, query string, page, limit int) ([]models.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Order
	for _, o := range f.orders {
		if strings.Contains(strings.ToLower(o.CustomerName), strings.ToLower(query)) {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
	}
	order.Status = status
	return nil
}

func (f *fakeStore) DeleteOrder(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.orders[id]; !ok {
		return fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	delete(f.orders, id)
	return nil
}

// sizeQty reads a size variant quantity directly.
func (f *fakeStore) sizeQty(itemID, variantID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.items[itemID].Sizes {
		if v.ID == variantID {
			return v.Quantity
		}
	}
	return -1
}

func (f *fakeStore) designQty(itemID, variantID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.items[itemID].Designs {
		if v.ID == variantID {
			return v.Quantity
		}
	}
	return -1
}

func (f *fakeStore) totalQty(itemID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[itemID].TotalQuantity
}

// fakePublisher records published events.
type fakePublisher struct {
	mu      sync.Mutex
	created []*models.OrderCreatedEvent
	deleted []*models.OrderDeletedEvent
	err     error
}

func (p *fakePublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, event)
	return nil
}

func (p *fakePublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.deleted = append(p.deleted, event)
	return nil
}
