package service

import (
	"context"
	"fmt"

	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// ItemStore is the persistence contract for item management.
type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItems(ctx context.Context) ([]models.Item, error)
	GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error)
	SearchItems(ctx context.Context, name, style string) ([]models.Item, error)
	GetItemsByCategory(ctx context.Context, category string) ([]models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

// ItemService manages the item catalog. It never touches existing
// variant quantities; those move only through the stock service.
type ItemService struct {
	store  ItemStore
	logger *zap.Logger
}

// NewItemService creates a new item service
func NewItemService(store ItemStore) *ItemService {
	return &ItemService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// VariantInput is one size or design variant supplied on create/update.
type VariantInput struct {
	ID       int64  `json:"id"`
	Label    string `json:"label" binding:"required"`
	Quantity int    `json:"quantity"`
}

// ItemRequest carries item attributes for create and update.
type ItemRequest struct {
	Name     string         `json:"name" binding:"required"`
	Style    string         `json:"style"`
	Shed     string         `json:"shed"`
	Unit     string         `json:"unit"`
	Category string         `json:"category" binding:"required"`
	Price    int64          `json:"price"`
	Notes    string         `json:"notes"`
	Sizes    []VariantInput `json:"sizes"`
	Designs  []VariantInput `json:"designs"`
}

func (s *ItemService) validate(req *ItemRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	if !models.ValidCategory(req.Category) {
		return fmt.Errorf("invalid category %q: %w", req.Category, ErrInvalidInput)
	}
	if req.Price < 0 {
		return fmt.Errorf("price cannot be negative: %w", ErrInvalidInput)
	}
	for _, v := range append(append([]VariantInput{}, req.Sizes...), req.Designs...) {
		if v.Label == "" {
			return fmt.Errorf("variant labels cannot be empty: %w", ErrInvalidInput)
		}
		if v.Quantity < 0 {
			return fmt.Errorf("variant quantities cannot be negative: %w", ErrInvalidInput)
		}
	}
	return nil
}

// Create adds an item with its initial variants; the aggregate is the
// sum of the variant quantities.
func (s *ItemService) Create(ctx context.Context, req *ItemRequest) (*models.Item, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	item := &models.Item{
		Name:     req.Name,
		Style:    req.Style,
		Shed:     req.Shed,
		Unit:     req.Unit,
		Category: req.Category,
		Price:    req.Price,
		Notes:    req.Notes,
	}
	for _, v := range req.Sizes {
		item.Sizes = append(item.Sizes, models.SizeVariant{Label: v.Label, Quantity: v.Quantity})
	}
	for _, v := range req.Designs {
		item.Designs = append(item.Designs, models.DesignVariant{Label: v.Label, Quantity: v.Quantity})
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("Item created", zap.Int64("item_id", item.ID), zap.String("name", item.Name))
	return item, nil
}

// Get retrieves one item with variants.
func (s *ItemService) Get(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.store.GetItemByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return item, nil
}

// List retrieves all items.
func (s *ItemService) List(ctx context.Context) ([]models.Item, error) {
	return s.store.GetItems(ctx)
}

// GetMultiple retrieves a batch of items by ID.
func (s *ItemService) GetMultiple(ctx context.Context, ids []int64) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("ids must be a non-empty list: %w", ErrInvalidInput)
	}
	return s.store.GetItemsByIDs(ctx, ids)
}

// Search filters items by name and/or style.
func (s *ItemService) Search(ctx context.Context, name, style string) ([]models.Item, error) {
	return s.store.SearchItems(ctx, name, style)
}

// ByCategory retrieves items of one category.
func (s *ItemService) ByCategory(ctx context.Context, category string) ([]models.Item, error) {
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("invalid category %q: %w", category, ErrInvalidInput)
	}
	return s.store.GetItemsByCategory(ctx, category)
}

// Update edits item attributes and appends new variants (entries with
// a zero ID). Quantities of existing variants are deliberately not
// writable here.
func (s *ItemService) Update(ctx context.Context, id int64, req *ItemRequest) (*models.Item, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	item, err := s.store.GetItemByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	item.Name = req.Name
	item.Style = req.Style
	item.Shed = req.Shed
	item.Unit = req.Unit
	item.Category = req.Category
	item.Price = req.Price
	item.Notes = req.Notes
	for _, v := range req.Sizes {
		if v.ID == 0 {
			item.Sizes = append(item.Sizes, models.SizeVariant{Label: v.Label, Quantity: v.Quantity})
		}
	}
	for _, v := range req.Designs {
		if v.ID == 0 {
			item.Designs = append(item.Designs, models.DesignVariant{Label: v.Label, Quantity: v.Quantity})
		}
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, translateStoreErr(err)
	}

	s.logger.Info("Item updated", zap.Int64("item_id", item.ID))
	return item, nil
}

// Delete removes an item and its variants. Historical purchase and
// order rows keep their snapshots and are not touched.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return translateStoreErr(err)
	}
	s.logger.Info("Item deleted", zap.Int64("item_id", id))
	return nil
}
