package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateItem inserts an item together with its variant rows. The
// aggregate is written as the sum of the variant quantities.
func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	total := 0
	for _, sv := range item.Sizes {
		total += sv.Quantity
	}
	for _, dv := range item.Designs {
		total += dv.Quantity
	}
	item.TotalQuantity = total

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO items (name, style, shed, unit, category, price, notes, total_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, query,
		item.Name, item.Style, item.Shed, item.Unit, item.Category,
		item.Price, item.Notes, item.TotalQuantity,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	for i := range item.Sizes {
		item.Sizes[i].ItemID = item.ID
		err = tx.QueryRowxContext(ctx,
			"INSERT INTO size_variants (item_id, label, quantity) VALUES ($1, $2, $3) RETURNING id",
			item.ID, item.Sizes[i].Label, item.Sizes[i].Quantity,
		).Scan(&item.Sizes[i].ID)
		if err != nil {
			return fmt.Errorf("insert size variant: %w", err)
		}
	}
	for i := range item.Designs {
		item.Designs[i].ItemID = item.ID
		err = tx.QueryRowxContext(ctx,
			"INSERT INTO design_variants (item_id, label, quantity) VALUES ($1, $2, $3) RETURNING id",
			item.ID, item.Designs[i].Label, item.Designs[i].Quantity,
		).Scan(&item.Designs[i].ID)
		if err != nil {
			return fmt.Errorf("insert design variant: %w", err)
		}
	}

	return tx.Commit()
}

// GetItemByID retrieves an item with its variants
func (s *Store) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	err := s.db.GetContext(ctx, &item, "SELECT * FROM items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadVariants(ctx, []*models.Item{&item}); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItems retrieves all items with their variants
func (s *Store) GetItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := s.db.SelectContext(ctx, &items, "SELECT * FROM items ORDER BY id"); err != nil {
		return nil, err
	}
	if err := s.loadVariantsSlice(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemsByIDs retrieves multiple items (with variants) in one batch
func (s *Store) GetItemsByIDs(ctx context.Context, ids []int64) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM items WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.Item
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	if err := s.loadVariantsSlice(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchItems filters items by name and/or style, case-insensitive.
func (s *Store) SearchItems(ctx context.Context, name, style string) ([]models.Item, error) {
	var items []models.Item
	err := s.db.SelectContext(ctx, &items,
		`SELECT * FROM items
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR style ILIKE '%' || $2 || '%')
		 ORDER BY id`, name, style)
	if err != nil {
		return nil, err
	}
	if err := s.loadVariantsSlice(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemsByCategory retrieves items of one category with variants
func (s *Store) GetItemsByCategory(ctx context.Context, category string) ([]models.Item, error) {
	var items []models.Item
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM items WHERE category = $1 ORDER BY id", category)
	if err != nil {
		return nil, err
	}
	if err := s.loadVariantsSlice(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem updates item attributes and appends any new variants
// (zero-ID entries). Existing variant quantities are never written
// here; they move only through AdjustVariantQuantity. The aggregate is
// recomputed from the variant rows in the same transaction.
func (s *Store) UpdateItem(ctx context.Context, item *models.Item) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE items SET name = $1, style = $2, shed = $3, unit = $4,
		        category = $5, price = $6, notes = $7
		 WHERE id = $8`,
		item.Name, item.Style, item.Shed, item.Unit,
		item.Category, item.Price, item.Notes, item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
	}

	for i := range item.Sizes {
		if item.Sizes[i].ID != 0 {
			continue
		}
		item.Sizes[i].ItemID = item.ID
		err = tx.QueryRowxContext(ctx,
			"INSERT INTO size_variants (item_id, label, quantity) VALUES ($1, $2, $3) RETURNING id",
			item.ID, item.Sizes[i].Label, item.Sizes[i].Quantity,
		).Scan(&item.Sizes[i].ID)
		if err != nil {
			return fmt.Errorf("append size variant: %w", err)
		}
	}
	for i := range item.Designs {
		if item.Designs[i].ID != 0 {
			continue
		}
		item.Designs[i].ItemID = item.ID
		err = tx.QueryRowxContext(ctx,
			"INSERT INTO design_variants (item_id, label, quantity) VALUES ($1, $2, $3) RETURNING id",
			item.ID, item.Designs[i].Label, item.Designs[i].Quantity,
		).Scan(&item.Designs[i].ID)
		if err != nil {
			return fmt.Errorf("append design variant: %w", err)
		}
	}

	err = tx.GetContext(ctx, &item.TotalQuantity,
		`UPDATE items SET total_quantity =
		     COALESCE((SELECT SUM(quantity) FROM size_variants WHERE item_id = $1), 0)
		   + COALESCE((SELECT SUM(quantity) FROM design_variants WHERE item_id = $1), 0)
		 WHERE id = $1
		 RETURNING total_quantity`, item.ID)
	if err != nil {
		return fmt.Errorf("recompute aggregate: %w", err)
	}

	return tx.Commit()
}

// DeleteItem removes an item; variant rows cascade.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) loadVariantsSlice(ctx context.Context, items []models.Item) error {
	ptrs := make([]*models.Item, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	return s.loadVariants(ctx, ptrs)
}

func (s *Store) loadVariants(ctx context.Context, items []*models.Item) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, len(items))
	byID := make(map[int64]*models.Item, len(items))
	for i, it := range items {
		ids[i] = it.ID
		byID[it.ID] = it
		it.Sizes = []models.SizeVariant{}
		it.Designs = []models.DesignVariant{}
	}

	query, args, err := sqlx.In("SELECT * FROM size_variants WHERE item_id IN (?) ORDER BY id", ids)
	if err != nil {
		return err
	}
	var sizes []models.SizeVariant
	if err := s.db.SelectContext(ctx, &sizes, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load size variants: %w", err)
	}
	for _, sv := range sizes {
		if it, ok := byID[sv.ItemID]; ok {
			it.Sizes = append(it.Sizes, sv)
		}
	}

	query, args, err = sqlx.In("SELECT * FROM design_variants WHERE item_id IN (?) ORDER BY id", ids)
	if err != nil {
		return err
	}
	var designs []models.DesignVariant
	if err := s.db.SelectContext(ctx, &designs, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load design variants: %w", err)
	}
	for _, dv := range designs {
		if it, ok := byID[dv.ItemID]; ok {
			it.Designs = append(it.Designs, dv)
		}
	}

	return nil
}
