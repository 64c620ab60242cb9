package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/models"
)

// CountItems returns the number of items.
func (s *Store) CountItems(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM items")
	return n, err
}

// SumTotalQuantity returns the sum of all item aggregates.
func (s *Store) SumTotalQuantity(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COALESCE(SUM(total_quantity), 0) FROM items")
	return n, err
}

// CategoryQuantities returns per-category aggregate quantities with the
// category's size and design variant rows for drill-down.
func (s *Store) CategoryQuantities(ctx context.Context) ([]models.CategoryStats, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT category, COALESCE(SUM(total_quantity), 0) AS total
		 FROM items GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var stats []models.CategoryStats
	for rows.Next() {
		var cs models.CategoryStats
		if err := rows.Scan(&cs.Category, &cs.TotalQuantity); err != nil {
			return nil, err
		}
		cs.Sizes = []models.SizeVariant{}
		cs.Designs = []models.DesignVariant{}
		stats = append(stats, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range stats {
		err = s.db.SelectContext(ctx, &stats[i].Sizes,
			`SELECT sv.* FROM size_variants sv
			 JOIN items i ON i.id = sv.item_id
			 WHERE i.category = $1 ORDER BY sv.id`, stats[i].Category)
		if err != nil {
			return nil, fmt.Errorf("category size variants: %w", err)
		}
		err = s.db.SelectContext(ctx, &stats[i].Designs,
			`SELECT dv.* FROM design_variants dv
			 JOIN items i ON i.id = dv.item_id
			 WHERE i.category = $1 ORDER BY dv.id`, stats[i].Category)
		if err != nil {
			return nil, fmt.Errorf("category design variants: %w", err)
		}
	}

	return stats, nil
}

// TopSeller returns the item name with the highest cumulative ordered
// quantity. Ties break deterministically: quantity descending, then
// name ascending. Returns nil when there are no orders.
func (s *Store) TopSeller(ctx context.Context) (*models.TopSeller, error) {
	var ts models.TopSeller
	err := s.db.GetContext(ctx, &ts,
		`SELECT name, SUM(quantity) AS total_sold
		 FROM order_lines
		 GROUP BY name
		 ORDER BY total_sold DESC, name ASC
		 LIMIT 1`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// HighestOrderAmount returns the largest single order total, 0 when
// there are no orders.
func (s *Store) HighestOrderAmount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, "SELECT COALESCE(MAX(total_amount), 0) FROM orders")
	return n, err
}

// TotalOrderAmount returns the sum of all order totals.
func (s *Store) TotalOrderAmount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, "SELECT COALESCE(SUM(total_amount), 0) FROM orders")
	return n, err
}
