package store

import (
	"context"

	"inventory-service/internal/models"
)

// CreatePurchase appends one row to the purchase ledger. Purchases are
// never updated or deleted.
func (s *Store) CreatePurchase(ctx context.Context, p *models.Purchase) error {
	query := `
		INSERT INTO purchases (item_id, size_variant_id, design_variant_id, quantity, unit_price, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.QueryRowxContext(ctx, query,
		p.ItemID, p.SizeVariantID, p.DesignVariantID, p.Quantity, p.UnitPrice, p.Notes,
	).Scan(&p.ID, &p.CreatedAt)
}

// ListPurchases retrieves the purchase ledger, newest first
func (s *Store) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.SelectContext(ctx, &purchases,
		"SELECT * FROM purchases ORDER BY created_at DESC, id DESC")
	return purchases, err
}
