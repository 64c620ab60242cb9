package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"inventory-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Sentinel errors translated by the service layer.
var (
	ErrNotFound        = errors.New("not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrNegativeStock   = errors.New("adjustment would produce negative stock")
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

func variantTable(kind models.VariantKind) (string, error) {
	switch kind {
	case models.VariantKindSize:
		return "size_variants", nil
	case models.VariantKindDesign:
		return "design_variants", nil
	default:
		return "", fmt.Errorf("unknown variant kind: %q", kind)
	}
}

// AdjustVariantQuantity applies a signed delta to one variant and the
// owning item's aggregate inside a single transaction. The variant
// update is conditional ("only if the result stays >= 0"), so the
// check and the write cannot be split by a concurrent request.
func (s *Store) AdjustVariantQuantity(ctx context.Context, itemID int64, kind models.VariantKind, variantID int64, delta int) (int, error) {
	table, err := variantTable(kind)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var newQuantity int
	query := fmt.Sprintf(
		`UPDATE %s SET quantity = quantity + $1
		 WHERE id = $2 AND item_id = $3 AND quantity + $1 >= 0
		 RETURNING quantity`, table)
	err = tx.GetContext(ctx, &newQuantity, query, delta, variantID, itemID)
	if err == sql.ErrNoRows {
		var exists bool
		check := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND item_id = $2)", table)
		if cerr := tx.GetContext(ctx, &exists, check, variantID, itemID); cerr != nil {
			return 0, fmt.Errorf("check variant %d: %w", variantID, cerr)
		}
		if exists {
			return 0, fmt.Errorf("%s variant %d of item %d: %w", kind, variantID, itemID, ErrNegativeStock)
		}
		return 0, fmt.Errorf("%s variant %d of item %d: %w", kind, variantID, itemID, ErrVariantNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust variant: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE items SET total_quantity = total_quantity + $1 WHERE id = $2",
		delta, itemID)
	if err != nil {
		return 0, fmt.Errorf("adjust item aggregate: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return 0, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit adjustment: %w", err)
	}
	return newQuantity, nil
}
