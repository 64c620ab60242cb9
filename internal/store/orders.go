package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateOrder inserts an order together with its lines in one
// transaction.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (customer_name, mobile, email, address, status, total_amount, internal_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, query,
		order.CustomerName, order.Mobile, order.Email, order.Address,
		order.Status, order.TotalAmount, order.InternalNotes,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		line := &order.Lines[i]
		err = tx.QueryRowxContext(ctx,
			`INSERT INTO order_lines (order_id, item_id, name, unit_price, quantity, size_label, design_label, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			line.OrderID, line.ItemID, line.Name, line.UnitPrice,
			line.Quantity, line.SizeLabel, line.DesignLabel, line.LineTotal,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order with its lines
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadOrderLines(ctx, []*models.Order{&order}); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders retrieves one page of orders (newest first) and the total
// order count.
func (s *Store) ListOrders(ctx context.Context, page, limit int) ([]models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM orders"); err != nil {
		return nil, 0, err
	}

	if err := s.loadOrderLinesSlice(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SearchOrders filters orders by customer name, case-insensitive, with
// the same pagination contract as ListOrders.
func (s *Store) SearchOrders(ctx context.Context, query string, page, limit int) ([]models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		`SELECT * FROM orders WHERE customer_name ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM orders WHERE customer_name ILIKE '%' || $1 || '%'", query)
	if err != nil {
		return nil, 0, err
	}

	if err := s.loadOrderLinesSlice(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateOrderStatus updates the order status, the only mutable field
// after creation.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return nil
}

// DeleteOrder removes an order; lines cascade. Stock restoration is the
// caller's responsibility.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) loadOrderLinesSlice(ctx context.Context, orders []models.Order) error {
	ptrs := make([]*models.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	return s.loadOrderLines(ctx, ptrs)
}

func (s *Store) loadOrderLines(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*models.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Lines = []models.OrderLine{}
	}

	query, args, err := sqlx.In("SELECT * FROM order_lines WHERE order_id IN (?) ORDER BY id", ids)
	if err != nil {
		return err
	}
	var lines []models.OrderLine
	if err := s.db.SelectContext(ctx, &lines, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	for _, l := range lines {
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return nil
}
