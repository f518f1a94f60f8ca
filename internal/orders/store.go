package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Store struct{ DB *pgxpool.Pool }

// Create persists the whole aggregate in one transaction: header first
// (RETURNING id), then the shipping address, then the line items. Either the
// full aggregate becomes visible or nothing does.
func (s *Store) Create(ctx context.Context, o Order) (int64, error) {
	if len(o.Items) == 0 {
		return 0, errors.New("order has no line items")
	}
	if o.ShippingAddress == nil {
		return 0, errors.New("order has no shipping address")
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(user_id, name, email, order_amount, transaction_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		o.UserID, o.Name, o.Email, o.OrderAmount, o.TransactionID,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	a := o.ShippingAddress
	if _, err := tx.Exec(ctx, `
		INSERT INTO shipping_addresses(order_id, address, city, country, postal_code)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, a.Address, a.City, a.Country, a.PostalCode); err != nil {
		return 0, fmt.Errorf("insert shipping address: %w", err)
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, name, quantity, price)
			VALUES ($1, $2, $3, $4)`,
			orderID, it.Name, it.Quantity, it.Price); err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return orderID, nil
}

const orderColumns = `id, user_id, name, email, order_amount, transaction_id, is_delivered, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Name, &o.Email, &o.OrderAmount,
		&o.TransactionID, &o.IsDelivered, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// GetAll returns every order with its line items, in insertion order.
func (s *Store) GetAll(ctx context.Context) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	index := map[int64]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	itemRows, err := s.DB.Query(ctx, `
		SELECT id, order_id, name, quantity, price
		FROM order_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it LineItem
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		if i, ok := index[it.OrderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, itemRows.Err()
}

// GetByID returns the order together with its line items and shipping
// address, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (Order, error) {
	o, err := scanOrder(s.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("select order: %w", err)
	}

	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, name, quantity, price
		FROM order_items WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return Order{}, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return Order{}, err
	}

	var a ShippingAddress
	err = s.DB.QueryRow(ctx, `
		SELECT id, order_id, address, city, country, postal_code
		FROM shipping_addresses WHERE order_id=$1`, id,
	).Scan(&a.ID, &a.OrderID, &a.Address, &a.City, &a.Country, &a.PostalCode)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("select shipping address: %w", err)
	}
	if err == nil {
		o.ShippingAddress = &a
	}
	return o, nil
}

// GetByUser returns the header rows for a buyer's orders, items not loaded.
func (s *Store) GetByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders by user: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkDelivered flips the fulfillment flag on an order header.
func (s *Store) MarkDelivered(ctx context.Context, id int64) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET is_delivered = TRUE, updated_at = now()
		WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
