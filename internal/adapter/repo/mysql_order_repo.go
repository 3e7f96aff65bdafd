package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/giftnest/storefront/internal/entity"
	"github.com/giftnest/storefront/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)

// Create writes the order header, its items and the stock decrements in one
// transaction. The reserve is a guarded decrement: zero rows affected means
// another checkout got there first, the whole transaction rolls back and the
// caller gets an InsufficientStockError naming the line.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (id,user_id,first_name,last_name,email,address,postal_code,city,
                    paid,provider,payment_intent_id,provider_reference,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,0,'','','',?,NOW())`,
		o.ID, o.UserID, o.Shipping.FirstName, o.Shipping.LastName, o.Shipping.Email,
		o.Shipping.Address, o.Shipping.PostalCode, o.Shipping.City, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		res, err := tx.ExecContext(ctx, `
UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			it.Quantity, it.ProductID, it.Quantity)
		if err != nil {
			return fmt.Errorf("reserve %s: %w", it.ProductID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// raced against a concurrent checkout; report the live quantity
			var available int
			_ = tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = ?`, it.ProductID).Scan(&available)
			return &usecase.InsufficientStockError{Violations: []usecase.StockViolation{{
				ProductID: it.ProductID, Name: it.Name, Requested: it.Quantity, Available: available,
			}}}
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO order_items (order_id,product_id,name,price,quantity) VALUES (?,?,?,?,?)`,
			o.ID, it.ProductID, it.Name, it.Price, it.Quantity)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", it.ProductID, err)
		}
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *MySQLOrderRepo) GetByIntentID(ctx context.Context, intentID string) (*domain.Order, error) {
	if intentID == "" {
		return nil, nil
	}
	return r.getOne(ctx, `WHERE payment_intent_id = ?`, intentID)
}

func (r *MySQLOrderRepo) getOne(ctx context.Context, where string, arg any) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,user_id,first_name,last_name,email,address,postal_code,city,
       paid,provider,payment_intent_id,provider_reference,created_at
FROM orders `+where, arg)

	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID,
		&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.Email,
		&o.Shipping.Address, &o.Shipping.PostalCode, &o.Shipping.City,
		&o.Paid, &o.Provider, &o.PaymentIntentID, &o.ProviderReference, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT order_id,product_id,name,price,quantity FROM order_items WHERE order_id = ?`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (r *MySQLOrderRepo) SetPaymentIntent(ctx context.Context, orderID, provider, intentID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET provider = ?, payment_intent_id = ?, updated_at = NOW() WHERE id = ?`,
		provider, intentID, orderID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return usecase.ErrOrderNotFound
	}
	return nil
}

// MarkPaid flips paid exactly once. The WHERE paid = 0 guard is the whole
// concurrency story between the webhook and the client verify call: the
// loser sees zero rows and treats it as a duplicate.
func (r *MySQLOrderRepo) MarkPaid(ctx context.Context, orderID, reference string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET paid = 1, provider_reference = ?, updated_at = NOW()
WHERE id = ? AND paid = 0`,
		reference, orderID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
