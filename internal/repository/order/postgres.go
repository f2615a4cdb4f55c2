package order

import (
	"context"
	"errors"
	"fmt"

	"freshcart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `
id::text, order_number, user_id::text, shipping_address,
payment_method, payment_status, COALESCE(payment_intent_id, ''), COALESCE(transaction_id, ''),
subtotal_cents, shipping_cents, tax_cents, total_cents,
status, tracking_number, estimated_delivery, delivered_at, notes, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The sequence guarantees unique, strictly increasing numbers under
	// concurrent creation.
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_numbers')`).Scan(&seq); err != nil {
		return nil, err
	}
	number := fmt.Sprintf("ORD-%06d", seq)

	var orderID string
	err = tx.QueryRow(ctx, `
INSERT INTO orders (order_number, user_id, shipping_address, payment_method,
                    subtotal_cents, shipping_cents, tax_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id::text
`, number, in.UserID, in.Address, in.Method,
		in.Pricing.SubtotalCents, in.Pricing.ShippingCents, in.Pricing.TaxCents, in.Pricing.TotalCents,
	).Scan(&orderID)
	if err != nil {
		return nil, err
	}

	for pos, item := range in.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, name, price_cents, quantity, image, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, orderID, item.ProductID, item.Name, item.PriceCents, item.Quantity, item.Image, pos); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.fetchOrder(ctx, q, id)
}

func (r *postgresRepo) GetByIntentID(ctx context.Context, intentID string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE payment_intent_id = $1`
	return r.fetchOrder(ctx, q, intentID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.fetchOrders(ctx, q, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.fetchOrders(ctx, q)
}

func (r *postgresRepo) SetPaymentIntent(ctx context.Context, orderID, intentID string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET payment_intent_id = $2, updated_at = now()
WHERE id = $1 AND payment_status <> 'paid'
`, orderID, intentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		status, err := r.paymentStatus(ctx, orderID)
		if err != nil {
			return err
		}
		if status == domain.PaymentPaid {
			return domain.ErrAlreadyPaid
		}
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) MarkPaid(ctx context.Context, intentID, transactionID string) (*domain.Order, error) {
	var orderID string
	err := r.pool.QueryRow(ctx, `
UPDATE orders
SET payment_status = 'paid', status = 'confirmed', transaction_id = $2, updated_at = now()
WHERE payment_intent_id = $1 AND payment_status IN ('pending', 'failed')
RETURNING id::text
`, intentID, transactionID).Scan(&orderID)
	if err == nil {
		return r.GetByID(ctx, orderID)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Lost the race or the transition already happened. Whichever writer got
	// there first wins; report the settled state.
	order, err := r.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	switch order.Payment.Status {
	case domain.PaymentPaid:
		return order, nil
	case domain.PaymentRefunded:
		return nil, domain.ErrRefunded
	default:
		return nil, fmt.Errorf("mark paid: intent %s in unexpected payment status %q", intentID, order.Payment.Status)
	}
}

func (r *postgresRepo) MarkFailed(ctx context.Context, intentID string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET payment_status = 'failed', updated_at = now()
WHERE payment_intent_id = $1 AND payment_status = 'pending'
`, intentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByIntentID(ctx, intentID); err != nil {
			return err
		}
		// Already settled (paid, failed, or refunded); a late failure
		// notification never regresses the state.
	}
	return nil
}

func (r *postgresRepo) MarkRefunded(ctx context.Context, orderID string) (*domain.Order, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
UPDATE orders
SET payment_status = 'refunded', status = 'cancelled', updated_at = now()
WHERE id = $1 AND payment_status = 'paid'
RETURNING id::text
`, orderID).Scan(&id)
	if err == nil {
		return r.GetByID(ctx, id)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := r.paymentStatus(ctx, orderID); err != nil {
		return nil, err
	}
	return nil, domain.ErrNotPaid
}

func (r *postgresRepo) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
UPDATE orders
SET status = 'cancelled', updated_at = now()
WHERE id = $1 AND status IN ('pending', 'confirmed')
RETURNING id::text
`, orderID).Scan(&id)
	if err == nil {
		return r.GetByID(ctx, id)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := r.paymentStatus(ctx, orderID); err != nil {
		return nil, err
	}
	return nil, domain.ErrNotCancellable
}

func (r *postgresRepo) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, trackingNumber, notes string) (*domain.Order, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
UPDATE orders
SET status = $2,
    tracking_number = COALESCE(NULLIF($3, ''), tracking_number),
    notes = COALESCE(NULLIF($4, ''), notes),
    delivered_at = CASE WHEN $2 = 'delivered' THEN now() ELSE delivered_at END,
    updated_at = now()
WHERE id = $1
RETURNING id::text
`, orderID, status, trackingNumber, notes).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) paymentStatus(ctx context.Context, orderID string) (domain.PaymentStatus, error) {
	var status domain.PaymentStatus
	err := r.pool.QueryRow(ctx, `SELECT payment_status FROM orders WHERE id = $1`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return status, nil
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	var o domain.Order
	if err := r.pool.QueryRow(ctx, q, args...).Scan(
		&o.ID,
		&o.Number,
		&o.UserID,
		&o.ShippingAddress,
		&o.Payment.Method,
		&o.Payment.Status,
		&o.Payment.IntentID,
		&o.Payment.TransactionID,
		&o.Pricing.SubtotalCents,
		&o.Pricing.ShippingCents,
		&o.Pricing.TaxCents,
		&o.Pricing.TotalCents,
		&o.Status,
		&o.TrackingNumber,
		&o.EstimatedDelivery,
		&o.DeliveredAt,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items, err := r.fetchItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *postgresRepo) fetchOrders(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.Number,
			&o.UserID,
			&o.ShippingAddress,
			&o.Payment.Method,
			&o.Payment.Status,
			&o.Payment.IntentID,
			&o.Payment.TransactionID,
			&o.Pricing.SubtotalCents,
			&o.Pricing.ShippingCents,
			&o.Pricing.TaxCents,
			&o.Pricing.TotalCents,
			&o.Status,
			&o.TrackingNumber,
			&o.EstimatedDelivery,
			&o.DeliveredAt,
			&o.Notes,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.fetchItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, name, price_cents, quantity, image
FROM order_items
WHERE order_id = $1
ORDER BY position ASC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.PriceCents,
			&item.Quantity,
			&item.Image,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
