package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/JeterChan/miao-fruit-web/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderFilter struct {
	Status    *domain.Status
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
	// Sort is "createdAt" for oldest-first; anything else is newest-first.
	Sort string
}

type OrderRepo interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	LastOrderNumberOfDay(ctx context.Context, start, end time.Time) (string, error)
	GetOrderByNumber(ctx context.Context, orderNumber, email string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
	UpdateOrderStatus(ctx context.Context, orderNumber string, status domain.Status) (*domain.Order, error)
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

// CreateOrder persists the order row and all of its line items inside a
// single transaction. A duplicate order number surfaces as
// domain.ErrOrderNumberTaken so the caller can regenerate and retry.
func (r *OrderRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if tx != nil {
			tx.Rollback(ctx)
		}
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO orders
			(order_number, sender_name, sender_phone, sender_address, sender_postal_code, sender_email,
			 receiver_name, receiver_phone, receiver_address, receiver_postal_code,
			 subtotal, shipping_fee, total_amount, notes, status)
		 VALUES
			($1, $2, $3, $4, $5, $6,
			 $7, $8, $9, $10,
			 $11, $12, $13, $14, $15)
		 RETURNING created_at, updated_at`,
		o.OrderNumber,
		o.Sender.Name,
		o.Sender.Phone,
		o.Sender.Address,
		o.Sender.PostalCode,
		o.SenderEmail,
		o.Receiver.Name,
		o.Receiver.Phone,
		o.Receiver.Address,
		o.Receiver.PostalCode,
		o.Subtotal,
		o.ShippingFee,
		o.TotalAmount,
		o.Notes,
		o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrOrderNumberTaken, o.OrderNumber)
		}
		logger.Warn("insert order failed", "order_number", o.OrderNumber, "err", err)
		return err
	}

	// items belong to the same unit of work; use a Batch like any other
	// one-to-many insert
	if len(o.Items) > 0 {
		batch := &pgx.Batch{}
		for _, it := range o.Items {
			batch.Queue(
				`INSERT INTO order_items
					(order_number, product_id, product_name, price, quantity, subtotal)
				 VALUES
					($1, $2, $3, $4, $5, $6)`,
				o.OrderNumber,
				it.ProductID,
				it.ProductName,
				it.Price,
				it.Quantity,
				it.Subtotal,
			)
		}
		br := tx.SendBatch(ctx, batch)
		if err = br.Close(); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	tx = nil
	return nil
}

// LastOrderNumberOfDay returns the order number of the most recent order
// created in [start, end], or "" when the day has no orders yet.
func (r *OrderRepository) LastOrderNumberOfDay(ctx context.Context, start, end time.Time) (string, error) {
	var number string
	err := r.pool.QueryRow(ctx,
		`SELECT order_number
		 FROM orders
		 WHERE created_at >= $1 AND created_at <= $2
		 ORDER BY created_at DESC
		 LIMIT 1`, start, end).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return number, nil
}

// GetOrderByNumber requires both the order number and the sender email to
// match; the caller cannot tell which of the two was wrong.
func (r *OrderRepository) GetOrderByNumber(ctx context.Context, orderNumber, email string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx,
		`SELECT order_number, sender_name, sender_phone, sender_address, sender_postal_code, sender_email,
			receiver_name, receiver_phone, receiver_address, receiver_postal_code,
			subtotal, shipping_fee, total_amount, notes, status, created_at, updated_at
		 FROM orders
		 WHERE order_number = $1 AND sender_email = $2`, orderNumber, email).
		Scan(&o.OrderNumber,
			&o.Sender.Name, &o.Sender.Phone, &o.Sender.Address, &o.Sender.PostalCode, &o.SenderEmail,
			&o.Receiver.Name, &o.Receiver.Phone, &o.Receiver.Address, &o.Receiver.PostalCode,
			&o.Subtotal, &o.ShippingFee, &o.TotalAmount, &o.Notes, &o.Status,
			&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.itemsForOrders(ctx, []string{o.OrderNumber})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.OrderNumber]
	return &o, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error) {
	where := "WHERE 1=1"
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "ORDER BY created_at DESC"
	if filter.Sort == "createdAt" {
		order = "ORDER BY created_at ASC"
	}

	args = append(args, filter.Limit)
	limitArg := len(args)
	args = append(args, (filter.Page-1)*filter.Limit)
	offsetArg := len(args)

	query := fmt.Sprintf(
		`SELECT order_number, sender_name, sender_phone, sender_address, sender_postal_code, sender_email,
			receiver_name, receiver_phone, receiver_address, receiver_postal_code,
			subtotal, shipping_fee, total_amount, notes, status, created_at, updated_at
		 FROM orders %s %s LIMIT $%d OFFSET $%d`, where, order, limitArg, offsetArg)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	var numbers []string
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.OrderNumber,
			&o.Sender.Name, &o.Sender.Phone, &o.Sender.Address, &o.Sender.PostalCode, &o.SenderEmail,
			&o.Receiver.Name, &o.Receiver.Phone, &o.Receiver.Address, &o.Receiver.PostalCode,
			&o.Subtotal, &o.ShippingFee, &o.TotalAmount, &o.Notes, &o.Status,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
		numbers = append(numbers, o.OrderNumber)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := r.itemsForOrders(ctx, numbers)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].OrderNumber]
	}
	return orders, total, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderNumber string, status domain.Status) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx,
		`UPDATE orders
		 SET status = $2, updated_at = now()
		 WHERE order_number = $1
		 RETURNING order_number, status, updated_at`, orderNumber, status).
		Scan(&o.OrderNumber, &o.Status, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) itemsForOrders(ctx context.Context, numbers []string) (map[string][]domain.OrderItem, error) {
	out := make(map[string][]domain.OrderItem, len(numbers))
	if len(numbers) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT order_number, product_id, product_name, price, quantity, subtotal
		 FROM order_items
		 WHERE order_number = ANY($1)
		 ORDER BY id`, numbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.OrderNumber, &it.ProductID, &it.ProductName,
			&it.Price, &it.Quantity, &it.Subtotal); err != nil {
			return nil, err
		}
		out[it.OrderNumber] = append(out[it.OrderNumber], it)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
