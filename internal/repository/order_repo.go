package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"projexa/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const orderColumns = `id, user_id, customer_name, customer_email, customer_phone, total_amount, status,
        payment_method, payment_status, payment_reference, shipping_address, notes, created_at, updated_at`

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order  domain.Order
		userID sql.NullInt64
		notes  sql.NullString
	)
	err := row.Scan(
		&order.ID,
		&userID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.PaymentReference,
		&order.ShippingAddress,
		&notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		id := userID.Int64
		order.UserID = &id
	}
	order.Notes = notes.String
	return &order, nil
}

func (r *postgresOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) (created *domain.Order, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			r.log.Warnf("Rolling back order transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
			created = nil
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			r.log.Errorf("Failed to commit transaction: %v", cErr)
			created = nil
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	orderQuery := `
        INSERT INTO orders (user_id, customer_name, customer_email, customer_phone, total_amount, status,
            payment_method, payment_status, payment_reference, shipping_address, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))
        RETURNING id, status, payment_status, created_at, updated_at
    `
	err = tx.QueryRowContext(ctx, orderQuery,
		order.UserID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.TotalAmount,
		order.Status,
		order.PaymentMethod,
		order.PaymentStatus,
		order.PaymentReference,
		order.ShippingAddress,
		order.Notes,
	).Scan(&order.ID, &order.Status, &order.PaymentStatus, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.log.Errorf("Failed to insert order for %s: %v", order.CustomerEmail, err)
		return nil, translatePqError(fmt.Errorf("could not create order entry: %w", err))
	}
	r.log.Infof("Order entry created with ID: %d (reference %s)", order.ID, order.PaymentReference)

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err = addOrderItem(ctx, tx, item); err != nil {
			r.log.Errorf("Failed to insert order item (product_id: %d, quantity: %d) for order %d: %v", item.ProductID, item.Quantity, order.ID, err)
			return nil, translatePqError(fmt.Errorf("could not create order item (product_id: %d): %w", item.ProductID, err))
		}
	}

	if order.Payment != nil {
		p := order.Payment
		p.OrderID = order.ID
		paymentQuery := `
            INSERT INTO payments (order_id, amount, method, reference, status, instructions)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, created_at, updated_at
        `
		err = tx.QueryRowContext(ctx, paymentQuery, p.OrderID, p.Amount, p.Method, p.Reference, p.Status, p.Instructions).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			r.log.Errorf("Failed to insert payment for order %d: %v", order.ID, err)
			return nil, translatePqError(fmt.Errorf("could not create payment entry: %w", err))
		}
	}

	r.log.Infof("Order %d created successfully with %d items.", order.ID, len(order.Items))
	return order, nil
}

func addOrderItem(ctx context.Context, tx *sql.Tx, item *domain.OrderItem) error {
	itemQuery := `
        INSERT INTO order_items (order_id, product_id, quantity, price)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	return tx.QueryRowContext(ctx, itemQuery, item.OrderID, item.ProductID, item.Quantity, item.Price).
		Scan(&item.ID, &item.CreatedAt)
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOrder(ctx, query, id)
}

func (r *postgresOrderRepository) GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_reference = $1`
	return r.getOrder(ctx, query, reference)
}

func (r *postgresOrderRepository) getOrder(ctx context.Context, query string, arg any) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order %v not found", arg)
			return nil, domain.ErrOrderNotFound
		}
		r.log.Errorf("Failed to get order %v: %v", arg, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	payment, err := r.getPayment(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Payment = payment

	r.log.Debugf("Order %d retrieved with %d items.", order.ID, len(order.Items))
	return order, nil
}

func (r *postgresOrderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	itemsQuery := `
        SELECT id, order_id, product_id, quantity, price, created_at
        FROM order_items
        WHERE order_id = $1
        ORDER BY id
    `
	rows, err := r.db.QueryContext(ctx, itemsQuery, orderID)
	if err != nil {
		r.log.Errorf("Failed to query order items for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan order item row for order ID %d: %v", orderID, err)
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during order items iteration for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *postgresOrderRepository) getPayment(ctx context.Context, orderID int64) (*domain.Payment, error) {
	query := `
        SELECT id, order_id, amount, method, reference, status, instructions, created_at, updated_at
        FROM payments
        WHERE order_id = $1
        ORDER BY id DESC
        LIMIT 1
    `
	var p domain.Payment
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Reference, &p.Status, &p.Instructions, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to query payment for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve payment: %w", err)
	}
	return &p, nil
}

func (r *postgresOrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	orderIDs := []int64{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.log.Errorf("Failed to scan order row: %v", err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, *order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during orders iteration: %v", err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemsQuery := `
        SELECT id, order_id, product_id, quantity, price, created_at
        FROM order_items
        WHERE order_id = ANY($1)
        ORDER BY order_id, id
    `
	itemRows, err := r.db.QueryContext(ctx, itemsQuery, pq.Array(orderIDs))
	if err != nil {
		r.log.Errorf("Failed to query items for %d orders: %v", len(orderIDs), err)
		return nil, fmt.Errorf("could not retrieve order items for list: %w", err)
	}
	defer itemRows.Close()

	itemsMap := make(map[int64][]domain.OrderItem)
	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan order item row during multi-order fetch: %v", err)
			return nil, fmt.Errorf("error scanning order item data for list: %w", err)
		}
		itemsMap[item.OrderID] = append(itemsMap[item.OrderID], item)
	}
	if err = itemRows.Err(); err != nil {
		r.log.Errorf("Error during multi-order items iteration: %v", err)
		return nil, fmt.Errorf("error iterating order items for list: %w", err)
	}

	for i := range orders {
		if items, ok := itemsMap[orders[i].ID]; ok {
			orders[i].Items = items
		} else {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	r.log.Infof("Retrieved %d orders", len(orders))
	return orders, nil
}

func (r *postgresOrderRepository) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET status = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING ` + orderColumns
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found for status update", id)
			return nil, domain.ErrOrderNotFound
		}
		r.log.Errorf("Failed to update status for order ID %d: %v", id, err)
		return nil, translatePqError(fmt.Errorf("could not update order status: %w", err))
	}
	r.log.Infof("Order %d status set to '%s'", order.ID, order.Status)
	return order, nil
}

// UpdatePaymentStatus writes the order's payment status and its payment row together.
func (r *postgresOrderRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) (updated *domain.Order, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin transaction for payment status update: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("UpdatePaymentStatus: Failed to rollback transaction: %v (original error: %v)", rbErr, err)
			}
			updated = nil
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit payment status transaction: %w", cErr)
			r.log.Errorf("UpdatePaymentStatus: %v", err)
			updated = nil
		}
	}()

	query := `
        UPDATE orders
        SET payment_status = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING ` + orderColumns
	updated, err = scanOrder(tx.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found for payment status update", id)
			return nil, domain.ErrOrderNotFound
		}
		r.log.Errorf("Failed to update payment status for order ID %d: %v", id, err)
		return nil, translatePqError(fmt.Errorf("could not update payment status: %w", err))
	}

	if _, err = tx.ExecContext(ctx, `UPDATE payments SET status = $1, updated_at = NOW() WHERE order_id = $2`, status, id); err != nil {
		r.log.Errorf("Failed to update payment row for order ID %d: %v", id, err)
		return nil, fmt.Errorf("could not update payment row: %w", err)
	}

	r.log.Infof("Order %d payment status set to '%s'", id, status)
	return updated, nil
}

func (r *postgresOrderRepository) Stats(ctx context.Context) (*domain.OrderStats, error) {
	query := `
        SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
        FROM orders
        GROUP BY status
    `
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to aggregate order stats: %v", err)
		return nil, fmt.Errorf("could not aggregate orders: %w", err)
	}
	defer rows.Close()

	stats := &domain.OrderStats{ByStatus: make(map[domain.OrderStatus]int64, len(domain.OrderStatuses))}
	for _, s := range domain.OrderStatuses {
		stats.ByStatus[s] = 0
	}
	for rows.Next() {
		var (
			status  domain.OrderStatus
			count   int64
			revenue int64
		)
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			return nil, fmt.Errorf("error scanning order stats: %w", err)
		}
		stats.ByStatus[status] = count
		stats.TotalOrders += count
		stats.Revenue += revenue
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order stats: %w", err)
	}
	return stats, nil
}
