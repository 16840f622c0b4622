package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

type orderRepository struct {
	q querier
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, customer_id, billing_address_id, shipping_address_id,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		order.ID, order.Number, order.CustomerID, order.BillingAddressID,
		order.ShippingAddressID, order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return wrapDBErr("insert order", err)
	}
	return r.insertItems(ctx, order.ID, order.Items)
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (domain.Order, error) {
	var order domain.Order
	err := r.q.QueryRowContext(ctx, `
		SELECT id, order_number, customer_id, billing_address_id, shipping_address_id,
		       version, created_at, updated_at
		FROM orders
		WHERE order_number = $1
	`, number).Scan(
		&order.ID, &order.Number, &order.CustomerID, &order.BillingAddressID,
		&order.ShippingAddressID, &order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, wrapDBErr("select order by number", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

// Update применяет полную замену: строка заказа обновляется с проверкой
// версии, позиции удаляются и вставляются заново.
func (r *orderRepository) Update(ctx context.Context, order domain.Order) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE orders
		SET shipping_address_id = $1,
		    version = version + 1,
		    updated_at = $2
		WHERE id = $3
		  AND version = $4
	`, order.ShippingAddressID, order.UpdatedAt, order.ID, order.Version)
	if err != nil {
		return wrapDBErr("update order", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.orderExists(ctx, order.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("order %s version %d is stale: %w", order.Number, order.Version, domain.ErrVersionConflict)
	}

	if _, err := r.q.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return wrapDBErr("delete order items", err)
	}
	return r.insertItems(ctx, order.ID, order.Items)
}

func (r *orderRepository) insertItems(ctx context.Context, orderID string, items []domain.OrderItem) error {
	for _, item := range items {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, variant_id, sku, qty, unit_price, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, item.ID, orderID, item.VariantID, item.SKU, item.Qty, item.UnitPrice, item.CreatedAt)
		if err != nil {
			return wrapDBErr("insert order item", err)
		}
	}
	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, variant_id, sku, qty, unit_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, wrapDBErr("load order items", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.VariantID, &item.SKU, &item.Qty, &item.UnitPrice, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func (r *orderRepository) orderExists(ctx context.Context, orderID string) (bool, error) {
	var id string
	err := r.q.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, wrapDBErr("check order exists", err)
}

var _ domain.OrderRepository = (*orderRepository)(nil)
