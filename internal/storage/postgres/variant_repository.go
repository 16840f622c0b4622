package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

type variantRepository struct {
	q querier
}

func (r *variantRepository) FindBySKUs(ctx context.Context, skus []string) ([]domain.Variant, error) {
	if len(skus) == 0 {
		return nil, nil
	}

	args := make([]any, len(skus))
	for i, sku := range skus {
		args[i] = domain.NormalizeSKU(sku)
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, sku, name, product_id, product_name, image_url, unit_price, stock_qty, created_at
		FROM variants
		WHERE sku IN (`+placeholders(1, len(skus))+`)
	`, args...)
	if err != nil {
		return nil, wrapDBErr("select variants by sku", err)
	}
	defer rows.Close()

	variants := make([]domain.Variant, 0)
	for rows.Next() {
		var variant domain.Variant
		if err := rows.Scan(
			&variant.ID, &variant.SKU, &variant.Name, &variant.ProductID,
			&variant.ProductName, &variant.ImageURL, &variant.UnitPrice,
			&variant.StockQty, &variant.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan variant row: %w", err)
		}
		variants = append(variants, variant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant rows: %w", err)
	}
	return variants, nil
}

func (r *variantRepository) Insert(ctx context.Context, variant domain.Variant) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO variants (id, sku, name, product_id, product_name, image_url, unit_price, stock_qty, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		variant.ID, domain.NormalizeSKU(variant.SKU), variant.Name, variant.ProductID,
		variant.ProductName, variant.ImageURL, variant.UnitPrice, variant.StockQty, variant.CreatedAt,
	)
	return wrapDBErr("insert variant", err)
}

func (r *variantRepository) UpdatePrice(ctx context.Context, sku string, price decimal.Decimal) error {
	return r.updateVariant(ctx, "update variant price", `
		UPDATE variants SET unit_price = $1 WHERE sku = $2
	`, price, domain.NormalizeSKU(sku))
}

func (r *variantRepository) UpdateStock(ctx context.Context, sku string, qty int64) error {
	return r.updateVariant(ctx, "update variant stock", `
		UPDATE variants SET stock_qty = $1 WHERE sku = $2
	`, qty, domain.NormalizeSKU(sku))
}

func (r *variantRepository) updateVariant(ctx context.Context, op, query string, value any, sku string) error {
	res, err := r.q.ExecContext(ctx, query, value, sku)
	if err != nil {
		return wrapDBErr(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", op, sku, domain.ErrVariantNotFound)
	}
	return nil
}

var _ domain.VariantStore = (*variantRepository)(nil)
