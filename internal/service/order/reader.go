package order

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Reader отдаёт заказ по номеру в том же представлении, что и write-path.
type Reader struct {
	uow domain.UnitOfWork
}

// NewReader создаёт read service.
func NewReader(uow domain.UnitOfWork) *Reader {
	return &Reader{uow: uow}
}

// GetOrder загружает заказ со связанными клиентом, адресами и данными каталога.
func (r *Reader) GetOrder(ctx context.Context, number string) (OrderResult, error) {
	var result OrderResult
	err := r.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		order, err := repos.Orders.GetByNumber(ctx, number)
		if err != nil {
			return fmt.Errorf("load order %s: %w", number, err)
		}

		customer, err := repos.Customers.GetByID(ctx, order.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer for order %s: %w", number, err)
		}

		addresses, err := repos.Addresses.FindByIDs(ctx, []string{order.BillingAddressID, order.ShippingAddressID})
		if err != nil {
			return fmt.Errorf("load addresses for order %s: %w", number, err)
		}
		byID := make(map[string]domain.Address, len(addresses))
		for _, address := range addresses {
			byID[address.ID] = address
		}
		billing, ok := byID[order.BillingAddressID]
		if !ok {
			return fmt.Errorf("billing address %s is missing: %w", order.BillingAddressID, domain.ErrInfrastructure)
		}
		shipping, ok := byID[order.ShippingAddressID]
		if !ok {
			return fmt.Errorf("shipping address %s is missing: %w", order.ShippingAddressID, domain.ErrInfrastructure)
		}

		skus := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			skus = append(skus, item.SKU)
		}
		variants, err := repos.Variants.FindBySKUs(ctx, skus)
		if err != nil {
			return fmt.Errorf("load variants for order %s: %w", number, err)
		}
		variantsByID := make(map[string]domain.Variant, len(variants))
		for _, variant := range variants {
			variantsByID[variant.ID] = variant
		}

		result = mapOrder(order, customer, billing, shipping, variantsByID)
		return nil
	})
	if err != nil {
		return OrderResult{}, err
	}
	return result, nil
}
