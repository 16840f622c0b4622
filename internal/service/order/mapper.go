package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// AddressResult — адрес в представлении для клиента и событий.
type AddressResult struct {
	LineOne   string `json:"lineOne"`
	LineTwo   string `json:"lineTwo,omitempty"`
	LineThree string `json:"lineThree,omitempty"`
	PostCode  string `json:"postCode"`
}

// OrderItemResult — позиция заказа, обогащённая данными каталога.
type OrderItemResult struct {
	ProductName string          `json:"productName"`
	VariantID   string          `json:"variantId"`
	VariantName string          `json:"variantName"`
	SKU         string          `json:"sku"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// OrderResult — полное представление заказа: отдаётся из API и сериализуется
// в payload outbox-события.
type OrderResult struct {
	OrderNumber     string            `json:"orderNumber"`
	CustomerName    string            `json:"customerName"`
	PhoneNumber     string            `json:"phoneNumber,omitempty"`
	Created         time.Time         `json:"created"`
	BillingAddress  AddressResult     `json:"billingAddress"`
	ShippingAddress AddressResult     `json:"shippingAddress"`
	OrderItems      []OrderItemResult `json:"orderItems"`
	TotalCost       decimal.Decimal   `json:"totalCost"`
}

func mapAddress(address domain.Address) AddressResult {
	return AddressResult{
		LineOne:   address.LineOne,
		LineTwo:   address.LineTwo,
		LineThree: address.LineThree,
		PostCode:  address.PostCode,
	}
}

// mapOrder собирает представление заказа из агрегата и связанных сущностей.
// variantsByID ключуется идентификатором варианта.
func mapOrder(order domain.Order, customer domain.Customer, billing, shipping domain.Address, variantsByID map[string]domain.Variant) OrderResult {
	items := make([]OrderItemResult, len(order.Items))
	for i, item := range order.Items {
		variant := variantsByID[item.VariantID]
		items[i] = OrderItemResult{
			ProductName: variant.ProductName,
			VariantID:   item.VariantID,
			VariantName: variant.Name,
			SKU:         item.SKU,
			ImageURL:    variant.ImageURL,
			Quantity:    item.Qty,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal(),
		}
	}
	return OrderResult{
		OrderNumber:     order.Number,
		CustomerName:    customer.Name,
		PhoneNumber:     customer.Phone,
		Created:         order.CreatedAt,
		BillingAddress:  mapAddress(billing),
		ShippingAddress: mapAddress(shipping),
		OrderItems:      items,
		TotalCost:       order.Total(),
	}
}
