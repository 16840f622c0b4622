package http

import (
	"time"

	"github.com/vladislavdragonenkov/orders/internal/service/order"
)

// AddressDto — адрес в теле запроса.
type AddressDto struct {
	LineOne   string `json:"lineOne"`
	LineTwo   string `json:"lineTwo"`
	LineThree string `json:"lineThree"`
	PostCode  string `json:"postCode"`
}

// OrderItemDto — позиция в теле запроса.
type OrderItemDto struct {
	SKU      string `json:"sku"`
	Quantity int32  `json:"quantity"`
}

// CreateOrderRequestDto — запрос POST /orders.
type CreateOrderRequestDto struct {
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	PhoneNumber     string         `json:"phoneNumber"`
	Created         time.Time      `json:"created"`
	BillingAddress  AddressDto     `json:"billingAddress"`
	ShippingAddress AddressDto     `json:"shippingAddress"`
	OrderItems      []OrderItemDto `json:"orderItems"`
}

// UpdateOrderRequestDto — запрос PUT /orders/:orderNumber.
type UpdateOrderRequestDto struct {
	ShippingAddress AddressDto     `json:"shippingAddress"`
	OrderItems      []OrderItemDto `json:"orderItems"`
}

func (d CreateOrderRequestDto) toInput() order.CreateOrderInput {
	return order.CreateOrderInput{
		Customer: order.CustomerInput{
			Name:  d.Name,
			Email: d.Email,
			Phone: d.PhoneNumber,
		},
		Created:         d.Created,
		BillingAddress:  toAddressInput(d.BillingAddress),
		ShippingAddress: toAddressInput(d.ShippingAddress),
		Items:           toItemInputs(d.OrderItems),
	}
}

func (d UpdateOrderRequestDto) toInput(orderNumber string) order.UpdateOrderInput {
	return order.UpdateOrderInput{
		OrderNumber:     orderNumber,
		ShippingAddress: toAddressInput(d.ShippingAddress),
		Items:           toItemInputs(d.OrderItems),
	}
}

func toAddressInput(d AddressDto) order.AddressInput {
	return order.AddressInput{
		LineOne:   d.LineOne,
		LineTwo:   d.LineTwo,
		LineThree: d.LineThree,
		PostCode:  d.PostCode,
	}
}

func toItemInputs(items []OrderItemDto) []order.ItemInput {
	result := make([]order.ItemInput, len(items))
	for i, item := range items {
		result[i] = order.ItemInput{SKU: item.SKU, Qty: item.Quantity}
	}
	return result
}
