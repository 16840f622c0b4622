package order

import (
	"time"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// CustomerInput — данные клиента из запроса на создание заказа.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// AddressInput — почтовый адрес из запроса, до нормализации.
type AddressInput struct {
	LineOne   string
	LineTwo   string
	LineThree string
	PostCode  string
}

// ItemInput — одна запрошенная позиция: SKU и количество.
type ItemInput struct {
	SKU string
	Qty int32
}

// CreateOrderInput — запрос на создание заказа.
type CreateOrderInput struct {
	Customer        CustomerInput
	Created         time.Time
	BillingAddress  AddressInput
	ShippingAddress AddressInput
	Items           []ItemInput
}

// UpdateOrderInput — запрос на обновление заказа: полная замена позиций
// и адреса доставки.
type UpdateOrderInput struct {
	OrderNumber     string
	ShippingAddress AddressInput
	Items           []ItemInput
}

func addressCandidate(input AddressInput) domain.AddressCandidate {
	return domain.AddressCandidate{
		LineOne:   input.LineOne,
		LineTwo:   input.LineTwo,
		LineThree: input.LineThree,
		PostCode:  input.PostCode,
	}
}
