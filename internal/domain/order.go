package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem — одна позиция заказа: ссылка на вариант и количество.
// Цена за единицу фиксируется на момент записи и хранится с полной
// десятичной точностью.
type OrderItem struct {
	ID        string
	VariantID string
	SKU       string
	Qty       int32
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// LineTotal — сумма строки: цена за единицу × количество, без округления.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Qty))
}

// Order агрегирует позиции, платёжный и доставочный адреса и клиента.
// Жизненный цикл: создаётся один раз, затем обновляется полной заменой
// коллекции позиций и адреса доставки (replace, не merge).
type Order struct {
	ID                string
	Number            string
	CustomerID        string
	BillingAddressID  string
	ShippingAddressID string
	Items             []OrderItem
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Total — сумма заказа как сумма строк, без промежуточного округления.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ReplaceItems полностью заменяет коллекцию позиций.
func (o *Order) ReplaceItems(items []OrderItem, now time.Time) {
	o.Items = items
	o.UpdatedAt = now
}

// ReplaceShippingAddress переключает заказ на новую (уже сохранённую) запись
// адреса. Прежняя запись не мутируется — на неё могут ссылаться другие заказы.
func (o *Order) ReplaceShippingAddress(addressID string, now time.Time) {
	o.ShippingAddressID = addressID
	o.UpdatedAt = now
}

// NewOrderNumber генерирует номер заказа при создании. Уникальность
// подкреплена уникальным индексом в хранилище.
func NewOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:12])
}
