package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant — позиция каталога, идентифицируемая SKU (регистр не значим).
// Для write path заказов это read-only справочные данные; владеет ими
// каталог, обновления приходят через inbox-события.
type Variant struct {
	ID          string
	SKU         string // каноническая (верхний регистр) форма
	Name        string
	ProductID   string
	ProductName string
	ImageURL    string
	UnitPrice   decimal.Decimal
	StockQty    int64
	CreatedAt   time.Time
}
