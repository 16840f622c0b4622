package domain

import "time"

// Customer — клиент, идентифицируемый нормализованным email (регистр не значим).
// Инвариант хранилища: не более одной записи на нормализованный email.
// Создаётся при первом заказе с этим email; данный подсистемой не удаляется.
type Customer struct {
	ID        string
	Email     string // всегда в нормализованной форме
	Name      string
	Phone     string
	CreatedAt time.Time
}
