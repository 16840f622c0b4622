package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressRepository — требования к хранилищу адресов.
type AddressRepository interface {
	// FindByHashes возвращает существующие адреса для набора отпечатков
	// одним запросом (никаких per-candidate lookup'ов).
	FindByHashes(ctx context.Context, hashes []uuid.UUID) ([]Address, error)
	// FindByIDs возвращает адреса по идентификаторам.
	FindByIDs(ctx context.Context, ids []string) ([]Address, error)
	// Insert сохраняет новый адрес. При нарушении уникальности отпечатка
	// возвращает ErrConflict — вызывающая сторона перечитывает победителя.
	Insert(ctx context.Context, address Address) error
}

// CustomerRepository — требования к хранилищу клиентов.
type CustomerRepository interface {
	// FindByEmail ищет по нормализованному email; ErrCustomerNotFound, если нет.
	FindByEmail(ctx context.Context, email string) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	// Insert сохраняет нового клиента; ErrConflict при гонке по email.
	Insert(ctx context.Context, customer Customer) error
}

// VariantCatalog — read-only доступ к каталогу SKU→Variant.
type VariantCatalog interface {
	// FindBySKUs выполняет один батч-запрос по набору SKU.
	// Отсутствующие SKU просто не попадают в результат.
	FindBySKUs(ctx context.Context, skus []string) ([]Variant, error)
}

// VariantStore расширяет каталог операциями, которые применяет inbox-обработчик
// входящих событий (обновления цены и остатков).
type VariantStore interface {
	VariantCatalog
	Insert(ctx context.Context, variant Variant) error
	UpdatePrice(ctx context.Context, sku string, price decimal.Decimal) error
	UpdateStock(ctx context.Context, sku string, qty int64) error
}

// OrderRepository — требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями.
	Create(ctx context.Context, order Order) error
	// GetByNumber возвращает заказ или ErrOrderNotFound.
	GetByNumber(ctx context.Context, number string) (Order, error)
	// Update применяет полную замену позиций и адреса доставки
	// с учётом optimistic locking (ErrVersionConflict).
	Update(ctx context.Context, order Order) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkDispatched(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// Repositories — набор репозиториев, привязанных к одной единице работы.
type Repositories struct {
	Addresses AddressRepository
	Customers CustomerRepository
	Variants  VariantCatalog
	Orders    OrderRepository
	Outbox    OutboxRepository
}

// UnitOfWork выполняет fn в одной транзакционной области: резолюция сущностей,
// валидационные чтения, запись агрегата и outbox-вставка фиксируются вместе
// или не фиксируются вовсе. Ошибка fn откатывает всё и возвращается наружу —
// никаких тихих повторов внутри области.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// OutboxPublisher доставляет сообщение во внешний канал. Вызов должен быть
// безопасен при повторе одного и того же сообщения (at-least-once).
type OutboxPublisher interface {
	Publish(ctx context.Context, msg OutboxMessage) error
}
