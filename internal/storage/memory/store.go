package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Store — хранилище в памяти для локального запуска и тестов. Семантика
// повторяет Postgres-хранилище: уникальные индексы по отпечатку адреса,
// email и номеру заказа, optimistic locking по версии заказа, транзакционный
// outbox.
type Store struct {
	mu sync.Mutex

	addressesByID    map[string]domain.Address
	addressesByHash  map[uuid.UUID]string
	customersByID    map[string]domain.Customer
	customersByEmail map[string]string
	variantsBySKU    map[string]domain.Variant
	ordersByID       map[string]domain.Order
	ordersByNumber   map[string]string
	outbox           []outboxRecord
}

type outboxRecord struct {
	msg       domain.OutboxMessage
	status    domain.OutboxStatus
	createdAt time.Time
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		addressesByID:    make(map[string]domain.Address),
		addressesByHash:  make(map[uuid.UUID]string),
		customersByID:    make(map[string]domain.Customer),
		customersByEmail: make(map[string]string),
		variantsBySKU:    make(map[string]domain.Variant),
		ordersByID:       make(map[string]domain.Order),
		ordersByNumber:   make(map[string]string),
	}
}

// SeedVariant кладёт вариант в каталог напрямую, минуя единицу работы.
// Используется при старте в memory-режиме и в тестах.
func (s *Store) SeedVariant(variant domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	variant.SKU = domain.NormalizeSKU(variant.SKU)
	s.variantsBySKU[variant.SKU] = variant
}

// Within выполняет fn в одной транзакционной области: запись ставится
// в overlay и применяется к базовым картам только при успешном завершении fn.
// Блокировка держится на всю область, поэтому конкурирующие единицы работы
// сериализуются так же, как конкурирующие транзакции в Postgres.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin unit of work: %w", domain.ErrCancelled)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{store: s}
	repos := domain.Repositories{
		Addresses: (*txAddresses)(t),
		Customers: (*txCustomers)(t),
		Variants:  (*txVariants)(t),
		Orders:    (*txOrders)(t),
		Outbox:    (*txOutbox)(t),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	t.apply()
	return nil
}

// tx накапливает незафиксированные записи поверх базового состояния.
type tx struct {
	store           *Store
	addressInserts  []domain.Address
	customerInserts []domain.Customer
	orderWrites     []domain.Order
	outboxInserts   []outboxRecord
}

func (t *tx) apply() {
	s := t.store
	for _, address := range t.addressInserts {
		s.addressesByID[address.ID] = address
		s.addressesByHash[address.Hash] = address.ID
	}
	for _, customer := range t.customerInserts {
		s.customersByID[customer.ID] = customer
		s.customersByEmail[customer.Email] = customer.ID
	}
	for _, order := range t.orderWrites {
		s.ordersByID[order.ID] = order
		s.ordersByNumber[order.Number] = order.ID
	}
	s.outbox = append(s.outbox, t.outboxInserts...)
}

type txAddresses tx

func (r *txAddresses) FindByHashes(_ context.Context, hashes []uuid.UUID) ([]domain.Address, error) {
	t := (*tx)(r)
	var result []domain.Address
	for _, hash := range hashes {
		if address, ok := t.findAddressByHash(hash); ok {
			result = append(result, address)
		}
	}
	return result, nil
}

func (r *txAddresses) FindByIDs(_ context.Context, ids []string) ([]domain.Address, error) {
	t := (*tx)(r)
	var result []domain.Address
	for _, id := range ids {
		if address, ok := t.store.addressesByID[id]; ok {
			result = append(result, address)
			continue
		}
		for _, staged := range t.addressInserts {
			if staged.ID == id {
				result = append(result, staged)
				break
			}
		}
	}
	return result, nil
}

func (r *txAddresses) Insert(_ context.Context, address domain.Address) error {
	t := (*tx)(r)
	if _, exists := t.findAddressByHash(address.Hash); exists {
		return fmt.Errorf("address fingerprint already stored: %w", domain.ErrConflict)
	}
	t.addressInserts = append(t.addressInserts, address)
	return nil
}

func (t *tx) findAddressByHash(hash uuid.UUID) (domain.Address, bool) {
	if id, ok := t.store.addressesByHash[hash]; ok {
		return t.store.addressesByID[id], true
	}
	for _, staged := range t.addressInserts {
		if staged.Hash == hash {
			return staged, true
		}
	}
	return domain.Address{}, false
}

type txCustomers tx

func (r *txCustomers) FindByEmail(_ context.Context, email string) (domain.Customer, error) {
	if customer, ok := (*tx)(r).findCustomerByEmail(email); ok {
		return customer, nil
	}
	return domain.Customer{}, domain.ErrCustomerNotFound
}

func (r *txCustomers) GetByID(_ context.Context, id string) (domain.Customer, error) {
	t := (*tx)(r)
	if customer, ok := t.store.customersByID[id]; ok {
		return customer, nil
	}
	for _, staged := range t.customerInserts {
		if staged.ID == id {
			return staged, nil
		}
	}
	return domain.Customer{}, domain.ErrCustomerNotFound
}

func (r *txCustomers) Insert(_ context.Context, customer domain.Customer) error {
	t := (*tx)(r)
	if _, exists := t.findCustomerByEmail(customer.Email); exists {
		return fmt.Errorf("customer email already stored: %w", domain.ErrConflict)
	}
	t.customerInserts = append(t.customerInserts, customer)
	return nil
}

func (t *tx) findCustomerByEmail(email string) (domain.Customer, bool) {
	if id, ok := t.store.customersByEmail[email]; ok {
		return t.store.customersByID[id], true
	}
	for _, staged := range t.customerInserts {
		if staged.Email == email {
			return staged, true
		}
	}
	return domain.Customer{}, false
}

type txVariants tx

func (r *txVariants) FindBySKUs(_ context.Context, skus []string) ([]domain.Variant, error) {
	t := (*tx)(r)
	var result []domain.Variant
	for _, sku := range skus {
		if variant, ok := t.store.variantsBySKU[domain.NormalizeSKU(sku)]; ok {
			result = append(result, variant)
		}
	}
	return result, nil
}

type txOrders tx

func (r *txOrders) Create(_ context.Context, order domain.Order) error {
	t := (*tx)(r)
	if _, exists := t.store.ordersByNumber[order.Number]; exists {
		return fmt.Errorf("order number already stored: %w", domain.ErrConflict)
	}
	t.orderWrites = append(t.orderWrites, cloneOrder(order))
	return nil
}

func (r *txOrders) GetByNumber(_ context.Context, number string) (domain.Order, error) {
	t := (*tx)(r)
	if id, ok := t.store.ordersByNumber[number]; ok {
		return cloneOrder(t.store.ordersByID[id]), nil
	}
	for _, staged := range t.orderWrites {
		if staged.Number == number {
			return cloneOrder(staged), nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

func (r *txOrders) Update(_ context.Context, order domain.Order) error {
	t := (*tx)(r)
	stored, ok := t.store.ordersByID[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return fmt.Errorf("order %s version %d is stale: %w", order.Number, order.Version, domain.ErrVersionConflict)
	}
	order.Version++
	t.orderWrites = append(t.orderWrites, cloneOrder(order))
	return nil
}

func cloneOrder(order domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}

type txOutbox tx

func (r *txOutbox) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	t := (*tx)(r)
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	t.outboxInserts = append(t.outboxInserts, outboxRecord{
		msg:       msg,
		status:    domain.OutboxStatusPending,
		createdAt: msg.CreatedAt,
	})
	return msg, nil
}

func (r *txOutbox) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	return (*tx)(r).store.pullPendingLocked(limit), nil
}

func (r *txOutbox) Stats(_ context.Context) (domain.OutboxStats, error) {
	return (*tx)(r).store.statsLocked(), nil
}

func (r *txOutbox) MarkDispatched(_ context.Context, id string) error {
	return (*tx)(r).store.markLocked(id, domain.OutboxStatusDispatched)
}

func (r *txOutbox) MarkFailed(_ context.Context, id string) error {
	return (*tx)(r).store.markLocked(id, domain.OutboxStatusFailed)
}

// Outbox возвращает автономное представление outbox для фонового worker'а.
func (s *Store) Outbox() domain.OutboxRepository {
	return &standaloneOutbox{store: s}
}

type standaloneOutbox struct {
	store *Store
}

func (o *standaloneOutbox) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	o.store.outbox = append(o.store.outbox, outboxRecord{
		msg:       msg,
		status:    domain.OutboxStatusPending,
		createdAt: msg.CreatedAt,
	})
	return msg, nil
}

func (o *standaloneOutbox) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	return o.store.pullPendingLocked(limit), nil
}

func (o *standaloneOutbox) Stats(_ context.Context) (domain.OutboxStats, error) {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	return o.store.statsLocked(), nil
}

func (o *standaloneOutbox) MarkDispatched(_ context.Context, id string) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	return o.store.markLocked(id, domain.OutboxStatusDispatched)
}

func (o *standaloneOutbox) MarkFailed(_ context.Context, id string) error {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	return o.store.markLocked(id, domain.OutboxStatusFailed)
}

func (s *Store) pullPendingLocked(limit int) []domain.OutboxMessage {
	var result []domain.OutboxMessage
	for _, record := range s.outbox {
		if record.status != domain.OutboxStatusPending {
			continue
		}
		result = append(result, record.msg)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}

func (s *Store) statsLocked() domain.OutboxStats {
	var stats domain.OutboxStats
	for _, record := range s.outbox {
		if record.status != domain.OutboxStatusPending {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || record.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = record.createdAt
		}
	}
	return stats
}

func (s *Store) markLocked(id string, status domain.OutboxStatus) error {
	for i := range s.outbox {
		if s.outbox[i].msg.ID == id {
			s.outbox[i].status = status
			return nil
		}
	}
	return fmt.Errorf("outbox message %s not found", id)
}

// Variants возвращает автономное представление каталога для inbox-обработчика.
func (s *Store) Variants() domain.VariantStore {
	return &standaloneVariants{store: s}
}

type standaloneVariants struct {
	store *Store
}

func (v *standaloneVariants) FindBySKUs(_ context.Context, skus []string) ([]domain.Variant, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	var result []domain.Variant
	for _, sku := range skus {
		if variant, ok := v.store.variantsBySKU[domain.NormalizeSKU(sku)]; ok {
			result = append(result, variant)
		}
	}
	return result, nil
}

func (v *standaloneVariants) Insert(_ context.Context, variant domain.Variant) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	variant.SKU = domain.NormalizeSKU(variant.SKU)
	if _, exists := v.store.variantsBySKU[variant.SKU]; exists {
		return fmt.Errorf("variant sku already stored: %w", domain.ErrConflict)
	}
	v.store.variantsBySKU[variant.SKU] = variant
	return nil
}

func (v *standaloneVariants) UpdatePrice(_ context.Context, sku string, price decimal.Decimal) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	canonical := domain.NormalizeSKU(sku)
	variant, ok := v.store.variantsBySKU[canonical]
	if !ok {
		return fmt.Errorf("variant %s: %w", canonical, domain.ErrVariantNotFound)
	}
	variant.UnitPrice = price
	v.store.variantsBySKU[canonical] = variant
	return nil
}

func (v *standaloneVariants) UpdateStock(_ context.Context, sku string, qty int64) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	canonical := domain.NormalizeSKU(sku)
	variant, ok := v.store.variantsBySKU[canonical]
	if !ok {
		return fmt.Errorf("variant %s: %w", canonical, domain.ErrVariantNotFound)
	}
	variant.StockQty = qty
	v.store.variantsBySKU[canonical] = variant
	return nil
}
