package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/outbox"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.SeedVariant(domain.Variant{
		ID:          "v-tap",
		SKU:         "TAP-01",
		Name:        "Chrome Tap",
		ProductID:   "p-tap",
		ProductName: "Taps",
		UnitPrice:   decimal.RequireFromString("2.50"),
	})
	store.SeedVariant(domain.Variant{
		ID:          "v-sink",
		SKU:         "SINK-02",
		Name:        "Ceramic Sink",
		ProductID:   "p-sink",
		ProductName: "Sinks",
		UnitPrice:   decimal.RequireFromString("5.00"),
	})
	return store
}

func newTestWriter(store *memory.Store) *Writer {
	return NewWriter(store, nil, nil, nil)
}

func pendingCount(t *testing.T, store *memory.Store) int {
	t.Helper()
	pending, err := store.Outbox().PullPending(context.Background(), 100)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	return len(pending)
}

func TestWriter_CreateOrder(t *testing.T) {
	store := seededStore()
	writer := newTestWriter(store)

	input := validCreateInput()
	input.Items = []ItemInput{
		{SKU: "tap-01", Qty: 2},
		{SKU: "SINK-02", Qty: 1},
	}

	result, err := writer.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if len(result.OrderNumber) != 16 || result.OrderNumber[:4] != "ORD-" {
		t.Fatalf("unexpected order number %q", result.OrderNumber)
	}
	if !result.TotalCost.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected total 10.00, got %s", result.TotalCost)
	}
	if len(result.OrderItems) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.OrderItems))
	}
	if result.OrderItems[0].SKU != "TAP-01" || result.OrderItems[0].ProductName != "Taps" {
		t.Fatalf("expected catalog data on item, got %+v", result.OrderItems[0])
	}
	if got := pendingCount(t, store); got != 1 {
		t.Fatalf("expected 1 pending outbox message, got %d", got)
	}
}

// Эквивалентные платёжный и доставочный адреса разделяют одну запись.
func TestWriter_CreateOrder_SharedAddressRow(t *testing.T) {
	store := seededStore()
	writer := newTestWriter(store)

	input := validCreateInput()
	input.ShippingAddress = AddressInput{
		LineOne:  "10  downing  street",
		PostCode: "sw1a 2aa",
	}

	result, err := writer.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	err = store.Within(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		order, err := repos.Orders.GetByNumber(ctx, result.OrderNumber)
		if err != nil {
			return err
		}
		if order.BillingAddressID != order.ShippingAddressID {
			t.Fatalf("equivalent addresses must share one row, got %s and %s",
				order.BillingAddressID, order.ShippingAddressID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
}

// Повторное создание с теми же клиентом и адресами не плодит дубликатов.
func TestWriter_CreateOrder_Idempotence(t *testing.T) {
	store := seededStore()
	writer := newTestWriter(store)

	first, err := writer.CreateOrder(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := writer.CreateOrder(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.OrderNumber == second.OrderNumber {
		t.Fatalf("orders must get distinct numbers")
	}

	err = store.Within(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		a, err := repos.Orders.GetByNumber(ctx, first.OrderNumber)
		if err != nil {
			return err
		}
		b, err := repos.Orders.GetByNumber(ctx, second.OrderNumber)
		if err != nil {
			return err
		}
		if a.CustomerID != b.CustomerID {
			t.Fatalf("same email must resolve to one customer")
		}
		if a.BillingAddressID != b.BillingAddressID {
			t.Fatalf("same billing address must resolve to one row")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
}

// First-write-wins: повторный заказ для существующего клиента может опускать
// name и created — проверяются хранимые значения, а не запрос.
func TestWriter_CreateOrder_ExistingCustomerOmitsNameAndCreated(t *testing.T) {
	store := seededStore()
	writer := newTestWriter(store)

	if _, err := writer.CreateOrder(context.Background(), validCreateInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	repeat := validCreateInput()
	repeat.Customer.Name = ""
	repeat.Created = time.Time{}
	result, err := writer.CreateOrder(context.Background(), repeat)
	if err != nil {
		t.Fatalf("create for existing customer must validate stored fields, got %v", err)
	}
	if result.CustomerName != "Jane Doe" {
		t.Fatalf("expected stored customer name, got %q", result.CustomerName)
	}
}

// Новый клиент с created в будущем отклоняется, и резолюция откатывается
// вместе с остальной единицей работы.
func TestWriter_CreateOrder_FutureCreatedRollsBackResolution(t *testing.T) {
	store := seededStore()
	writer := newTestWriter(store)

	input := validCreateInput()
	input.Created = time.Now().UTC().Add(time.Hour)

	_, err := writer.CreateOrder(context.Background(), input)
	verr, ok := domain.AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, present := verr.Map()["created"]; !present {
		t.Fatalf("expected created violation, got %v", verr.Map())
	}

	err = store.Within(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Customers.FindByEmail(ctx, "jane@example.com"); !errors.Is(err, domain.ErrCustomerNotFound) {
			t.Fatalf("resolved customer must not survive rollback, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := pendingCount(t, store); got != 0 {
		t.Fatalf("expected no outbox messages after rollback, got %d", got)
	}
}

// Неизвестный SKU откатывает запись целиком: ни заказа, ни клиента, ни события.
func TestWriter_CreateOrder_UnknownSKURollsBack(t *testing.T) {
	store := seededStore()
	writer := newTestWriter(store)

	input := validCreateInput()
	input.Items = []ItemInput{
		{SKU: "TAP-01", Qty: 1},
		{SKU: "GHOST-99", Qty: 1},
	}

	_, err := writer.CreateOrder(context.Background(), input)
	verr, ok := domain.AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, present := verr.Map()["missingSkus"]; !present {
		t.Fatalf("expected missingSkus violation, got %v", verr.Map())
	}

	err = store.Within(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Customers.FindByEmail(ctx, "jane@example.com"); !errors.Is(err, domain.ErrCustomerNotFound) {
			t.Fatalf("customer must not survive rollback, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := pendingCount(t, store); got != 0 {
		t.Fatalf("expected no outbox messages after rollback, got %d", got)
	}
}

func TestWriter_UpdateOrder_ReplacesItemsAndShipping(t *testing.T) {
	store := seededStore()
	writer := newTestWriter(store)

	created, err := writer.CreateOrder(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := writer.UpdateOrder(context.Background(), UpdateOrderInput{
		OrderNumber: created.OrderNumber,
		ShippingAddress: AddressInput{
			LineOne:  "1 New Street",
			PostCode: "NW1 6XE",
		},
		Items: []ItemInput{{SKU: "SINK-02", Qty: 3}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(updated.OrderItems) != 1 || updated.OrderItems[0].SKU != "SINK-02" {
		t.Fatalf("items must be fully replaced, got %+v", updated.OrderItems)
	}
	if !updated.TotalCost.Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected total 15.00, got %s", updated.TotalCost)
	}
	if updated.ShippingAddress.LineOne != "1 New Street" {
		t.Fatalf("shipping address must be replaced, got %+v", updated.ShippingAddress)
	}
	if updated.BillingAddress != created.BillingAddress {
		t.Fatalf("billing address must stay unchanged")
	}
	if got := pendingCount(t, store); got != 2 {
		t.Fatalf("expected created+updated outbox messages, got %d", got)
	}
}

func TestWriter_UpdateOrder_NotFoundLeavesNoWrites(t *testing.T) {
	store := seededStore()
	writer := newTestWriter(store)

	_, err := writer.UpdateOrder(context.Background(), UpdateOrderInput{
		OrderNumber: "ORD-DOESNOTEXIST",
		ShippingAddress: AddressInput{
			LineOne:  "1 New Street",
			PostCode: "NW1 6XE",
		},
		Items: []ItemInput{{SKU: "TAP-01", Qty: 1}},
	})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
	if got := pendingCount(t, store); got != 0 {
		t.Fatalf("expected no outbox messages, got %d", got)
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, domain.OutboxMessage) error {
	return errors.New("broker down")
}

// Неудача post-commit доставки не проваливает запись: заказ создан,
// сообщение остаётся pending для фонового worker'а.
func TestWriter_CreateOrder_DispatchFailureDoesNotFailWrite(t *testing.T) {
	store := seededStore()
	dispatcher := outbox.NewDispatcher(store.Outbox(), failingPublisher{}, nil)
	writer := NewWriter(store, dispatcher, nil, nil)

	result, err := writer.CreateOrder(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create must succeed despite dispatch failure: %v", err)
	}

	reader := NewReader(store)
	if _, err := reader.GetOrder(context.Background(), result.OrderNumber); err != nil {
		t.Fatalf("order must be readable: %v", err)
	}
	if got := pendingCount(t, store); got != 1 {
		t.Fatalf("message must stay pending, got %d", got)
	}
}

func TestReader_GetOrder(t *testing.T) {
	store := seededStore()
	writer := newTestWriter(store)
	reader := NewReader(store)

	created, err := writer.CreateOrder(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := reader.GetOrder(context.Background(), created.OrderNumber)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.OrderNumber != created.OrderNumber {
		t.Fatalf("expected %s, got %s", created.OrderNumber, got.OrderNumber)
	}
	if got.CustomerName != "Jane Doe" {
		t.Fatalf("expected customer name, got %q", got.CustomerName)
	}
	if !got.TotalCost.Equal(created.TotalCost) {
		t.Fatalf("totals must match: %s vs %s", got.TotalCost, created.TotalCost)
	}

	if _, err := reader.GetOrder(context.Background(), "ORD-MISSING00000"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}
