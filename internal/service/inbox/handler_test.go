package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

func newTestHandler(t *testing.T) (*Handler, domain.VariantStore) {
	t.Helper()
	store := memory.NewStore()
	store.SeedVariant(domain.Variant{
		ID:        "v1",
		SKU:       "TAP-01",
		Name:      "Chrome Tap",
		UnitPrice: decimal.RequireFromString("2.50"),
		StockQty:  10,
	})
	variants := store.Variants()
	return NewHandler(variants, nil), variants
}

func envelope(t *testing.T, kind kafka.InboundKind, payload any) kafka.InboundEnvelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return kafka.InboundEnvelope{Kind: kind, Payload: raw}
}

func TestHandler_PriceUpdated(t *testing.T) {
	handler, variants := newTestHandler(t)

	err := handler.Handle(context.Background(), envelope(t, kafka.InboundKindPriceUpdated, kafka.PriceUpdated{
		SKU:   "tap-01",
		Price: decimal.RequireFromString("3.99"),
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	found, err := variants.FindBySKUs(context.Background(), []string{"TAP-01"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 || !found[0].UnitPrice.Equal(decimal.RequireFromString("3.99")) {
		t.Fatalf("expected updated price, got %+v", found)
	}
}

func TestHandler_StockUpdated(t *testing.T) {
	handler, variants := newTestHandler(t)

	err := handler.Handle(context.Background(), envelope(t, kafka.InboundKindStockUpdated, kafka.StockUpdated{
		SKU: "TAP-01",
		Qty: 3,
	}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	found, err := variants.FindBySKUs(context.Background(), []string{"TAP-01"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 || found[0].StockQty != 3 {
		t.Fatalf("expected updated stock, got %+v", found)
	}
}

func TestHandler_UnknownKindRejected(t *testing.T) {
	handler, _ := newTestHandler(t)

	err := handler.Handle(context.Background(), kafka.InboundEnvelope{Kind: "order.teleported", Payload: []byte(`{}`)})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestHandler_UnknownSKU(t *testing.T) {
	handler, _ := newTestHandler(t)

	err := handler.Handle(context.Background(), envelope(t, kafka.InboundKindStockUpdated, kafka.StockUpdated{
		SKU: "GHOST-99",
		Qty: 1,
	}))
	if !errors.Is(err, domain.ErrVariantNotFound) {
		t.Fatalf("expected variant not found, got %v", err)
	}
}

func TestHandler_NegativeValuesRejected(t *testing.T) {
	handler, _ := newTestHandler(t)

	err := handler.Handle(context.Background(), envelope(t, kafka.InboundKindPriceUpdated, kafka.PriceUpdated{
		SKU:   "TAP-01",
		Price: decimal.RequireFromString("-1"),
	}))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative price, got %v", err)
	}

	err = handler.Handle(context.Background(), envelope(t, kafka.InboundKindStockUpdated, kafka.StockUpdated{
		SKU: "TAP-01",
		Qty: -5,
	}))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for negative qty, got %v", err)
	}
}
