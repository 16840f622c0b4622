package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
)

// Handler применяет входящие события каталога к хранилищу вариантов.
// Набор типов закрыт: неизвестный kind — ошибка, вызывающая сторона решает,
// отправлять ли сообщение в DLQ.
type Handler struct {
	variants domain.VariantStore
	logger   *log.Entry
}

// NewHandler создаёт обработчик входящих событий.
func NewHandler(variants domain.VariantStore, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "inbox-handler")
	}
	return &Handler{variants: variants, logger: logger}
}

// Handle маршрутизирует конверт по типу события.
func (h *Handler) Handle(ctx context.Context, envelope kafka.InboundEnvelope) error {
	switch envelope.Kind {
	case kafka.InboundKindPriceUpdated:
		return h.handlePriceUpdated(ctx, envelope.Payload)
	case kafka.InboundKindStockUpdated:
		return h.handleStockUpdated(ctx, envelope.Payload)
	default:
		return fmt.Errorf("unsupported inbound event kind %q: %w", envelope.Kind, domain.ErrInvalidInput)
	}
}

func (h *Handler) handlePriceUpdated(ctx context.Context, payload json.RawMessage) error {
	var event kafka.PriceUpdated
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal price.updated payload: %w", err)
	}
	if strings.TrimSpace(event.SKU) == "" {
		return fmt.Errorf("price.updated has empty sku: %w", domain.ErrInvalidInput)
	}
	if event.Price.IsNegative() {
		return fmt.Errorf("price.updated has negative price %s: %w", event.Price, domain.ErrInvalidInput)
	}

	if err := h.variants.UpdatePrice(ctx, event.SKU, event.Price); err != nil {
		return fmt.Errorf("apply price.updated for %s: %w", event.SKU, err)
	}
	h.logger.WithFields(log.Fields{
		"sku":   domain.NormalizeSKU(event.SKU),
		"price": event.Price.String(),
	}).Info("variant price updated")
	return nil
}

func (h *Handler) handleStockUpdated(ctx context.Context, payload json.RawMessage) error {
	var event kafka.StockUpdated
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal stock.updated payload: %w", err)
	}
	if strings.TrimSpace(event.SKU) == "" {
		return fmt.Errorf("stock.updated has empty sku: %w", domain.ErrInvalidInput)
	}
	if event.Qty < 0 {
		return fmt.Errorf("stock.updated has negative qty %d: %w", event.Qty, domain.ErrInvalidInput)
	}

	if err := h.variants.UpdateStock(ctx, event.SKU, event.Qty); err != nil {
		return fmt.Errorf("apply stock.updated for %s: %w", event.SKU, err)
	}
	h.logger.WithFields(log.Fields{
		"sku": domain.NormalizeSKU(event.SKU),
		"qty": event.Qty,
	}).Info("variant stock updated")
	return nil
}
