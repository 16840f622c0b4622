package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
)

// Topics для Kafka.
const (
	// TopicOrderEvents — исходящие события заказов (order.created / order.updated).
	TopicOrderEvents = "orders.order.events"
	// TopicInbox — входящие события каталога от внешних систем.
	TopicInbox = "orders.inbox"
	// TopicDeadLetterQueue — необработанные сообщения.
	TopicDeadLetterQueue = "orders.dlq"
)

// Kafka headers для retry-логики.
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// InboundKind — тип входящего события каталога. Набор закрыт: неизвестные
// типы отклоняются, а не игнорируются молча.
type InboundKind string

const (
	InboundKindPriceUpdated InboundKind = "price.updated"
	InboundKindStockUpdated InboundKind = "stock.updated"
)

// InboundEnvelope — конверт входящего события: тип плюс сырой payload,
// который декодируется по типу.
type InboundEnvelope struct {
	Kind    InboundKind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// PriceUpdated — внешнее изменение цены варианта.
type PriceUpdated struct {
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
}

// StockUpdated — внешнее изменение остатка варианта.
type StockUpdated struct {
	SKU string `json:"sku"`
	Qty int64  `json:"qty"`
}

// ParseInboundEnvelope извлекает конверт входящего события из сообщения.
func ParseInboundEnvelope(message *sarama.ConsumerMessage) (InboundEnvelope, error) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		return InboundEnvelope{}, fmt.Errorf("unmarshal inbound envelope: %w", err)
	}
	if envelope.Kind == "" {
		return InboundEnvelope{}, fmt.Errorf("inbound envelope has no kind")
	}
	return envelope, nil
}
