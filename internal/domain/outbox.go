package domain

import "time"

// OutboxStatus — статус доставки сообщения transactional outbox.
type OutboxStatus string

const (
	// OutboxStatusPending — сообщение записано вместе с мутацией и ждёт доставки.
	OutboxStatusPending OutboxStatus = "pending"
	// OutboxStatusDispatched — сообщение успешно доставлено в канал.
	OutboxStatusDispatched OutboxStatus = "dispatched"
	// OutboxStatusFailed — бюджет повторов исчерпан, сообщение ушло в DLQ.
	OutboxStatusFailed OutboxStatus = "failed"
)

// OutboxMessage — одно зафиксированное доменное изменение, ожидающее доставки.
// Создаётся в той же транзакции, что и мутация агрегата (write-ahead гарантия);
// доставка выполняется отдельно и не влияет на исход записи.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
