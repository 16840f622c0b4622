package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

const (
	// AggregateTypeOrder — тип агрегата для событий заказов.
	AggregateTypeOrder = "order"
	// EventTypeOrderCreated публикуется после создания заказа.
	EventTypeOrderCreated = "order.created"
	// EventTypeOrderUpdated публикуется после обновления заказа.
	EventTypeOrderUpdated = "order.updated"

	// eventSchemaVersion версионирует схему payload'а. Потребители привязаны
	// к этой схеме, а не к внутреннему представлению агрегата.
	eventSchemaVersion = 1
)

// OrderEvent — версионированная схема события заказа в outbox payload.
type OrderEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	OrderNumber   string    `json:"order_number"`
	OccurredAt    time.Time `json:"occurred_at"`
	Order         any       `json:"order"`
}

// Recorder записывает Pending-сообщение в outbox в рамках активной единицы
// работы вызывающей стороны. Здесь никогда не происходит синхронная доставка.
type Recorder struct {
	now func() time.Time
}

// NewRecorder создаёт recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: func() time.Time { return time.Now().UTC() }}
}

// Record сериализует снапшот заказа в версионированное событие и ставит его
// в outbox через переданный (транзакционный) репозиторий.
func (r *Recorder) Record(ctx context.Context, repo domain.OutboxRepository, eventType, orderNumber string, snapshot any) (domain.OutboxMessage, error) {
	payload, err := json.Marshal(OrderEvent{
		SchemaVersion: eventSchemaVersion,
		EventType:     eventType,
		OrderNumber:   orderNumber,
		OccurredAt:    r.now(),
		Order:         snapshot,
	})
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("marshal outbox payload: %w", err)
	}

	msg := domain.OutboxMessage{
		AggregateType: AggregateTypeOrder,
		AggregateID:   orderNumber,
		EventType:     eventType,
		Payload:       payload,
	}
	enqueued, err := repo.Enqueue(ctx, msg)
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue outbox message: %w", err)
	}
	return enqueued, nil
}

// Dispatcher выполняет best-effort доставку после коммита владеющей транзакции.
// Неудача доставки никогда не откатывает и не проваливает исходную запись:
// сообщение остаётся Pending, его подберёт sweeper.
type Dispatcher struct {
	repo      domain.OutboxRepository
	publisher domain.OutboxPublisher
	logger    *log.Entry
}

// NewDispatcher создаёт dispatcher. publisher может быть nil — тогда доставку
// целиком берёт на себя фоновый worker.
func NewDispatcher(repo domain.OutboxRepository, publisher domain.OutboxPublisher, logger *log.Entry) *Dispatcher {
	if logger == nil {
		logger = log.WithField("component", "outbox-dispatcher")
	}
	return &Dispatcher{repo: repo, publisher: publisher, logger: logger}
}

// Dispatch пытается доставить одно сообщение. Повторный вызов для уже
// доставленного сообщения безопасен (идемпотентность на стороне потребителя
// предполагается, не проверяется).
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.OutboxMessage) error {
	if d == nil || d.publisher == nil {
		return nil
	}

	if err := d.publisher.Publish(ctx, msg); err != nil {
		// Сообщение остаётся pending — запись уже durable, доставку повторит sweeper.
		return fmt.Errorf("dispatch outbox message %s: %w", msg.ID, err)
	}

	if err := d.repo.MarkDispatched(ctx, msg.ID); err != nil {
		d.logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to mark outbox message as dispatched")
	}
	return nil
}
