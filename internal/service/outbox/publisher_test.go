package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestRecorder_VersionedPayload(t *testing.T) {
	repo := &stubOutboxRepo{}
	recorder := NewRecorder()

	snapshot := map[string]any{"orderNumber": "ORD-AB12CD34EF56", "totalCost": "10.00"}
	msg, err := recorder.Record(context.Background(), repo, EventTypeOrderCreated, "ORD-AB12CD34EF56", snapshot)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if msg.AggregateType != AggregateTypeOrder || msg.AggregateID != "ORD-AB12CD34EF56" {
		t.Fatalf("unexpected message envelope: %+v", msg)
	}
	if len(repo.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued message, got %d", len(repo.enqueued))
	}

	var event OrderEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if event.SchemaVersion != 1 {
		t.Fatalf("expected schema_version 1, got %d", event.SchemaVersion)
	}
	if event.EventType != EventTypeOrderCreated {
		t.Fatalf("unexpected event type %q", event.EventType)
	}
	if event.OrderNumber != "ORD-AB12CD34EF56" {
		t.Fatalf("payload must carry the order number, got %q", event.OrderNumber)
	}
}

func TestDispatcher_MarksDispatchedOnSuccess(t *testing.T) {
	repo := &stubOutboxRepo{}
	publisher := &stubPublisher{}
	dispatcher := NewDispatcher(repo, publisher, nil)

	if err := dispatcher.Dispatch(context.Background(), pendingMsg("msg-1")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(repo.dispatchedIDs) != 1 || repo.dispatchedIDs[0] != "msg-1" {
		t.Fatalf("expected dispatched mark for msg-1, got %v", repo.dispatchedIDs)
	}
}

// Неудача доставки оставляет сообщение pending и не трогает статус.
func TestDispatcher_LeavesPendingOnFailure(t *testing.T) {
	repo := &stubOutboxRepo{}
	publisher := &stubPublisher{err: errors.New("broker down")}
	dispatcher := NewDispatcher(repo, publisher, nil)

	err := dispatcher.Dispatch(context.Background(), pendingMsg("msg-1"))
	if err == nil {
		t.Fatal("expected dispatch error")
	}
	if len(repo.dispatchedIDs) != 0 || len(repo.failedIDs) != 0 {
		t.Fatalf("status must stay pending, got dispatched=%v failed=%v", repo.dispatchedIDs, repo.failedIDs)
	}
}

func TestDispatcher_NilPublisherIsNoop(t *testing.T) {
	dispatcher := NewDispatcher(&stubOutboxRepo{}, nil, nil)
	if err := dispatcher.Dispatch(context.Background(), pendingMsg("msg-1")); err != nil {
		t.Fatalf("nil publisher must be a no-op, got %v", err)
	}
}
