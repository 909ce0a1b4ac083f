package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/devexchange/orgs-backend/v1/internal/notify"
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type captureWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

type flakyDeliverer struct {
	failures int
	err      error
	calls    int
	last     string
}

func (d *flakyDeliverer) SendMessages(_ context.Context, event string, _ []model.User, _ model.MessageData) error {
	d.calls++
	d.last = event
	if d.calls <= d.failures {
		if d.err != nil {
			return d.err
		}
		return errors.New("smtp unavailable")
	}
	return nil
}

func TestProducer_PublishesEvent(t *testing.T) {
	w := &captureWriter{}
	p := &Producer{Writer: w}

	org := &model.Org{Key: "acme", Name: "Acme"}
	recipients := []model.User{{Key: "owner", Email: "owner@example.com"}}
	if err := p.SendMessages(context.Background(), model.EventJoinRequest, recipients, model.MessageData{Org: org}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "acme" {
		t.Errorf("expected org key as message key, got %q", w.msgs[0].Key)
	}

	var event MembershipEvent
	if err := json.Unmarshal(w.msgs[0].Value, &event); err != nil {
		t.Fatalf("payload is not a MembershipEvent: %v", err)
	}
	if event.EventType != "org.membership.company-join-request" || event.Notification != model.EventJoinRequest {
		t.Errorf("unexpected event type %q / %q", event.EventType, event.Notification)
	}
	if event.EventID == "" || event.SchemaVersion != SchemaVersion {
		t.Errorf("missing envelope fields: %+v", event)
	}
	if len(event.Recipients) != 1 || event.Recipients[0].Email != "owner@example.com" {
		t.Errorf("unexpected recipients %+v", event.Recipients)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Error("expected writer to be closed")
	}
}

func TestHandler_RetriesUntilDelivered(t *testing.T) {
	d := &flakyDeliverer{failures: 2}
	h := &Handler{Deliverer: d, Logger: zap.NewNop(), MaxElapsed: 10 * time.Second}

	payload, _ := json.Marshal(MembershipEvent{
		EventID:      "e1",
		Notification: model.EventJoinRequestAccepted,
		Recipients:   []model.User{{Key: "alice", Email: "alice@example.com"}},
	})

	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.calls != 3 {
		t.Errorf("expected 3 delivery attempts, got %d", d.calls)
	}
	if d.last != model.EventJoinRequestAccepted {
		t.Errorf("unexpected notification %q", d.last)
	}
}

func TestHandler_RejectsMalformedEvents(t *testing.T) {
	d := &flakyDeliverer{}
	h := NewHandler(d, zap.NewNop())

	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte("{")},
		{"no notification", []byte(`{"event_id":"e","recipients":[{"email":"a@example.com"}]}`)},
		{"no recipients", []byte(`{"event_id":"e","notification":"company-join-request"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.Handle(context.Background(), tt.payload); err == nil {
				t.Error("expected error")
			}
		})
	}
	if d.calls != 0 {
		t.Errorf("expected no delivery attempts, got %d", d.calls)
	}
}

func TestHandler_RenderFailureIsNotRetried(t *testing.T) {
	d := &flakyDeliverer{failures: 5, err: fmt.Errorf("%w: no template for event %q", notify.ErrRender, "bogus")}
	h := &Handler{Deliverer: d, Logger: zap.NewNop(), MaxElapsed: 10 * time.Second}

	payload, _ := json.Marshal(MembershipEvent{
		EventID:      "e2",
		Notification: "bogus",
		Recipients:   []model.User{{Key: "alice", Email: "alice@example.com"}},
	})

	err := h.Handle(context.Background(), payload)
	if !errors.Is(err, notify.ErrRender) {
		t.Fatalf("expected render error, got %v", err)
	}
	if d.calls != 1 {
		t.Errorf("expected a single delivery attempt, got %d", d.calls)
	}
}
