// Package audit subscribes to domain events and forwards them to an audit
// sink. Recording is best-effort: a failing sink never propagates into the
// business operation that produced the event.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Entry is one audit trail record derived from a domain event
type Entry struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	ActorID       *uuid.UUID      `json:"actor_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Sink persists audit entries
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// Recorder subscribes to all domain events and writes audit entries
type Recorder struct {
	sink   Sink
	logger *zap.Logger
}

// NewRecorder creates a new Recorder
func NewRecorder(sink Sink, logger *zap.Logger) *Recorder {
	return &Recorder{
		sink:   sink,
		logger: logger,
	}
}

// EventTypes returns an empty slice: the recorder receives every event
func (r *Recorder) EventTypes() []string {
	return nil
}

// Handle converts the event into an audit entry and records it. The full
// event is serialized as payload so state transitions keep their before and
// after values in the trail.
func (r *Recorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Warn("audit payload serialization failed",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		payload = nil
	}

	entry := Entry{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		ActorID:       event.ActorID(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	}

	if err := r.sink.Record(ctx, entry); err != nil {
		r.logger.Error("audit record failed",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err))
	}
	return nil
}
