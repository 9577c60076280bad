package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kontor/backend/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureSink struct {
	entries []Entry
	err     error
}

func (s *captureSink) Record(_ context.Context, entry Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func paidInvoice(t *testing.T) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(uuid.New(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, inv.AssignNumber("INV-2026-001"))
	return inv
}

func TestRecorder_Handle(t *testing.T) {
	t.Run("records event metadata and payload", func(t *testing.T) {
		sink := &captureSink{}
		recorder := NewRecorder(sink, zap.NewNop())

		inv := paidInvoice(t)
		event := billing.NewInvoicePaidEvent(inv)

		require.NoError(t, recorder.Handle(context.Background(), event))
		require.Len(t, sink.entries, 1)

		entry := sink.entries[0]
		assert.Equal(t, event.EventID(), entry.EventID)
		assert.Equal(t, billing.EventTypeInvoicePaid, entry.EventType)
		assert.Equal(t, "Invoice", entry.AggregateType)
		assert.Equal(t, inv.ID, entry.AggregateID)
		assert.Contains(t, string(entry.Payload), "INV-2026-001")
	})

	t.Run("sink failures never propagate", func(t *testing.T) {
		sink := &captureSink{err: errors.New("disk full")}
		recorder := NewRecorder(sink, zap.NewNop())

		err := recorder.Handle(context.Background(), billing.NewInvoicePaidEvent(paidInvoice(t)))
		assert.NoError(t, err)
	})

	t.Run("subscribes to all events", func(t *testing.T) {
		recorder := NewRecorder(&captureSink{}, zap.NewNop())
		assert.Empty(t, recorder.EventTypes())
	})
}
