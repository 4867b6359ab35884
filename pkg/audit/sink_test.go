package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/example/stockdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memWriter struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	fail    bool
}

func (w *memWriter) CreateAuditLog(_ context.Context, e *models.AuditEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("store down")
	}
	w.entries = append(w.entries, *e)
	return nil
}

func TestSinkWritesInOrderBeforeClose(t *testing.T) {
	w := &memWriter{}
	s := NewSink(w, zap.NewNop())

	for i := 0; i < 20; i++ {
		s.Record(models.AuditEntry{Action: "place_order", EntityID: fmt.Sprint(i)})
	}
	require.NoError(t, s.Close())

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.entries, 20)
	for i, e := range w.entries {
		assert.Equal(t, fmt.Sprint(i), e.EntityID)
	}
}

func TestSinkDropsAfterClose(t *testing.T) {
	w := &memWriter{}
	s := NewSink(w, zap.NewNop())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s.Record(models.AuditEntry{Action: "late"})
	assert.Empty(t, w.entries)
}

func TestSinkSurvivesWriteFailures(t *testing.T) {
	w := &memWriter{fail: true}
	s := NewSink(w, zap.NewNop())
	s.Record(models.AuditEntry{Action: "a"})
	s.Record(models.AuditEntry{Action: "b"})
	assert.NoError(t, s.Close())
}
