// Package audit writes audit entries off the request path through a
// single actor, so entries of one process are persisted in order.
package audit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/stockdesk/pkg/models"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Writer persists one audit entry.
type Writer interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditEntry) error
}

type writeEntry struct {
	entry models.AuditEntry
}

// writerActor handles audit messages
type writerActor struct {
	writer Writer
	logger *zap.Logger
}

func (a *writerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *writeEntry:
		wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := a.writer.CreateAuditLog(wctx, &msg.entry); err != nil {
			a.logger.Error("Failed to write audit log",
				zap.String("action", msg.entry.Action),
				zap.String("entity_id", msg.entry.EntityID),
				zap.Error(err))
		}

	case *actor.Started:
		a.logger.Info("Audit actor started")

	case *actor.Stopped:
		a.logger.Info("Audit actor stopped")
	}
}

type Sink struct {
	system *actor.ActorSystem
	pid    *actor.PID
	closed atomic.Bool
}

func NewSink(w Writer, logger *zap.Logger) *Sink {
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return &writerActor{writer: w, logger: logger.Named("audit-actor")}
	})
	return &Sink{
		system: system,
		pid:    system.Root.Spawn(props),
	}
}

// Record queues the entry and returns immediately. Entries recorded after
// Close are dropped.
func (s *Sink) Record(entry models.AuditEntry) {
	if s.closed.Load() {
		return
	}
	s.system.Root.Send(s.pid, &writeEntry{entry: entry})
}

// Close waits until every queued entry has been written.
func (s *Sink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.system.Root.PoisonFuture(s.pid).Wait()
}
