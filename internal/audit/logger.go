package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/fleet-availability/internal/models"
	"github.com/example/fleet-availability/internal/observability"
)

// Sink is the slice of the spatial store the logger writes to.
type Sink interface {
	AppendHistory(ctx context.Context, e models.AvailabilityHistoryEntry) error
}

// Logger appends one availability history entry per completed fleet
// lookup. Writes are fire-and-forget: the caller's response never waits
// on them, and a failed write is logged and counted but never surfaced.
// An earlier revision of this service let a history-write error turn an
// approved ride into a 500; the absorb-and-count behavior here is load
// bearing, not an oversight.
type Logger struct {
	Sink    Sink
	Stream  *Stream // optional analytics stream
	Logger  *slog.Logger
	Timeout time.Duration

	wg sync.WaitGroup
}

// Record schedules an append of the decision payload for the rider and
// returns immediately.
func (l *Logger) Record(riderID string, loc models.Coord, payload []byte) {
	e := models.AvailabilityHistoryEntry{
		ID:        uuid.NewString(),
		RiderID:   riderID,
		Location:  loc,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.write(e)
	}()
}

func (l *Logger) write(e models.AvailabilityHistoryEntry) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	observability.AuditWritesTotal.Inc()
	if err := l.Sink.AppendHistory(ctx, e); err != nil {
		observability.AuditWriteFailures.Inc()
		if l.Logger != nil {
			l.Logger.Error("availability history write failed",
				"entry_id", e.ID, "rider_id", e.RiderID, "error", err)
		}
	}

	if l.Stream != nil {
		if err := l.Stream.Publish(ctx, e); err != nil && l.Logger != nil {
			l.Logger.Warn("decision stream publish failed",
				"entry_id", e.ID, "error", err)
		}
	}
}

// Drain blocks until all scheduled writes finish or ctx expires. Called
// on shutdown so in-flight entries are not lost with the process.
func (l *Logger) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
