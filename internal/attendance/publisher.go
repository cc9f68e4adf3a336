package attendance

import (
	"context"
	"time"

	"jjc-attendance/internal/logger"
	"jjc-attendance/internal/queue"
)

// Publisher forwards record writes to the background queue.
type Publisher struct {
	q queue.Queue
}

// NewPublisher wraps q as a Notifier.
func NewPublisher(q queue.Queue) *Publisher {
	return &Publisher{q: q}
}

// Recorded publishes an attendance.recorded event. A full or unreachable
// queue only costs a stale summary cache, so errors are logged.
func (p *Publisher) Recorded(ctx context.Context, rec Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	msg := queue.Message{Type: queue.TypeRecorded, UserID: rec.UserID, RecordID: rec.ID, At: rec.UpdatedAt}
	if err := p.q.Publish(ctx, msg); err != nil {
		logger.Warningf("publish %s for record %s: %v", msg.Type, rec.ID, err)
	}
}
