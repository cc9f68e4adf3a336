// Package worker consumes attendance events and refreshes derived data.
package worker

import (
	"context"

	"jjc-attendance/internal/logger"
	"jjc-attendance/internal/queue"
)

// Warmer rebuilds the cached summary of one user.
type Warmer interface {
	Warm(ctx context.Context, userID string) error
}

// Run consumes q until ctx is cancelled or the queue closes, warming the
// summary of every user that received a new or updated record.
func Run(ctx context.Context, q queue.Queue, w Warmer) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	logger.Info("worker started, waiting for messages...")
	for msg := range messages {
		handle(ctx, w, msg)
	}
	logger.Info("worker stopped")
	return nil
}

func handle(ctx context.Context, w Warmer, msg queue.Message) {
	if msg.Type != queue.TypeRecorded {
		logger.Debugf("skipping message of type %q", msg.Type)
		return
	}
	if msg.UserID == "" {
		return
	}
	if err := w.Warm(ctx, msg.UserID); err != nil {
		logger.Warningf("warm summary for user %s (record %s) failed: %v", msg.UserID, msg.RecordID, err)
		return
	}
	logger.Debugf("summary warmed for user %s", msg.UserID)
}
