package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypePendingRequestReminder = "reminder:pending_request"

// PendingReminderPayload identifies the service request to re-check when the
// reminder fires.
type PendingReminderPayload struct {
	RequestID  string `json:"request_id"`
	CustomerID string `json:"customer_id"`
}

// NewPendingRequestReminder builds a task that fires at the given time.
func NewPendingRequestReminder(payload PendingReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePendingRequestReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// Scheduler enqueues reminder tasks. It wraps the asynq client so callers
// never touch queue plumbing directly.
type Scheduler struct {
	client *asynq.Client
}

func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client}
}

// SchedulePendingReminder queues a nudge for a service request that may still
// be unconfirmed when the deadline passes.
func (s *Scheduler) SchedulePendingReminder(ctx context.Context, requestID, customerID string, fireAt time.Time) error {
	task, opts, err := NewPendingRequestReminder(PendingReminderPayload{
		RequestID:  requestID,
		CustomerID: customerID,
	}, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build pending reminder task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue pending reminder for request %s: %w", requestID, err)
	}
	return nil
}
