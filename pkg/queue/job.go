// Package queue is the durable delayed job queue connecting the settlement components.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type names a job kind; each kind has one registered handler.
type Type string

const (
	TypeDispatch    Type = "dispatch"
	TypeStatusCheck Type = "status_check"
	TypeRecovery    Type = "recovery"
)

// Job is the envelope stored in the queue. Payload is the typed job content.
type Job struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempt    int             `json:"attempt"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewJob encodes payload into a fresh envelope.
func NewJob(t Type, payload any) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	return &Job{
		ID:         uuid.NewString(),
		Type:       t,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (j *Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s job %s: %w", j.Type, j.ID, err)
	}
	return nil
}

// Queue stores jobs until they are due and leases them to workers.
// Delivery is at-least-once: a leased job that is neither acked nor retried
// before its lease expires is delivered again.
type Queue interface {
	Enqueue(ctx context.Context, job *Job, delay time.Duration) error
	// Claim leases up to n due jobs.
	Claim(ctx context.Context, n int) ([]*Job, error)
	// Ack removes a leased job for good.
	Ack(ctx context.Context, job *Job) error
	// Retry releases a leased job back to the queue, due after delay, with Attempt incremented.
	Retry(ctx context.Context, job *Job, delay time.Duration) error
	// Bury moves a leased job to the dead-letter set.
	Bury(ctx context.Context, job *Job, reason string) error
}

// Submit builds a job of type t and enqueues it.
func Submit(ctx context.Context, q Queue, t Type, payload any, delay time.Duration) error {
	job, err := NewJob(t, payload)
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, job, delay)
}
