// Package enqueue turns domain requests into durable job records plus
// dispatch messages on the push queue.
package enqueue

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"jobrelay/internal/codec"
	"jobrelay/internal/config"
	"jobrelay/internal/domain"
)

// Message is the body published to the push queue and later delivered
// to the webhook receiver. JobID is the correlation key; the remaining
// fields are carried verbatim for the processor's convenience.
type Message struct {
	JobID  string `json:"jobId"`
	Kind   string `json:"kind"`
	UserID string `json:"userId,omitempty"`
}

// Enqueuer creates job records and publishes their dispatch messages.
type Enqueuer struct {
	store     domain.JobStore
	publisher domain.Publisher
	cfg       *config.Config
	encoder   codec.Encoder
}

// New creates an Enqueuer.
func New(store domain.JobStore, publisher domain.Publisher, cfg *config.Config) *Enqueuer {
	return &Enqueuer{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		encoder:   &codec.JSONEncoder{},
	}
}

// EnqueueOnboarding submits an onboarding job for userID and returns
// the job id. Completion is asynchronous; callers poll the job status.
func (e *Enqueuer) EnqueueOnboarding(ctx context.Context, userID string) (string, error) {
	return e.enqueue(ctx, domain.KindOnboarding, userID, domain.OnboardingPayload{UserID: userID})
}

// EnqueueAgentRequest submits an agent collaboration job and returns
// the job id.
func (e *Enqueuer) EnqueueAgentRequest(ctx context.Context, p domain.AgentRequestPayload) (string, error) {
	return e.enqueue(ctx, domain.KindAgentRequest, p.UserID, p)
}

func (e *Enqueuer) enqueue(ctx context.Context, kind domain.JobKind, userID string, payload any) (string, error) {
	// Deployment precondition, checked before any state is created.
	if err := e.cfg.Validate(); err != nil {
		return "", err
	}

	raw, err := e.encoder.Encode(payload)
	if err != nil {
		return "", err
	}

	// The id is generated up front so the stored record and the queue
	// message share the same correlation key.
	id := uuid.NewString()

	job := &domain.Job{ID: id, Kind: kind, Payload: raw}
	if err := e.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	body, err := e.encoder.Encode(Message{JobID: id, Kind: string(kind), UserID: userID})
	if err != nil {
		return "", err
	}

	callback := e.cfg.CallbackURL()
	if err := e.publisher.Publish(ctx, callback, body); err != nil {
		return "", fmt.Errorf("publish job %s: %w", id, err)
	}

	log.Printf("enqueue: job %s (%s) published, callback %s", id, kind, callback)
	return id, nil
}
