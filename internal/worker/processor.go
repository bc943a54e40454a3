// Package worker executes jobs to a terminal state, idempotently with
// respect to the push queue's at-least-once delivery.
package worker

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"jobrelay/internal/codec"
	"jobrelay/internal/domain"
)

// Processor drives one job through queued -> processing -> terminal.
type Processor struct {
	store    domain.JobStore
	registry *Registry
	encoder  codec.Encoder
}

// NewProcessor creates a Processor backed by store, dispatching through
// registry.
func NewProcessor(store domain.JobStore, registry *Registry) *Processor {
	return &Processor{
		store:    store,
		registry: registry,
		encoder:  &codec.JSONEncoder{},
	}
}

// Process executes the job with the given id and returns its terminal
// record. Repeat calls for an already-terminal job return the stored
// record unchanged, which is what makes duplicate deliveries safe.
// Handler failures are converted into stored failed state; a non-nil
// error here means the store itself failed and the job may be left in
// processing for external reconciliation.
func (p *Processor) Process(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := p.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Terminal() {
		log.Printf("worker: job %s already %s, skipping", job.ID, job.Status)
		return job, nil
	}

	attempts := job.Attempts + 1
	status := domain.StatusProcessing
	job, err = p.store.Update(ctx, jobID, domain.JobUpdate{
		Status:   &status,
		Attempts: &attempts,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("worker: job %s (%s) attempt %d", job.ID, job.Kind, job.Attempts)

	result, execErr := p.run(ctx, job)
	if execErr != nil {
		log.Printf("worker: job %s failed: %s", job.ID, execErr.Message)
		failed := domain.StatusFailed
		return p.store.Update(ctx, jobID, domain.JobUpdate{
			Status: &failed,
			Error:  execErr,
		})
	}

	raw, err := p.encoder.Encode(result)
	if err != nil {
		failed := domain.StatusFailed
		return p.store.Update(ctx, jobID, domain.JobUpdate{
			Status: &failed,
			Error:  &domain.ExecError{Message: fmt.Sprintf("encode result: %v", err), Kind: "EncodeError"},
		})
	}

	completed := domain.StatusCompleted
	return p.store.Update(ctx, jobID, domain.JobUpdate{
		Status:     &completed,
		Result:     raw,
		ClearError: true,
	})
}

// run invokes the handler for the job's kind, converting errors and
// panics into an ExecError so nothing escapes past the processor.
func (p *Processor) run(ctx context.Context, job *domain.Job) (result any, execErr *domain.ExecError) {
	defer func() {
		if r := recover(); r != nil {
			execErr = &domain.ExecError{
				Message: fmt.Sprintf("panic: %v", r),
				Kind:    "panic",
				Stack:   string(debug.Stack()),
			}
		}
	}()

	h := p.registry.Get(job.Kind)
	if h == nil {
		return nil, &domain.ExecError{
			Message: fmt.Sprintf("no handler registered for kind %q", job.Kind),
			Kind:    "UnknownKind",
		}
	}

	out, err := h.Handle(ctx, job)
	if err != nil {
		return nil, &domain.ExecError{
			Message: err.Error(),
			Kind:    fmt.Sprintf("%T", err),
		}
	}
	return out, nil
}
