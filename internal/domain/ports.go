package domain

import "context"

// JobStore is the driven port for job persistence. It is the single
// source of truth for job status; implementations must apply updates
// atomically per job id.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, id string, upd JobUpdate) (*Job, error)
}

// JobLister is an optional store capability used by operator tooling
// to inspect jobs by status (e.g. to find ones stuck in processing).
type JobLister interface {
	List(ctx context.Context, status JobStatus, limit int) ([]Job, error)
}

// Publisher is the driven port for the external push queue. Publish
// returning nil means the queue accepted the message for future
// delivery, not that the job ran.
type Publisher interface {
	Publish(ctx context.Context, callbackURL string, body []byte) error
}

// Handler executes the domain logic for one job kind. The returned
// value is serialized into the job's result on success.
type Handler interface {
	Handle(ctx context.Context, job *Job) (any, error)
}

// Notifier is the driven port for outbound notifications (e.g. the
// onboarding welcome email).
type Notifier interface {
	SendWelcome(ctx context.Context, userID string) error
}

// AgentClient is the driven port for the AI agent collaboration
// pipeline invoked by agent-request jobs.
type AgentClient interface {
	Collaborate(ctx context.Context, req AgentRequestPayload) (string, error)
}
