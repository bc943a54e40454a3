package domain

import (
	"encoding/json"
	"time"
)

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further processing.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobKind identifies the type of work a job carries. The processor
// dispatches on it and each kind has its own payload shape.
type JobKind string

const (
	KindOnboarding   JobKind = "onboarding"
	KindAgentRequest JobKind = "agent-request"
)

// ParseKind converts a string into a JobKind, returning ErrUnknownKind
// for values no handler exists for.
func ParseKind(s string) (JobKind, error) {
	switch s {
	case string(KindOnboarding):
		return KindOnboarding, nil
	case string(KindAgentRequest):
		return KindAgentRequest, nil
	default:
		return "", ErrUnknownKind
	}
}

// Job represents one unit of background work. The job store owns the
// authoritative copy; everything else sees snapshots.
type Job struct {
	ID        string          `json:"id"`
	Kind      JobKind         `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Status    JobStatus       `json:"status"`
	Attempts  int             `json:"attempts"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *ExecError      `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Terminal reports whether the job has reached completed or failed.
func (j *Job) Terminal() bool {
	return j.Status.Terminal()
}

// ExecError captures a domain-logic failure for storage on the job.
// Stack is only set when the failure was a recovered panic.
type ExecError struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

func (e *ExecError) Error() string { return e.Message }

// JobUpdate is a partial update applied by JobStore.Update. Nil fields
// are left untouched; ClearError removes a previously stored error.
type JobUpdate struct {
	Status     *JobStatus
	Attempts   *int
	Result     json.RawMessage
	Error      *ExecError
	ClearError bool
}

// OnboardingPayload is the input for KindOnboarding jobs.
type OnboardingPayload struct {
	UserID string `json:"userId"`
}

// AgentRequestPayload is the input for KindAgentRequest jobs.
type AgentRequestPayload struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
	Agent   string `json:"agent,omitempty"`
}

// OnboardingResult is stored on a completed onboarding job. The email
// flag records the side effect so duplicate deliveries cannot re-fire it.
type OnboardingResult struct {
	UserID           string `json:"userId"`
	WelcomeEmailSent bool   `json:"welcomeEmailSent"`
}

// AgentRequestResult is stored on a completed agent-request job.
type AgentRequestResult struct {
	UserID string `json:"userId"`
	Agent  string `json:"agent"`
	Reply  string `json:"reply"`
}
