package worker

import "jobrelay/internal/domain"

// Registry routes jobs to their handlers based on job kind.
type Registry struct {
	handlers map[domain.JobKind]domain.Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[domain.JobKind]domain.Handler)}
}

// Register adds a handler for a job kind, replacing any previous one.
func (r *Registry) Register(kind domain.JobKind, h domain.Handler) {
	r.handlers[kind] = h
}

// Get returns the handler for kind, or nil if none is registered.
func (r *Registry) Get(kind domain.JobKind) domain.Handler {
	return r.handlers[kind]
}
