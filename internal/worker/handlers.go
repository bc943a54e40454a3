package worker

import (
	"context"
	"fmt"

	"jobrelay/internal/codec"
	"jobrelay/internal/domain"
)

// OnboardingHandler runs the onboarding step sequence for a user. The
// welcome email is sent at the very end of a successful run and the
// fact is recorded in the result, so a duplicate delivery (blocked by
// the terminal-status check) can never send it twice.
type OnboardingHandler struct {
	notifier domain.Notifier
	encoder  codec.Encoder
}

// NewOnboardingHandler creates the handler for onboarding jobs.
func NewOnboardingHandler(notifier domain.Notifier) *OnboardingHandler {
	return &OnboardingHandler{notifier: notifier, encoder: &codec.JSONEncoder{}}
}

// Handle implements domain.Handler.
func (h *OnboardingHandler) Handle(ctx context.Context, job *domain.Job) (any, error) {
	var p domain.OnboardingPayload
	if err := h.encoder.Decode(job.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode onboarding payload: %w", err)
	}
	if p.UserID == "" {
		return nil, fmt.Errorf("onboarding payload missing userId")
	}

	if err := h.notifier.SendWelcome(ctx, p.UserID); err != nil {
		return nil, fmt.Errorf("send welcome to %s: %w", p.UserID, err)
	}

	return domain.OnboardingResult{UserID: p.UserID, WelcomeEmailSent: true}, nil
}

// AgentHandler runs the agent collaboration pipeline for a user request.
type AgentHandler struct {
	agents  domain.AgentClient
	encoder codec.Encoder
}

// NewAgentHandler creates the handler for agent-request jobs.
func NewAgentHandler(agents domain.AgentClient) *AgentHandler {
	return &AgentHandler{agents: agents, encoder: &codec.JSONEncoder{}}
}

// Handle implements domain.Handler.
func (h *AgentHandler) Handle(ctx context.Context, job *domain.Job) (any, error) {
	var p domain.AgentRequestPayload
	if err := h.encoder.Decode(job.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode agent-request payload: %w", err)
	}
	if p.UserID == "" {
		return nil, fmt.Errorf("agent-request payload missing userId")
	}
	if p.Agent == "" {
		p.Agent = "default"
	}

	reply, err := h.agents.Collaborate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", p.Agent, err)
	}

	return domain.AgentRequestResult{UserID: p.UserID, Agent: p.Agent, Reply: reply}, nil
}
