package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"jobrelay/internal/domain"
)

// fakeNotifier records welcome email sends.
type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendWelcome(ctx context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, userID)
	return nil
}

// fakeAgent returns a canned reply.
type fakeAgent struct {
	err error
}

func (f *fakeAgent) Collaborate(ctx context.Context, req domain.AgentRequestPayload) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s says hi to %s", req.Agent, req.UserID), nil
}

func TestOnboardingHandler(t *testing.T) {
	n := &fakeNotifier{}
	h := NewOnboardingHandler(n)

	out, err := h.Handle(context.Background(), &domain.Job{
		Kind:    domain.KindOnboarding,
		Payload: json.RawMessage(`{"userId":"u1"}`),
	})
	require.NoError(t, err)
	require.Equal(t, domain.OnboardingResult{UserID: "u1", WelcomeEmailSent: true}, out)
	require.Equal(t, []string{"u1"}, n.sent)
}

func TestOnboardingHandler_MissingUser(t *testing.T) {
	n := &fakeNotifier{}
	h := NewOnboardingHandler(n)

	_, err := h.Handle(context.Background(), &domain.Job{Payload: json.RawMessage(`{}`)})
	require.Error(t, err)
	require.Empty(t, n.sent)
}

func TestOnboardingHandler_NotifierFailure(t *testing.T) {
	n := &fakeNotifier{err: errors.New("smtp down")}
	h := NewOnboardingHandler(n)

	_, err := h.Handle(context.Background(), &domain.Job{Payload: json.RawMessage(`{"userId":"u1"}`)})
	require.ErrorContains(t, err, "smtp down")
}

func TestAgentHandler(t *testing.T) {
	h := NewAgentHandler(&fakeAgent{})

	out, err := h.Handle(context.Background(), &domain.Job{
		Kind:    domain.KindAgentRequest,
		Payload: json.RawMessage(`{"userId":"u2","message":"help","agent":"analyst"}`),
	})
	require.NoError(t, err)
	require.Equal(t, domain.AgentRequestResult{
		UserID: "u2",
		Agent:  "analyst",
		Reply:  "analyst says hi to u2",
	}, out)
}

func TestAgentHandler_DefaultAgent(t *testing.T) {
	h := NewAgentHandler(&fakeAgent{})

	out, err := h.Handle(context.Background(), &domain.Job{
		Payload: json.RawMessage(`{"userId":"u2","message":"help"}`),
	})
	require.NoError(t, err)
	require.Equal(t, "default", out.(domain.AgentRequestResult).Agent)
}
