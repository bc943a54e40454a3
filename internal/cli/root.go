// Package cli implements the relayctl operator commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"jobrelay/internal/domain"
)

// Store is the store surface the CLI needs: key lookup plus listing.
type Store interface {
	domain.JobStore
	domain.JobLister
}

// Enqueuer is the enqueue surface the CLI needs.
type Enqueuer interface {
	EnqueueOnboarding(ctx context.Context, userID string) (string, error)
	EnqueueAgentRequest(ctx context.Context, p domain.AgentRequestPayload) (string, error)
}

// Deps carries the wired dependencies commands operate on.
type Deps struct {
	Store    Store
	Enqueuer Enqueuer
}

// NewRootCmd builds the relayctl command tree.
func NewRootCmd(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "relayctl",
		Short:         "Operate the jobrelay background job service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(NewEnqueueCmd(deps))
	root.AddCommand(NewGetCmd(deps))
	root.AddCommand(NewListCmd(deps))

	return root
}
