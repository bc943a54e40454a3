package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jobrelay/internal/domain"
)

// NewEnqueueCmd builds the enqueue command.
func NewEnqueueCmd(deps Deps) *cobra.Command {
	var (
		userID  string
		message string
		agent   string
	)

	cmd := &cobra.Command{
		Use:   "enqueue <kind>",
		Short: "Submit a background job and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return fmt.Errorf("unknown kind %q (want %s or %s)", args[0], domain.KindOnboarding, domain.KindAgentRequest)
			}
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			ctx := context.Background()
			var jobID string
			switch kind {
			case domain.KindOnboarding:
				jobID, err = deps.Enqueuer.EnqueueOnboarding(ctx, userID)
			case domain.KindAgentRequest:
				jobID, err = deps.Enqueuer.EnqueueAgentRequest(ctx, domain.AgentRequestPayload{
					UserID:  userID,
					Message: message,
					Agent:   agent,
				})
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), jobID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "target user id")
	cmd.Flags().StringVar(&message, "message", "", "message for agent-request jobs")
	cmd.Flags().StringVar(&agent, "agent", "", "preferred agent for agent-request jobs")

	return cmd
}
