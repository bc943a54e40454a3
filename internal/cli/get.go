package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewGetCmd builds the get command.
func NewGetCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Print a job record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := deps.Store.Get(context.Background(), args[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(job, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
