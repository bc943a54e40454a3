package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"jobrelay/internal/domain"
)

// NewListCmd builds the list command.
func NewListCmd(deps Deps) *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := deps.Store.List(context.Background(), domain.JobStatus(status), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tSTATUS\tATTEMPTS\tUPDATED")
			for _, j := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					j.ID, j.Kind, j.Status, j.Attempts, j.UpdatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (queued, processing, completed, failed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of jobs to list")

	return cmd
}
