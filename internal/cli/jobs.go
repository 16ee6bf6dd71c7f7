package cli

import (
	"github.com/spf13/cobra"

	"github.com/kitbuilder587/serpclient/internal/repository"
)

func newJobsCmd(root *rootOptions) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent requests from the job history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.newApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.History == nil {
				return ErrHistoryDisabled
			}

			records, err := app.Service.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return FormatJobs(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", repository.DefaultListLimit, "Number of records to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}
