package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/triage-service/internal/worker"
)

func newBatchCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Triage every .txt conversation in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := worker.LoadDir(args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("no .txt conversations in %s", args[0])
			}

			ctx := cmd.Context()
			snapshot, err := app.Corpus.Load(ctx)
			if err != nil {
				return fmt.Errorf("load corpus: %w", err)
			}

			results, err := app.Triager.Run(ctx, items, snapshot.Tickets())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tPRIORITY\tTEAM\tCONFIDENCE\tERROR")
			failed := 0
			for _, r := range results {
				if r.Err != "" {
					failed++
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", r.Name, r.Result.Priority, r.Result.Team, r.Result.Confidence, r.Kind)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d triaged, %d need review\n", len(results)-failed, failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}
