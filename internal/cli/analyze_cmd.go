package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/triage-service/internal/triage"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var asJSON bool
	var out string

	cmd := &cobra.Command{
		Use:   "analyze <conversation-file>",
		Short: "Triage a single conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read conversation: %w", err)
			}

			ctx := cmd.Context()
			snapshot, err := app.Corpus.Load(ctx)
			if err != nil {
				return fmt.Errorf("load corpus: %w", err)
			}

			result, triageErr := app.Triager.TriageOne(ctx, string(raw), snapshot.Tickets())
			if out != "" {
				var buf bytes.Buffer
				if err := writeJSON(&buf, result); err != nil {
					return err
				}
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write result: %w", err)
				}
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), formatAnalysis(result))
			}
			if triageErr != nil {
				return fmt.Errorf("triage failed (%s): %w", triage.KindOf(triageErr), triageErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().StringVar(&out, "out", "", "Also write the JSON result to this file")

	return cmd
}
