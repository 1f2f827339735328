package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/triage-service/internal/corpus"
)

func newCorpusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect and import the historical ticket corpus",
	}
	cmd.AddCommand(newCorpusInspectCmd(app), newCorpusImportCmd(app))
	return cmd
}

func newCorpusInspectCmd(app *App) *cobra.Command {
	var path string
	var rows int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show how a CSV export maps onto the corpus schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = app.CSVPath
			}
			loaded, report, err := corpus.NewCSVSource(path).LoadWithReport(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"report": report,
					"stats":  loaded.Stats(),
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Columns: %s\n", strings.Join(report.Headers, ", "))
			if len(report.MissingColumns) > 0 {
				fmt.Fprintf(w, "Defaults applied for: %s\n", strings.Join(report.MissingColumns, ", "))
			}
			fmt.Fprintf(w, "Rows: %d (skipped %d)\n", report.Rows, report.SkippedRows)
			fmt.Fprint(w, formatStats(loaded.Stats()))

			for i, ticket := range loaded.Tickets() {
				if i >= rows {
					break
				}
				fmt.Fprintf(w, "%3d  %-8s %-8s %s\n", i, ticket.Priority, ticket.Sentiment, ticket.Issue)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "CSV file (defaults to CORPUS_CSV_PATH)")
	cmd.Flags().IntVar(&rows, "rows", 5, "Number of rows to preview")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func newCorpusImportCmd(app *App) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the historical_tickets table with a CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Historical == nil {
				return errors.New("corpus import needs POSTGRES_DSN")
			}
			if path == "" {
				path = app.CSVPath
			}
			loaded, err := corpus.NewCSVSource(path).Load(cmd.Context())
			if err != nil {
				return err
			}
			n, err := app.Historical.ReplaceAll(cmd.Context(), loaded.Tickets())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d historical tickets from %s\n", n, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "CSV file (defaults to CORPUS_CSV_PATH)")

	return cmd
}
