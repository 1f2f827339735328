package cli

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/corpus"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/worker"
)

// App holds the collaborators used by CLI commands. Historical is nil when no
// database is configured.
type App struct {
	Triager    *worker.BatchTriager
	Corpus     corpus.Source
	CSVPath    string
	Historical repository.HistoricalTicketRepository
	Tokens     *auth.TokenManager
}

// NewRootCmd creates the top-level "triagectl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "triagectl",
		Short:         "Offline triage of support conversations and corpus tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAnalyzeCmd(app),
		newBatchCmd(app),
		newCorpusCmd(app),
		newTokenCmd(app),
	)

	return root
}
