// Package cli provides the cobra command tree for the playground binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
	"github.com/custodia-labs/playground/internal/logger"
)

// Exit codes returned by ExitCode.
const (
	ExitOK          = 0
	ExitServerError = 1
	ExitClientError = 2
)

var version = "dev"

var (
	documentService   driving.DocumentService
	playgroundService driving.PlaygroundService
	queryService      driving.QueryService
	modelCatalog      driving.ModelCatalog
	settingsService   driving.SettingsService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "playground",
	Short: "Explore document embeddings on a 2-D map",
	Long: `Playground embeds your documents with a choice of embedding services and
projects every chunk onto a plane, so that similar passages sit close together.

Upload documents, group them into playgrounds, then run free-text queries to
see which chunks match and where the query lands on the map.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to stderr")
}

// Services holds the driving ports injected into the commands.
type Services struct {
	Documents   driving.DocumentService
	Playgrounds driving.PlaygroundService
	Queries     driving.QueryService
	Models      driving.ModelCatalog
	Settings    driving.SettingsService
}

// SetServices injects the services used by every command.
func SetServices(s Services) {
	documentService = s.Documents
	playgroundService = s.Playgrounds
	queryService = s.Queries
	modelCatalog = s.Models
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps a command error to a process exit code.
// Caller mistakes exit with ExitClientError, everything else with ExitServerError.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case domain.IsClientError(err):
		return ExitClientError
	default:
		return ExitServerError
	}
}
