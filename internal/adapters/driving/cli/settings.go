package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/playground/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure embedding services, the point store, the chunker and
the projection.

Settings are stored in ~/.playground/config.toml. API keys may also come from
OPENAI_API_KEY, COHERE_API_KEY and GOOGLE_API_KEY.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [service]",
	Short: "Store the API key of an embedding service",
	Long:  `Prompt for an API key without echo and store it in the config file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSetKey,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider [service]",
	Short: "Set the model or endpoint of an embedding service",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsProvider,
}

var settingsPointStoreCmd = &cobra.Command{
	Use:   "pointstore [backend]",
	Short: "Select the point store backend",
	Long: `Select where projected points are stored.

Available backends:
  sqlite - the local database (default)
  mongo  - a MongoDB database (requires --mongo-uri or PLAYGROUND_MONGO_URI)
  memory - kept for the lifetime of the process

Changing the backend takes effect on the next start.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsPointStore,
}

var settingsChunkerCmd = &cobra.Command{
	Use:   "chunker",
	Short: "Set chunk size and overlap",
	Long: `Set chunk size and overlap, in characters.

Changing the chunker does not re-chunk documents that are already embedded.`,
	Args: cobra.NoArgs,
	RunE: runSettingsChunker,
}

var settingsProjectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Configure query projection",
	Args:  cobra.NoArgs,
	RunE:  runSettingsProjection,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate [service]",
	Short: "Check that an embedding service is reachable",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsValidate,
}

var (
	providerModel   string
	providerBaseURL string
	mongoURI        string
	mongoDatabase   string
	chunkSize       int
	chunkOverlap    int
	refitPerQuery   bool
	settingsTopK    int
)

// passwordReader reads a secret from the terminal. Tests replace it.
var passwordReader = readPassword

func init() {
	settingsProviderCmd.Flags().StringVarP(&providerModel, "model", "m", "", "Embedding model")
	settingsProviderCmd.Flags().StringVar(&providerBaseURL, "base-url", "", "API endpoint")
	settingsPointStoreCmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI")
	settingsPointStoreCmd.Flags().StringVar(&mongoDatabase, "mongo-db", "", "MongoDB database name")
	settingsChunkerCmd.Flags().IntVar(&chunkSize, "size", 0, "Maximum chunk length")
	settingsChunkerCmd.Flags().IntVar(&chunkOverlap, "overlap", -1, "Characters shared by adjacent chunks")
	settingsProjectionCmd.Flags().BoolVar(&refitPerQuery, "refit-per-query", false,
		"Fit a fresh projection for every query")
	settingsProjectionCmd.Flags().IntVar(&settingsTopK, "top-k", 0, "Number of nearest chunks a query returns")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsPointStoreCmd)
	settingsCmd.AddCommand(settingsChunkerCmd)
	settingsCmd.AddCommand(settingsProjectionCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", settings.DataDir)
	cmd.Printf("  Point store: %s\n", settings.PointStore.Backend)
	if settings.PointStore.Backend == domain.PointStoreMongo {
		cmd.Printf("  Mongo URI: %s\n", maskURI(settings.PointStore.MongoURI))
		cmd.Printf("  Mongo database: %s\n", settings.PointStore.MongoDatabase)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	for _, svc := range domain.AllServices() {
		p := settings.Provider(svc)
		cmd.Printf("  %s\n", svc.Description())
		cmd.Printf("    Model: %s\n", svc.ResolveModel(p.Model))
		if p.BaseURL != "" {
			cmd.Printf("    Base URL: %s\n", p.BaseURL)
		}
		if svc.RequiresAPIKey() {
			if p.APIKey != "" {
				cmd.Printf("    API Key: %s\n", maskAPIKey(p.APIKey))
			} else {
				cmd.Printf("    API Key: (not set)\n")
			}
		}
	}
	cmd.Printf("  Timeout: %s\n", settings.ProviderTimeout)
	cmd.Printf("  Requests per second: %g\n", settings.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Chunker]")
	cmd.Printf("  Chunk size: %d\n", settings.Chunker.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.Chunker.ChunkOverlap)
	cmd.Println()

	cmd.Println("[Query]")
	cmd.Printf("  Top K: %d\n", settings.TopK)
	cmd.Printf("  Refit per query: %t\n", settings.Projection.RefitPerQuery)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	svc, err := domain.ParseService(args[0])
	if err != nil {
		return err
	}
	if !svc.RequiresAPIKey() {
		return fmt.Errorf("%w: %s does not use an API key", domain.ErrInvalidInput, svc.Description())
	}

	cmd.Printf("API key for %s: ", svc.Description())
	key := strings.TrimSpace(passwordReader(cmd.InOrStdin()))
	cmd.Println()
	if key == "" {
		return fmt.Errorf("%w: empty API key", domain.ErrInvalidInput)
	}

	if err := settingsService.SetProvider(domain.ProviderSettings{Service: svc, APIKey: key}); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	cmd.Printf("Saved API key for %s (%s)\n", svc.Description(), maskAPIKey(key))
	return nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	svc, err := domain.ParseService(args[0])
	if err != nil {
		return err
	}
	if providerModel == "" && providerBaseURL == "" {
		return fmt.Errorf("%w: set --model or --base-url", domain.ErrInvalidInput)
	}

	err = settingsService.SetProvider(domain.ProviderSettings{
		Service: svc,
		Model:   providerModel,
		BaseURL: providerBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to save provider settings: %w", err)
	}
	cmd.Printf("Updated %s settings\n", svc.Description())
	return nil
}

func runSettingsPointStore(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	backend := domain.PointStoreBackend(strings.ToLower(args[0]))
	if !backend.IsValid() {
		return fmt.Errorf("%w: unknown point store backend %q", domain.ErrInvalidInput, args[0])
	}

	err := settingsService.SetPointStore(domain.PointStoreSettings{
		Backend:       backend,
		MongoURI:      mongoURI,
		MongoDatabase: mongoDatabase,
	})
	if err != nil {
		return fmt.Errorf("failed to set point store: %w", err)
	}
	cmd.Printf("Point store set to %s\n", backend)
	return nil
}

func runSettingsChunker(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if chunkSize > 0 {
		settings.Chunker.ChunkSize = chunkSize
	}
	if chunkOverlap >= 0 {
		settings.Chunker.ChunkOverlap = chunkOverlap
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save chunker settings: %w", err)
	}
	cmd.Printf("Chunk size %d, overlap %d\n", settings.Chunker.ChunkSize, settings.Chunker.ChunkOverlap)
	return nil
}

func runSettingsProjection(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if cmd.Flags().Changed("refit-per-query") {
		settings.Projection.RefitPerQuery = refitPerQuery
	}
	if settingsTopK > 0 {
		settings.TopK = settingsTopK
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save projection settings: %w", err)
	}
	cmd.Printf("Refit per query: %t, top K: %d\n", settings.Projection.RefitPerQuery, settings.TopK)
	return nil
}

func runSettingsValidate(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	svc, err := domain.ParseService(args[0])
	if err != nil {
		return err
	}
	if err := settingsService.ValidateProvider(cmd.Context(), svc); err != nil {
		return fmt.Errorf("%s is not usable: %w", svc.Description(), err)
	}
	cmd.Printf("%s is reachable\n", svc.Description())
	return nil
}

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskURI hides the password of a connection URI.
func maskURI(uri string) string {
	if uri == "" {
		return "(not set)"
	}
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return uri
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return uri
	}
	return scheme + "://" + user + ":****@" + host
}
