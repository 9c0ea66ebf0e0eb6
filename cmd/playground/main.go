// Command playground embeds documents into playgrounds and maps their chunks
// onto a 2-D plane.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/playground/internal/adapters/driven/ai"
	"github.com/custodia-labs/playground/internal/adapters/driven/config/file"
	"github.com/custodia-labs/playground/internal/adapters/driven/embedding/router"
	"github.com/custodia-labs/playground/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/playground/internal/adapters/driven/storage/mongodb"
	"github.com/custodia-labs/playground/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/playground/internal/adapters/driving/cli"
	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
	"github.com/custodia-labs/playground/internal/core/services"
	"github.com/custodia-labs/playground/internal/logger"
	"github.com/custodia-labs/playground/internal/normalisers"
	"github.com/custodia-labs/playground/internal/postprocessors"
	"github.com/custodia-labs/playground/internal/projection"
)

// version is set at build time via -ldflags.
var version = "dev"

const mongoConnectTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fail(err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return fail(fmt.Errorf("loading settings: %w", err))
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fail(fmt.Errorf("opening database: %w", err))
	}
	defer store.Close()

	files, err := file.NewFileStore(filepath.Join(filepath.Dir(store.Path()), "files"))
	if err != nil {
		return fail(err)
	}

	points, err := openPointStore(store, settings.PointStore)
	if err != nil {
		return fail(err)
	}
	defer points.Close()

	embedder, err := router.New(
		ai.CreateEmbeddingService,
		providerSource(settingsService),
		router.DefaultCacheSize,
		router.WithTimeout(settings.ProviderTimeout),
		router.WithRequestsPerSecond(settings.RequestsPerSecond),
	)
	if err != nil {
		return fail(fmt.Errorf("creating embedding router: %w", err))
	}
	defer embedder.Close()

	pipeline, err := postprocessors.NewChunkerPipeline(settings.Chunker)
	if err != nil {
		return fail(fmt.Errorf("configuring chunker: %w", err))
	}
	registry := normalisers.NewDefaultRegistry()

	stores := services.Stores{
		Documents:   store.DocumentStore(),
		Playgrounds: store.PlaygroundStore(),
		Embedded:    store.EmbeddedDocumentStore(),
		Queries:     store.QueryStore(),
		Transforms:  store.TransformStore(),
		Vectors:     store.VectorStore(),
		Points:      points,
		Files:       files,
	}

	locks := services.NewKeyedMutex()
	extractor := services.NewTextExtractor(stores.Documents, stores.Files, registry, pipeline)
	cache := services.NewEmbeddingCache(stores.Embedded, stores.Vectors, extractor, embedder, locks)
	builder := services.NewCollectionBuilder(stores.Vectors, cache, locks)
	pointSync := services.NewPointSync(
		stores.Points,
		stores.Transforms,
		builder,
		projection.New(),
		locks,
		services.WithRefitPerQuery(settings.Projection.RefitPerQuery),
	)

	cli.SetServices(cli.Services{
		Documents:   services.NewDocumentService(stores, registry, locks),
		Playgrounds: services.NewPlaygroundService(stores, pointSync, locks),
		Queries: services.NewQueryPipeline(
			stores.Playgrounds,
			stores.Queries,
			stores.Vectors,
			embedder,
			builder,
			pointSync,
			settings.TopK,
		),
		Models:   services.NewModelCatalog(settingsService),
		Settings: settingsService,
	})
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

// openPointStore returns the point store selected in settings.
func openPointStore(store *sqlite.Store, cfg domain.PointStoreSettings) (driven.PointStore, error) {
	switch cfg.Backend {
	case domain.PointStoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
		defer cancel()
		points, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo point store: %w", err)
		}
		logger.Debug("point store: mongo database %q", cfg.MongoDatabase)
		return points, nil
	case domain.PointStoreMemory:
		logger.Debug("point store: memory")
		return memory.NewPointStore(), nil
	default:
		return store.PointStore(), nil
	}
}

// providerSource reads provider settings on every client build so that keys
// set during the process are picked up.
func providerSource(settings *services.SettingsService) router.ProviderSource {
	return func(svc domain.Service) domain.ProviderSettings {
		current, err := settings.Get()
		if err != nil {
			logger.Warn("reading settings for %s: %v", svc, err)
			return domain.ProviderSettings{Service: svc}
		}
		return current.Provider(svc)
	}
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return cli.ExitCode(err)
}
