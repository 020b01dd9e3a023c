package main

import (
	"context"
	"fmt"
	"os"
	"time"

	app_service "wallet-graph-explorer/internal/application/service"
	"wallet-graph-explorer/internal/domain/repository"
	domain_service "wallet-graph-explorer/internal/domain/service"
	"wallet-graph-explorer/internal/infrastructure/blockchain"
	"wallet-graph-explorer/internal/infrastructure/config"
	"wallet-graph-explorer/internal/infrastructure/database"
	"wallet-graph-explorer/internal/infrastructure/export"
	"wallet-graph-explorer/internal/infrastructure/logger"
	"wallet-graph-explorer/internal/infrastructure/messaging"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Create FX application
	app := fx.New(
		// Provide dependencies
		fx.Supply(cfg),
		fx.Supply(log),
		fx.Supply(&cfg.SQLite),
		fx.Supply(&cfg.Neo4J),
		fx.Supply(&cfg.NATS),

		// Infrastructure providers
		fx.Provide(
			database.NewSQLiteClient,
			database.NewNeo4JClient,
			messaging.NewNATSPublisher,
			newTransactionSource,
		),

		// Application providers
		fx.Provide(
			app_service.NewGraphBuilderService,
		),

		// Lifecycle hooks
		fx.Invoke(runExplorer),

		// Configure logging
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	// Start the application; the run hook shuts it down when done
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for completion or an OS signal
	sig := <-app.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application gracefully", zap.Error(err))
		os.Exit(1)
	}

	os.Exit(sig.ExitCode)
}

// newTransactionSource selects the backend configured in source.backend
func newTransactionSource(
	cfg *config.Config,
	sqliteClient *database.SQLiteClient,
	neo4jClient *database.Neo4JClient,
	log *logger.Logger,
) (repository.TransactionSource, error) {
	switch cfg.Source.Backend {
	case config.BackendSQLite:
		return database.NewSQLiteTransactionSource(sqliteClient, &cfg.Source, log), nil
	case config.BackendAPI:
		return blockchain.NewChainAPISource(&cfg.API, log), nil
	case config.BackendNeo4J:
		return database.NewNeo4JTransactionSource(neo4jClient, &cfg.Neo4J, &cfg.Source, log), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
}

// runExplorer connects the selected backend, runs the expansion once, hands
// the finished graph to the exporters and shuts the application down.
func runExplorer(
	lifecycle fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	source repository.TransactionSource,
	builder domain_service.GraphBuilder,
	publisher *messaging.NATSPublisher,
	sqliteClient *database.SQLiteClient,
	neo4jClient *database.Neo4JClient,
	log *logger.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			switch cfg.Source.Backend {
			case config.BackendSQLite:
				if err := sqliteClient.Connect(ctx); err != nil {
					return fmt.Errorf("failed to connect SQLite backend: %w", err)
				}
			case config.BackendNeo4J:
				if err := neo4jClient.Connect(ctx); err != nil {
					return fmt.Errorf("failed to connect Neo4J backend: %w", err)
				}
			}

			if err := publisher.Connect(ctx); err != nil {
				// A dead summary feed never blocks a run.
				log.Warn("NATS unavailable, run summary will not be published", zap.Error(err))
			}

			go runOnce(cfg, builder, publisher, log, shutdowner)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			publisher.Disconnect()
			return source.Close(ctx)
		},
	})
}

// runOnce executes the build and export pipeline
func runOnce(
	cfg *config.Config,
	builder domain_service.GraphBuilder,
	publisher *messaging.NATSPublisher,
	log *logger.Logger,
	shutdowner fx.Shutdowner,
) {
	graph, err := builder.Build(context.Background(), cfg.Explore.Target, cfg.Explore.Depth)
	if err != nil {
		log.Error("Graph expansion failed", zap.Error(err))
		shutdowner.Shutdown(fx.ExitCode(1))
		return
	}

	failed := false
	for name, exporter := range selectExporters(cfg, log) {
		if err := exporter.Export(graph); err != nil {
			log.Error("Export failed", zap.String("exporter", name), zap.Error(err))
			failed = true
		}
	}

	if err := publisher.PublishRunSummary(graph, cfg.Explore.Target, cfg.Explore.Depth); err != nil {
		log.Warn("Failed to publish run summary", zap.Error(err))
	}

	if failed {
		shutdowner.Shutdown(fx.ExitCode(1))
		return
	}
	shutdowner.Shutdown()
}

// selectExporters assembles the enabled export destinations. Interactive HTML
// is unusable for deep graphs, so it is skipped at depth >= 3 unless forced.
func selectExporters(cfg *config.Config, log *logger.Logger) map[string]domain_service.GraphExporter {
	exporters := make(map[string]domain_service.GraphExporter)

	if cfg.Export.GraphML.Enabled {
		exporters["graphml"] = export.NewGraphMLExporter(cfg.Export.GraphML.Path, log)
	}
	if cfg.Export.HTML.Enabled {
		if cfg.Explore.Depth < 3 || cfg.Explore.ForceHTML {
			exporters["html"] = export.NewHTMLExporter(cfg.Export.HTML.Path, log)
		} else {
			log.Info("Skipping HTML export at this depth", zap.Int("depth", cfg.Explore.Depth))
		}
	}
	if cfg.Export.CSV.Enabled {
		exporters["csv"] = export.NewCSVExporter(cfg.Export.CSV.Path, log)
	}
	if cfg.Export.DOT.Enabled {
		exporters["dot"] = export.NewDOTExporter(cfg.Export.DOT.Path, log)
	}

	return exporters
}
