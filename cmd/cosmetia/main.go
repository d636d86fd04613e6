// Command cosmetia runs the product catalog service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cosmetia/cosmetia/pkg/api"
	"github.com/cosmetia/cosmetia/pkg/auth"
	"github.com/cosmetia/cosmetia/pkg/catalog/criteria"
	"github.com/cosmetia/cosmetia/pkg/catalog/rating"
	"github.com/cosmetia/cosmetia/pkg/catalog/search"
	"github.com/cosmetia/cosmetia/pkg/config"
	"github.com/cosmetia/cosmetia/pkg/health"
	"github.com/cosmetia/cosmetia/pkg/observability/logger"
	"github.com/cosmetia/cosmetia/pkg/observability/tracing"
	"github.com/cosmetia/cosmetia/pkg/refdata"
	mongostore "github.com/cosmetia/cosmetia/pkg/store/mongodb"
	redisstore "github.com/cosmetia/cosmetia/pkg/store/redis"
	"github.com/cosmetia/cosmetia/pkg/version"
)

const (
	serviceName     = "cosmetia"
	envPrefix       = "COSMETIA"
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Product catalog service with criteria-driven search and rating aggregates",
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config-file", "c", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewViperLoader(configFile, envPrefix).Load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build version metadata",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Current(serviceName))
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)
	return rootCmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log, err := logger.NewZapLogger(logger.Config{
		Level:  logger.LogLevel(cfg.Observability.LogLevel),
		Format: logger.LogFormat(cfg.Observability.LogFormat),
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting service", "version", version.Current(serviceName).String(), "environment", cfg.Service.Environment)

	tracerProvider, err := tracing.NewTracerProvider(ctx, tracing.TracerConfig{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: version.AppVersion,
		Environment:    cfg.Service.Environment,
		Endpoint:       cfg.Observability.Tracing.Endpoint,
		SampleRate:     cfg.Observability.Tracing.SampleRate,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	mongoAdapter, err := mongostore.NewAdapter(mongostore.Config{
		URL:              cfg.Database.URL,
		Database:         cfg.Database.Database,
		ConnectTimeout:   cfg.Database.ConnectTimeout,
		OperationTimeout: cfg.Database.OperationTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer mongoAdapter.Close()

	healthRegistry := health.NewRegistry()
	healthRegistry.Register("mongodb", mongoAdapter, 5*time.Second)

	var resolver refdata.Resolver
	resolver, err = refdata.NewMongoResolver(mongoAdapter)
	if err != nil {
		return fmt.Errorf("failed to create reference resolver: %w", err)
	}

	var redisAdapter *redisstore.Adapter
	if cfg.Cache.Enabled {
		redisAdapter, err = redisstore.NewAdapter(redisstore.Config{
			URL:              cfg.Cache.URL,
			MaxConns:         cfg.Cache.MaxConns,
			OperationTimeout: cfg.Cache.OperationTimeout,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisAdapter.Close()

		resolver, err = refdata.NewCachedResolver(resolver, redisAdapter, cfg.Cache.TTL, log)
		if err != nil {
			return fmt.Errorf("failed to create cached resolver: %w", err)
		}
		healthRegistry.Register("redis", redisAdapter, 5*time.Second)
	}

	compiler, err := criteria.NewCompiler(resolver)
	if err != nil {
		return fmt.Errorf("failed to create criteria compiler: %w", err)
	}

	scoreTemplate, err := search.LoadScoreTemplate(cfg.Search.ScoreTemplateFile)
	if err != nil {
		return fmt.Errorf("failed to load score template: %w", err)
	}
	builder, err := search.NewBuilder(scoreTemplate)
	if err != nil {
		return fmt.Errorf("failed to create pipeline builder: %w", err)
	}
	engine, err := search.NewEngine(mongoAdapter, builder, log, tracerProvider.Tracer("catalog.search"))
	if err != nil {
		return fmt.Errorf("failed to create search engine: %w", err)
	}

	ratingExecutor, err := rating.NewMongoExecutor(mongoAdapter)
	if err != nil {
		return fmt.Errorf("failed to create rating executor: %w", err)
	}
	maintainer, err := rating.NewMaintainer(ratingExecutor, log)
	if err != nil {
		return fmt.Errorf("failed to create rating maintainer: %w", err)
	}

	validator, err := auth.NewHMACValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, log)
	if err != nil {
		return fmt.Errorf("failed to create token validator: %w", err)
	}

	products, err := api.NewProductHandler(compiler, engine, maintainer, mongoAdapter, cfg.Search, log)
	if err != nil {
		return fmt.Errorf("failed to create product handler: %w", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Products:  products,
		System:    api.NewSystemHandler(cfg.Service.Name, healthRegistry),
		Validator: validator,
		RateLimit: cfg.RateLimit,
		Logger:    log,
	})
	server := api.NewServer(cfg.HTTP, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-signalCtx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx := context.Background()
	if err := server.Shutdown(shutdownCtx, shutdownTimeout); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "error", err)
	}

	log.Info("service stopped")
	return nil
}
