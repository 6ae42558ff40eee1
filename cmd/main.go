package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"logsearch-backend/config"
	_ "logsearch-backend/docs"
	"logsearch-backend/internal/controller"
	"logsearch-backend/internal/dto"
	"logsearch-backend/internal/kafka"
	"logsearch-backend/internal/logging"
	"logsearch-backend/internal/objectstore"
	"logsearch-backend/internal/parser"
	"logsearch-backend/internal/repository"
	"logsearch-backend/internal/scheduler"
	"logsearch-backend/internal/service"
	"logsearch-backend/internal/util"
)

// @title           Log Search API
// @version         1.0
// @description     Searches newline-delimited structured logs stored as objects in an S3 compatible bucket.

// @host      localhost:5005
// @BasePath  /
// @schemes   http https

// @tag.name         logs
// @tag.description  Log search and sampling

// @tag.name         health
// @tag.description  Object store health

func main() {
	rootCmd := &cobra.Command{
		Use:           "logsearch",
		Short:         "Search structured logs stored in an object store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd(), newSearchCmd(), newSampleCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	closer := logging.Setup(cfg.Logging)
	return cfg, func() { _ = closer.Close() }, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the store probe and, when enabled, the Kafka archiver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLogs, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLogs()

			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Server.Port = port
			}
			if archive, _ := cmd.Flags().GetBool("archive"); archive {
				cfg.Archiver.Enabled = true
			}
			return serve(cfg)
		},
	}
	cmd.Flags().String("port", "", "HTTP port (overrides SERVER_PORT)")
	cmd.Flags().Bool("archive", false, "consume log events from Kafka into the bucket (overrides ARCHIVER_ENABLED)")
	return cmd
}

func serve(cfg *config.Config) error {
	var wg sync.WaitGroup

	options := []fx.Option{
		fx.Supply(cfg),
		// Infrastructure Dependencies
		fx.Provide(
			objectstore.NewStore,
			parser.NewJSONLineParser,
			repository.NewConfiguredLogObjectRepository,
			NewLogLoader,
			NewGinEngine,
		),
		fx.Provide(
			service.NewLogQueryService,
			service.NewHealthService,
			controller.NewLogController,
			controller.NewHealthController,
		),
		fx.Invoke(RegisterAPIRoutes, RegisterScheduler),
	}
	if cfg.Archiver.Enabled {
		options = append(options,
			fx.Provide(
				kafka.NewKafkaMessageConsumer,
				service.NewLogArchiverService,
			),
			fx.Invoke(func(lc fx.Lifecycle, archiver service.LogArchiverService) {
				startLogArchiver(lc, &wg, archiver)
			}),
		)
	}
	app := fx.New(options...)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}

	log.Info().Msg("Waiting for background goroutines to finish...")
	wg.Wait()
	log.Info().Msg("All background processes finished. Exiting.")
	return nil
}

func newSearchCmd() *cobra.Command {
	var (
		query, level, start, end, where string
		limit                           int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one search against the bucket and print matching records as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLogs, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLogs()

			req := dto.LogSearchRequest{Query: query, Where: where, Limit: limit}
			if level != "" {
				req.Level = &level
			}
			if start != "" {
				t, err := util.ParseTimeFlexible(start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				req.StartTime = &t
			}
			if end != "" {
				t, err := util.ParseTimeFlexible(end)
				if err != nil {
					return fmt.Errorf("--end: %w", err)
				}
				req.EndTime = &t
			}

			svc, err := newQueryService(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			result, err := svc.SearchLogs(ctx, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, record := range result.Records {
				fmt.Fprintln(out, record.Serialized())
			}
			for _, d := range result.Diagnostics {
				log.Debug().Str("object", d.Object).Int("line", d.Line).Str("kind", d.KindName()).Err(d.Err).Msg("Skipped")
			}
			log.Info().
				Int("results", len(result.Records)).
				Int("objects_scanned", result.ObjectsScanned).
				Int("skipped", len(result.Diagnostics)).
				Msg("Search complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "q", "", "case-insensitive substring")
	cmd.Flags().StringVar(&level, "level", "", "exact level")
	cmd.Flags().StringVar(&start, "start", "", "inclusive lower bound, ISO 8601 or epoch ms")
	cmd.Flags().StringVar(&end, "end", "", "inclusive upper bound, ISO 8601 or epoch ms")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records (0 uses SEARCH_DEFAULT_LIMIT)")
	cmd.Flags().StringVar(&where, "where", "", "boolean expression over timestamp, level, event and data")
	return cmd
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print the first lines of the most recent log object",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLogs, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLogs()

			svc, err := newQueryService(cfg)
			if err != nil {
				return err
			}
			sample, err := svc.Sample(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", sample.Filename)
			for _, line := range sample.SampleLines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newQueryService(cfg *config.Config) (service.LogQueryService, error) {
	store, err := objectstore.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	objects, err := repository.NewConfiguredLogObjectRepository(cfg, store)
	if err != nil {
		return nil, err
	}
	return service.NewLogQueryService(cfg, objects, NewLogLoader(cfg, store, parser.NewJSONLineParser())), nil
}

// --- Factory Functions ---

func NewLogLoader(cfg *config.Config, store objectstore.Store, p parser.LogParser) repository.LogLoader {
	return repository.NewLogLoader(store, cfg.ObjectStore.Bucket, p)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowOrigins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	logController *controller.LogController,
	healthController *controller.HealthController,
) {
	controller.RegisterLogRoutes(router, logController)
	controller.RegisterHealthRoutes(router, healthController)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// --- Invoker Functions ---

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, health service.HealthService) error {
	_, err := scheduler.NewScheduler(lc, cfg, health)
	return err
}

// startLogArchiver runs the archiver loop in a goroutine managed by the fx lifecycle
func startLogArchiver(lc fx.Lifecycle, wg *sync.WaitGroup, archiver service.LogArchiverService) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info().Msg("Starting log archiver goroutine")
			wg.Add(1)
			go archiver.Run(ctx, wg)
			return nil
		},
		OnStop: func(context.Context) error {
			log.Info().Msg("Signaling log archiver goroutine to stop...")
			cancel()
			return nil
		},
	})
}
