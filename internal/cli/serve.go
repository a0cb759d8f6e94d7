package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/monitor-agent/docs"
	"github.com/johnquangdev/monitor-agent/internal/adapter/handler"
	"github.com/johnquangdev/monitor-agent/internal/adapter/repository"
	"github.com/johnquangdev/monitor-agent/internal/infrastructure/broadcast"
	"github.com/johnquangdev/monitor-agent/internal/infrastructure/database"
	"github.com/johnquangdev/monitor-agent/internal/infrastructure/storage"
	"github.com/johnquangdev/monitor-agent/internal/usecase/monitor"
	pkgai "github.com/johnquangdev/monitor-agent/pkg/ai"
	pkgvalidator "github.com/johnquangdev/monitor-agent/pkg/validator"
)

// NewServeCmd runs the HTTP API and the monitoring pipeline
func NewServeCmd(deps *Dependencies) *cobra.Command {
	var autostart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the monitoring pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), deps, autostart)
		},
	}

	cmd.Flags().BoolVar(&autostart, "autostart", false, "start monitoring as soon as the server is up")
	return cmd
}

func runServe(ctx context.Context, deps *Dependencies, autostart bool) error {
	cfg, log := deps.Config, deps.Logger
	if ctx == nil {
		ctx = context.Background()
	}

	log.Info("🔧 Initializing dependencies...")

	// Database
	log.Info("📦 Connecting to database...")
	db, err := database.NewDB(cfg, log)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	if err := database.Migrate(db, cfg.Database.Driver, log); err != nil {
		return err
	}
	transcriptRepo := repository.NewTranscriptRepository(db)

	// Redis is optional; without it there is no live feed
	var (
		broadcaster *broadcast.Broadcaster
		subscriber  *broadcast.Subscriber
	)
	log.Info("📦 Connecting to Redis...")
	redisClient, err := broadcast.NewRedisClient(cfg)
	if err != nil {
		log.Warn("⚠️  Redis unavailable, live feed disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		broadcaster = broadcast.NewBroadcaster(redisClient, cfg.Redis.Channel, log.Named("broadcast"))
		subscriber = broadcast.NewSubscriber(redisClient, cfg.Redis.Channel)
	}

	// Segment archive
	var archiver monitor.SegmentArchiver
	if cfg.Pipeline.ArchiveSegments {
		log.Info("📦 Connecting to object storage...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			return err
		}
		archiver = minioClient
	}

	// Pipeline
	log.Info("🤖 Initializing pipeline components...")
	locators, err := newLocatorCache(cfg, log)
	if err != nil {
		return err
	}
	stt, err := newTranscriber(cfg)
	if err != nil {
		return err
	}
	summarizer := pkgai.NewGroqClient(&cfg.Groq)

	watcher := monitor.NewWatcher(cfg.Pipeline.WorkDir, cfg.Pipeline.MinSegmentBytes, log.Named("watcher"))
	worker := monitor.NewWorker(stt, summarizer, archiver, workerOptions(cfg.Pipeline), log.Named("worker"))

	recent := monitor.NewRecentBuffer(cfg.Pipeline.RecentLimit)
	sinks := []monitor.Sink{monitor.NewStoreSink(transcriptRepo), recent}
	if broadcaster != nil {
		sinks = append(sinks, broadcaster)
	}

	controller := monitor.NewController(
		locators,
		newCapturer(cfg, log),
		watcher,
		worker,
		sinks,
		controllerOptions(cfg.Pipeline),
		log.Named("controller"),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Pipeline.WatchEvents {
		go func() {
			if err := watcher.WatchEvents(ctx); err != nil {
				log.Warn("⚠️  Filesystem events unavailable, relying on polling", zap.Error(err))
			}
		}()
	}

	// HTTP
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	var streamHandler *handler.Stream
	if subscriber != nil {
		streamHandler = handler.NewStreamHandler(subscriber, cfg.Server.AllowedOrigins, log.Named("ws"))
	}

	log.Info("🛣️  Setting up routes...")
	router := handler.NewRouter(
		cfg,
		handler.NewPipelineHandler(controller, log.Named("http")),
		handler.NewTranscriptsHandler(transcriptRepo, recent, log.Named("http")),
		streamHandler,
	)
	router.Setup(e)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	serverErr := make(chan error, 1)
	go func() {
		log.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if autostart {
		if err := controller.Start(ctx); err != nil {
			log.Error("❌ Pipeline failed to start", zap.Error(err))
		}
	}

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.StopTimeout+time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := controller.Shutdown(shutdownCtx); err != nil {
		log.Error("❌ Pipeline did not stop cleanly", zap.Error(err))
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("✅ Server stopped gracefully")
	return nil
}
