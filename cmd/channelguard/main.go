package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"channelguard/internal/config"
	"channelguard/internal/constants"
	"channelguard/internal/database"
	"channelguard/internal/errors"
	"channelguard/internal/models"
	"channelguard/internal/service"
	"channelguard/internal/tracing"
	"channelguard/pkg/telegram"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("channelguard %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	// Pick up a local .env before reading the environment.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting channelguard")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	tracingManager := tracing.NewManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	// The audit database is optional; without it decisions and bulk runs
	// simply go unrecorded.
	var audit service.AuditRecorder
	if cfg.Database.Path != "" {
		db, err := database.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open audit database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Warnf("Failed to close audit database: %v", err)
			}
		}()
		audit = db
	} else {
		logger.Info("Audit database disabled (no path configured)")
	}

	var bot *telegram.Client
	if cfg.Telegram.APIBaseURL != "" {
		bot = telegram.NewClientWithBaseURL(cfg.Telegram.BotToken, cfg.Telegram.APIBaseURL)
	} else {
		bot = telegram.NewClient(cfg.Telegram.BotToken)
	}

	errLogger := errors.WrapLogger(logger)
	approval := service.NewApprovalService(bot, service.NewPendingStore(), audit, errLogger)
	bulkAdd := service.NewBulkAddService(bot, audit, errLogger)
	moderation := service.NewModerationService(bot, errLogger)
	router := service.NewRouter(bot, approval, bulkAdd, moderation, errLogger)

	switch cfg.Telegram.Mode {
	case "webhook":
		return runWebhook(ctx, cfg, router, logger)
	default:
		return runPolling(ctx, cfg, bot, router, logger)
	}
}

func runPolling(ctx context.Context, cfg *models.Config, bot *telegram.Client, router *service.Router, logger *logrus.Logger) error {
	poller := service.NewUpdatePoller(bot, router, cfg.Retry, cfg.Telegram.PollTimeoutSec, logger)
	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start update poller: %w", err)
	}

	<-ctx.Done()
	poller.Stop()
	return nil
}

func runWebhook(ctx context.Context, cfg *models.Config, router *service.Router, logger *logrus.Logger) error {
	server := NewServer(cfg.Server.Port, router, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		constants.DefaultGracefulShutdownSec*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
