package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/raaihank/scandidate/internal/analysis"
	"github.com/raaihank/scandidate/internal/clock"
	"github.com/raaihank/scandidate/internal/config"
	"github.com/raaihank/scandidate/internal/identity"
	"github.com/raaihank/scandidate/internal/logger"
	"github.com/raaihank/scandidate/internal/privacy"
	"github.com/raaihank/scandidate/internal/security"
	"github.com/raaihank/scandidate/internal/server"
	"github.com/raaihank/scandidate/internal/session"
	"github.com/raaihank/scandidate/internal/store"
	"github.com/raaihank/scandidate/internal/websocket"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		envFile     = flag.String("env-file", ".env", "Path to .env file (ignored if missing)")
		showVersion = flag.Bool("version", false, "Show version information")
		healthCheck = flag.String("health-check", "", "Check the health endpoint at this address (e.g. localhost:8080) and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Scandidate %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if *healthCheck != "" {
		performHealthCheck(*healthCheck)
		return
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, watcher, err := config.NewWatcher(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Scandidate",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)

	if err := run(cfg, watcher, log); err != nil {
		log.Error("Scandidate stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, watcher *config.Watcher, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	detector, err := privacy.New(cfg.Privacy, log.WithComponent("privacy").Logger)
	if err != nil {
		return fmt.Errorf("failed to create privacy detector: %w", err)
	}

	watcher.Watch(func(newCfg *config.Config) {
		if err := detector.Configure(newCfg.Privacy.Detectors); err != nil {
			log.Warn("Ignoring detector configuration", zap.Error(err))
			return
		}
		log.Info("Detector configuration reloaded", zap.Strings("detectors", detector.EnabledRules()))
	}, func(err error) {
		log.Warn("Configuration reload rejected", zap.Error(err))
	})

	kv, err := store.Open(cfg.Store, log.WithComponent("store").Logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	defer kv.Close()

	clientIPs, err := security.NewIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}

	hub := websocket.NewHub(websocket.HubConfig{
		BroadcastCountdown:   cfg.WebSocket.Events.BroadcastCountdown,
		BroadcastPurge:       cfg.WebSocket.Events.BroadcastPurge,
		BroadcastDetections:  cfg.WebSocket.Events.BroadcastDetections,
		BroadcastConnections: cfg.WebSocket.Events.BroadcastConnections,
		AllowedOrigins:       cfg.WebSocket.AllowedOrigins,
		IPResolver:           clientIPs,
	}, log.WithComponent("websocket").Logger)
	go hub.Run(ctx)

	sessions := session.NewManager(session.ManagerOptions{
		Redactor:  detector,
		Store:     kv,
		KeyPrefix: cfg.Store.KeyPrefix,
		Clock:     clock.Real(),
		Retention: cfg.Retention,
		Events:    hub.SessionEvents(),
		Logger:    log.WithComponent("session").Logger,
	})
	defer sessions.Close()

	restored, err := sessions.Restore(ctx)
	if err != nil {
		log.Warn("Failed to restore sessions", zap.Error(err))
	} else if restored > 0 {
		log.Info("Sessions restored", zap.Int("count", restored))
	}
	go sessions.Run(ctx)

	analyzer, err := analysis.New(cfg.Analysis, log.WithComponent("analysis").Logger)
	if err != nil {
		return fmt.Errorf("failed to create analysis provider: %w", err)
	}
	if cfg.Analysis.RedactInput {
		analyzer = analysis.WithRedaction(analyzer, detector)
	}

	var repo identity.Repository
	if cfg.Identity.DatabaseURL != "" {
		pg, err := identity.OpenPostgres(cfg.Identity, log.WithComponent("identity").Logger)
		if err != nil {
			return fmt.Errorf("failed to open identity database: %w", err)
		}
		defer pg.Close()
		repo = pg
	} else {
		log.Warn("No identity database configured, accounts are kept in memory")
		repo = identity.NewMemoryRepository()
	}

	ids, err := identity.NewService(repo, cfg.Identity, log.WithComponent("identity").Logger)
	if err != nil {
		return fmt.Errorf("failed to create identity service: %w", err)
	}

	srv := server.New(server.Options{
		Config:   cfg,
		Logger:   log,
		Detector: detector,
		Sessions: sessions,
		Analyzer: analyzer,
		Identity: ids,
		Hub:      hub,
		ClientIP: clientIPs,
	})

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.Start(ctx)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")

		// Give outstanding requests 30 seconds to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server gracefully: %w", err)
		}
		log.Info("Server shutdown complete")
	}
	return nil
}

// performHealthCheck performs a health check against a running server
func performHealthCheck(addr string) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get("http://" + addr + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
}
