package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ffbot/internal/backend"
	"ffbot/internal/config"
	"ffbot/internal/handler"
	"ffbot/internal/logger"
	"ffbot/internal/middleware"
	"ffbot/internal/ops"
	"ffbot/internal/repository"
	"ffbot/internal/repository/memory"
	"ffbot/internal/repository/postgres"
	"ffbot/internal/service"
	"ffbot/internal/view"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting family finance bot",
		zap.String("backend", cfg.Backend.URL),
		zap.String("state_storage", cfg.StateStorage),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dialog state storage
	var (
		sessions repository.SessionRepository
		checks   = map[string]ops.Check{}
	)
	switch cfg.StateStorage {
	case config.StoragePostgres:
		db, err := connectDatabase(cfg.DSN(), log)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		log.Info("Database connection established")

		if err := runMigrations(db, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}

		repo := postgres.NewSessionRepo(db)
		sessions = repo
		checks["db"] = db.PingContext
		go runCleanupJob(ctx, repo, cfg.Database.SessionRetentionDays, log)
	default:
		sessions = memory.NewSessionRepo()
	}

	// Backend gateway and services
	client := backend.NewClient(backend.Options{
		BaseURL:    cfg.Backend.URL,
		Token:      cfg.Backend.Token,
		Timeout:    cfg.Backend.RequestTimeout,
		IDCacheTTL: cfg.Backend.IDCacheTTL,
	}, log)

	authService := service.NewAuthService(client, log)
	services := handler.Services{
		Auth:         authService,
		Groups:       service.NewGroupService(client, cfg.Display.MaxGroupNameLen, log),
		Transactions: service.NewTransactionService(client, log),
		Spaces:       service.NewSpaceService(client, log),
		Periods:      service.NewPeriodService(client),
	}

	// Initialize Telegram bot. Updates are dispatched synchronously and
	// fanned out to per-user queues by middleware.Serialize.
	bot, err := tele.NewBot(tele.Settings{
		Token:       cfg.BotToken,
		Poller:      &tele.LongPoller{Timeout: 10 * time.Second},
		ParseMode:   tele.ModeHTML,
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			log.Error("Unhandled bot error", zap.Error(err))
		},
	})
	if err != nil {
		log.Fatal("Failed to create bot", zap.Error(err))
	}

	log.Info("Telegram bot initialized")

	bot.Use(
		middleware.Serialize(middleware.NewUserQueues(bot.OnError)),
		middleware.Limit(middleware.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst), log),
	)

	gate := middleware.NewGate(authService, cfg.Backend.RequestTimeout, log)
	h := handler.NewHandler(bot, gate, services, sessions, handler.Options{
		Layout: view.Layout{
			NameWidth:  cfg.Display.NameWidth,
			ValueWidth: cfg.Display.ValueWidth,
		},
		Timeout:         cfg.Backend.RequestTimeout,
		CleanupRetries:  cfg.Cleanup.RetryCount,
		CleanupInterval: cfg.Cleanup.RetryInterval,
		ContactEmail:    cfg.ContactEmail,
	}, log)
	h.RegisterHandlers(bot)

	log.Info("Handlers registered")

	// Metrics and health check
	var opsServer *ops.Server
	if cfg.MetricsAddr != "" {
		opsServer = ops.NewServer(cfg.MetricsAddr, checks, log)
		go func() {
			if err := opsServer.Start(); err != nil {
				log.Error("Ops server stopped", zap.Error(err))
			}
		}()
	}

	// Start bot in background
	go func() {
		log.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	log.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	if opsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to stop ops server", zap.Error(err))
		}
	}

	log.Info("Bot stopped gracefully")
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, log *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			log.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			log.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations creates the dialog session table
func runMigrations(db *sql.DB, log *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case err == migrate.ErrNoChange:
		log.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		log.Info("Migrations applied successfully")
	}

	return nil
}

// runCleanupJob drops abandoned dialogs once a day
func runCleanupJob(ctx context.Context, repo *postgres.SessionRepo, days int, log *zap.Logger) {
	clean := func() {
		n, err := repo.CleanStale(ctx, days)
		if err != nil {
			log.Error("Failed to clean stale sessions", zap.Error(err))
			return
		}
		log.Info("Stale sessions cleaned", zap.Int64("deleted", n))
	}

	clean()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Cleanup job stopped")
			return
		case <-ticker.C:
			clean()
		}
	}
}
