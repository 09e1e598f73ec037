package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"3tcapital/biohoneypot/internal/adapters/interaction/memory"
	"3tcapital/biohoneypot/internal/adapters/interaction/postgres"
	"3tcapital/biohoneypot/internal/adapters/interaction/sqlite"
	"3tcapital/biohoneypot/internal/application/archive"
	"3tcapital/biohoneypot/internal/core/interaction"
	"3tcapital/biohoneypot/internal/infrastructure/config"
	"3tcapital/biohoneypot/internal/infrastructure/database"
	"3tcapital/biohoneypot/internal/infrastructure/http/server"
	"3tcapital/biohoneypot/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "service stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logSinks []io.Writer
	if cfg.Log.File != "" {
		f, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			return err
		}
		defer f.Close()
		logSinks = append(logSinks, f)
	}
	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment, logSinks...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := memory.New(cfg.Honeypot.StoreCapacity)
	log.Info("Interaction store ready", "capacity", store.Capacity(), "unbounded", store.Capacity() == 0)

	opts := server.Options{
		Config: cfg,
		Logger: log,
		Store:  store,
	}

	if cfg.Archive.Enabled {
		sink, closeSink, err := openArchive(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeSink()

		forwarder := archive.NewForwarder(archive.Options{
			Sink:         sink,
			Logger:       log,
			QueueSize:    cfg.Archive.QueueSize,
			Workers:      cfg.Archive.Workers,
			WriteTimeout: cfg.Archive.WriteTimeout,
		})
		forwarder.Start()
		// Runs before closeSink so queued records are flushed.
		defer forwarder.Stop()

		opts.Archive = forwarder
		opts.Dependencies = append(opts.Dependencies, "archive:"+cfg.Archive.Driver)
	} else {
		log.Info("Interaction archive disabled")
	}

	srv, err := server.New(opts)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	log.Info("Honeypot starting",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"addr", cfg.HTTP.Address(),
		"trust_proxy_headers", cfg.Honeypot.TrustProxyHeaders,
	)
	return srv.Run(ctx)
}

// openArchive returns the configured sink and a func releasing it.
func openArchive(ctx context.Context, cfg config.AppConfig, log *slog.Logger) (interaction.Sink, func(), error) {
	if cfg.Archive.Driver == config.ArchiveDriverSQLite {
		repo, err := sqlite.Open(cfg.Archive.SQLitePath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite archive: %w", err)
		}
		log.Info("SQLite archive ready", "path", cfg.Archive.SQLitePath)
		return repo, func() { repo.Close() }, nil
	}

	pool, err := openArchiveDB(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewRepository(pool, log), pool.Close, nil
}

func openArchiveDB(ctx context.Context, cfg config.AppConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Database,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Error("Failed to connect to archive database",
			"error", err,
			"host", cfg.Database.Host,
			"database", cfg.Database.Database,
			"user", cfg.Database.User,
			"password_set", cfg.Database.Password != "",
		)
		return nil, fmt.Errorf("connect archive database: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Info("Archive database connection established", "database", cfg.Database.Database)
	return pool, nil
}
