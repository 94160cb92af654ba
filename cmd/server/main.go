package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vibe-in-the-dark/internal/config"
	"vibe-in-the-dark/internal/db"
	"vibe-in-the-dark/internal/fanout"
	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/generator"
	"vibe-in-the-dark/internal/logger"
	"vibe-in-the-dark/internal/server"
	"vibe-in-the-dark/internal/session"
	"vibe-in-the-dark/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.Env); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	rooms := fanout.NewBroker(fanout.DefaultBuffer)
	defer rooms.Close()

	st, pub, err := openStore(cfg, rooms)
	if err != nil {
		logger.Fatal("store setup failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	svc := session.New(st, pub, newGenerator(cfg), session.OptionsFromConfig(cfg),
		session.WithRoomCloser(rooms.CloseRoom))
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Recover(ctx); err != nil {
		logger.Error("timer recovery failed", zap.Error(err))
	}
	go svc.RunReaper(ctx, cfg.ReaperInterval)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(svc, rooms, cfg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr()), zap.String("driver", cfg.DBDriver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore picks the persistence backend. Database backends also append
// every room event to the event log.
func openStore(cfg config.Config, rooms *fanout.Broker) (store.Store, fanout.Publisher, error) {
	if cfg.DBDriver == "memory" {
		return store.NewMemoryStore(), rooms, nil
	}
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == db.DriverSQLite {
		dsn = cfg.SQLitePath
	}
	conn, err := db.Open(db.Options{
		Driver:          cfg.DBDriver,
		DSN:             dsn,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, nil, err
	}
	return store.NewGormStore(conn), fanout.Multi{rooms, store.NewEventLog(conn)}, nil
}

func newGenerator(cfg config.Config) generator.Generator {
	if !cfg.GeneratorConfigured() {
		logger.Warn("no generator credentials configured; prompts will fail")
		return generator.Func(func(context.Context, generator.Request) (game.Artifact, error) {
			return game.Artifact{}, game.External("the generator is not configured")
		})
	}
	return generator.New(generator.Options{
		BaseURL:      cfg.GeneratorBaseURL,
		APIKey:       cfg.GeneratorAPIKey,
		Model:        cfg.GeneratorModel,
		MaxTokens:    cfg.GeneratorMaxTokens,
		Timeout:      cfg.GeneratorTimeout,
		ClientID:     cfg.GeneratorClientID,
		ClientSecret: cfg.GeneratorClientSecret,
		TokenURL:     cfg.GeneratorTokenURL,
	})
}
