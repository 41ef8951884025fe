package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"queryquest/internal/catalog"
	"queryquest/internal/config"
	"queryquest/internal/db"
	"queryquest/internal/game"
	"queryquest/internal/logger"
	"queryquest/internal/sandbox"
	"queryquest/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(gin.ReleaseMode)

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.close()

	srv := server.New(cfg, server.Options{
		Content:  backend.content,
		Sandbox:  backend.sandbox,
		Recorder: backend.recorder,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Bool("dev", cfg.DevMode()).Msg("queryquest server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("rounds still running at shutdown")
		}
		return nil
	})
	return g.Wait()
}

type backend struct {
	content  game.ContentProvider
	sandbox  game.QuerySandbox
	recorder game.Recorder
	close    func()
}

// openBackend wires Postgres when DATABASE_URL is set and otherwise runs on the
// seed file with a local SQLite sandbox.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	if cfg.DevMode() {
		return openDevBackend(ctx, cfg)
	}
	sandboxURL, err := cfg.SandboxURL()
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		_ = db.Close(conn)
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	box, err := sandbox.NewPostgres(ctx, sandboxURL, cfg.QueryTimeout, cfg.SandboxMaxConns)
	if err != nil {
		_ = db.Close(conn)
		return nil, fmt.Errorf("sandbox connection failed: %w", err)
	}
	recorder := server.NewEventRecorder(conn, cfg.EventBufferSize)
	return &backend{
		content:  catalog.NewStore(conn),
		sandbox:  box,
		recorder: recorder,
		close: func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := recorder.Close(flushCtx); err != nil {
				log.Warn().Err(err).Msg("room events not fully flushed")
			}
			box.Close()
			if err := db.Close(conn); err != nil {
				log.Error().Err(err).Msg("database close failed")
			}
		},
	}, nil
}

func openDevBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	seeds, err := catalog.LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	if err := catalog.BuildSQLite(ctx, cfg.SQLitePath, seeds); err != nil {
		return nil, fmt.Errorf("building sqlite catalog: %w", err)
	}
	box, err := sandbox.NewSQLite(ctx, cfg.SQLitePath, cfg.QueryTimeout)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite sandbox: %w", err)
	}
	log.Info().Str("path", cfg.SQLitePath).Int("locations", len(seeds)).Msg("dev mode, serving catalog from sqlite")
	return &backend{
		content: catalog.NewStatic(seeds),
		sandbox: box,
		close: func() {
			if err := box.Close(); err != nil {
				log.Error().Err(err).Msg("sqlite close failed")
			}
		},
	}, nil
}
