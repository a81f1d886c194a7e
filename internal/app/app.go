// Package app assembles the phishing detector from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/phishing-detector/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/phishing-detector/internal/adapter/repository/sqldb"
	"github.com/vadimbarashkov/phishing-detector/internal/analyzer"
	"github.com/vadimbarashkov/phishing-detector/internal/config"
	"github.com/vadimbarashkov/phishing-detector/internal/entity"
	"github.com/vadimbarashkov/phishing-detector/internal/metrics"
	"github.com/vadimbarashkov/phishing-detector/internal/usecase"
	"github.com/vadimbarashkov/phishing-detector/migrations"
	"github.com/vadimbarashkov/phishing-detector/pkg/postgres"
	"github.com/vadimbarashkov/phishing-detector/pkg/sqlite"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/phishing-detector/internal/adapter/delivery/http"
)

const (
	serviceName     = "phishing-detector"
	shutdownTimeout = 10 * time.Second
)

type analysisStore interface {
	Upsert(ctx context.Context, rec *entity.AnalysisRecord) (*entity.AnalysisRecord, error)
	Count(ctx context.Context, filter entity.AnalysisFilter) (int64, error)
	Recent(ctx context.Context, limit int) ([]entity.AnalysisRecord, error)
	Ping(ctx context.Context) error
}

// Store is an opened analysis store together with its underlying connection.
type Store struct {
	analysisStore
	db *sqlx.DB
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewLogger builds the service logger from cfg. Output goes to w.
func NewLogger(cfg config.Log, w io.Writer) *httplog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	return httplog.NewLogger(serviceName, httplog.Options{
		LogLevel: level,
		JSON:     cfg.JSON,
		Concise:  !cfg.JSON,
		Writer:   w,
	})
}

// OpenStore connects to the store selected by cfg.Storage.Driver and applies
// pending migrations.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	const op = "app.OpenStore"

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return &Store{analysisStore: memory.NewAnalysisRepository()}, nil

	case config.DriverSQLite:
		db, err := sqlite.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := sqlite.RunMigrations(db, migrations.FS, migrations.SQLiteDir); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &Store{analysisStore: sqldb.NewAnalysisRepository(db), db: db}, nil

	case config.DriverPostgres:
		db, err := postgres.New(
			ctx,
			cfg.Postgres.DSN(),
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := postgres.RunMigrations(migrations.FS, migrations.PostgresDir, cfg.Postgres.DSN()); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &Store{analysisStore: sqldb.NewAnalysisRepository(db), db: db}, nil

	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
	}
}

// NewUseCase builds the analysis use case over store.
func NewUseCase(cfg *config.Config, store *Store, logger *slog.Logger, rec *metrics.Recorder) *usecase.AnalysisUseCase {
	return usecase.New(
		analyzer.New(cfg.Analyzer),
		store,
		usecase.WithLogger(logger),
		usecase.WithMetrics(rec),
		usecase.WithMaxBatchItems(cfg.Batch.MaxItems),
	)
}

// NewHandler builds the HTTP handler serving uc.
func NewHandler(cfg *config.Config, logger *httplog.Logger, uc *usecase.AnalysisUseCase, rec *metrics.Recorder) http.Handler {
	opts := []delivery.Option{
		delivery.WithAllowedOrigins(cfg.CORS.AllowedOrigins...),
		delivery.WithMaxUploadBytes(cfg.HTTPServer.MaxUploadBytes),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, delivery.WithMetrics(cfg.Metrics.Path, rec.Handler()))
	}

	return delivery.NewRouter(logger, uc, opts...)
}

// newHTTPServer builds the server for h. Request contexts inherit the values
// of ctx but not its cancellation, so in-flight requests keep running while
// Shutdown drains them.
func newHTTPServer(ctx context.Context, cfg *config.Config, h http.Handler) *http.Server {
	baseCtx := context.WithoutCancel(ctx)

	return &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        h,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return baseCtx
		},
	}
}

// Run serves the HTTP API until ctx is done, then shuts the server down.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := NewLogger(cfg.Log, os.Stdout)

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to open store: %w", op, err)
	}
	defer store.Close()

	rec, err := metrics.New()
	if err != nil {
		return fmt.Errorf("%s: failed to register metrics: %w", op, err)
	}

	uc := NewUseCase(cfg, store, logger.Logger, rec)

	server := newHTTPServer(ctx, cfg, NewHandler(cfg, logger, uc, rec))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.Env),
			slog.String("storage", cfg.Storage.Driver),
		)

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// Migrate applies pending migrations for the configured store.
func Migrate(ctx context.Context, cfg *config.Config) error {
	const op = "app.Migrate"

	if cfg.Storage.Driver == config.DriverMemory {
		return nil
	}

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return store.Close()
}
