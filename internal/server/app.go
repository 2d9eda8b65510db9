// Package server assembles and runs the registration server: it opens the
// database, applies migrations, wires the registration service to the HTTP
// surface, and purges expired ceremonies in the background.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/logging"
	"github.com/budda-star9/reelforge/internal/server/config"
	"github.com/budda-star9/reelforge/internal/server/httpserver"
	"github.com/budda-star9/reelforge/internal/server/metrics"
	"github.com/budda-star9/reelforge/internal/server/passkey"
	"github.com/budda-star9/reelforge/internal/server/repositories/repomanager"
	"github.com/budda-star9/reelforge/internal/server/services"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	registration *services.RegistrationService
	metrics      *metrics.Recorder
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := dbx.Open(ctx, c.StorageDriver, c.DatabaseDSN, c.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(c.StorageDriver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	provider, err := passkey.New(passkey.Config{
		RPID:          c.RPID,
		RPDisplayName: c.RPDisplayName,
		RPOrigins:     c.RPOrigins,
		Timeout:       c.CeremonyTTL,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	rec := metrics.NewRecorder()
	rs := services.NewRegistrationService(db, rm, provider, c, rec)

	return &App{config: c, logger: logger, db: db, registration: rs, metrics: rec}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a signal arrives, then closes the
// database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageDriver)

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := httpserver.NewServer(app.config.EndpointAddrHTTP, app.logger, app.registration, app.metrics)
		return s.Run(ctx)
	})

	if app.config.ReapInterval > 0 {
		g.Go(func() error {
			runReaper(ctx, app.registration, app.config.ReapInterval, app.logger)
			return nil
		})
	}

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close", "error", cerr)
	}
	return err
}

type reaper interface {
	ReapExpired(ctx context.Context) (int64, error)
}

// runReaper purges expired ceremonies every interval until ctx is done.
// Failures are logged and retried on the next tick.
func runReaper(ctx context.Context, r reaper, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.ReapExpired(ctx)
			if err != nil {
				logger.Error(ctx, "Reaping expired ceremonies failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug(ctx, "Reaped expired ceremonies", "count", n)
			}
		}
	}
}
