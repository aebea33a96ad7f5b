// Package server wires the identity server: PostgreSQL storage, the user
// service, and the gRPC and HTTP listeners, with graceful shutdown on
// SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/easydrink/internal/logging"
	"github.com/dmitrijs2005/easydrink/internal/server/config"
	"github.com/dmitrijs2005/easydrink/internal/server/httpapi"
	"github.com/dmitrijs2005/easydrink/internal/server/metrics"
	"github.com/dmitrijs2005/easydrink/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/easydrink/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/easydrink/internal/server/grpc"
)

// runner is a listener that serves until its context is cancelled.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	runners []runner
}

// openDB is a seam for tests.
var openDB = repomanager.OpenPostgres

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	rm := repomanager.NewPostgresRepositoryManager()

	db, err := openDB(ctx, c.DatabaseDSN, rm)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := metrics.New()
	us := services.NewUserService(db, rm, c, logger)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		runners: []runner{
			gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, us.Signer(), m),
			httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, us, db.PingContext, m),
		},
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run starts every listener and blocks until a signal arrives, ctx is
// cancelled or a listener fails. The first failure stops the others.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range app.runners {
		r := r
		g.Go(func() error {
			err := r.Run(gctx)
			if err != nil {
				app.logger.Error(gctx, err.Error())
			}
			return err
		})
	}

	err := g.Wait()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Warn(ctx, "db close", "error", cerr)
	}
	app.logger.Info(ctx, "Stopped")
	return err
}
