// Package server initializes and runs the formdesk application server.
// It wires the storage backend, the session and guard layers, and the HTTP
// server, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/avelichko/formdesk/internal/logging"
	"github.com/avelichko/formdesk/internal/server/accounts"
	"github.com/avelichko/formdesk/internal/server/config"
	"github.com/avelichko/formdesk/internal/server/guard"
	"github.com/avelichko/formdesk/internal/server/session"
	"github.com/avelichko/formdesk/internal/server/shared/db"
	"github.com/avelichko/formdesk/internal/server/submissions"
	"github.com/avelichko/formdesk/internal/server/web"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager db.RepositoryManager
	server  *web.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	manager, err := db.NewSQLRepositoryManager(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := manager.RunMigrations(ctx); err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	var archive submissions.Archiver
	if c.ArchiveDir != "" {
		archive, err = submissions.NewJSONLArchive(c.ArchiveDir)
		if err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
	}

	accountService := accounts.NewService(manager.Accounts())
	submissionService := submissions.NewService(manager.Submissions(), archive, logger)

	sessions := session.NewManager()
	g := guard.New(sessions, c.MinSubmitInterval)
	cookies := web.NewCookieCodec(c.SecretKey)

	srv := web.NewServer(c.Addr, logger, sessions, g, cookies,
		accountService, submissionService, nil)

	return &App{config: c, logger: logger, manager: manager, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
