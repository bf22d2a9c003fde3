package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options locates the configuration sources of the App.
type Options struct {
	ConfigFile string
	EnvFile    string
	// Console also prints logs to standard output in development.
	Console bool
}

type App struct {
	logger   *zap.Logger
	config   *Config
	server   *http.Server
	storage  BookStorage
	cleanups []func()
}

// NewApp loads the configuration and sets up the logging module.
func NewApp(opts Options) (*App, error) {
	config, err := LoadAndInitConfigs(opts.ConfigFile, opts.EnvFile, GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	err = os.MkdirAll(filepath.Dir(config.LogFile), 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	logFile, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging file: %s", err)
	}
	closer := func() {
		if cerr := logFile.Close(); cerr != nil {
			fmt.Println("error during closing of log file: ", cerr)
		}
	}
	logger, flusher := SetupLogging(config, logFile, opts.Console)

	return &App{
		logger: logger,
		config: config,
		cleanups: []func(){
			flusher,
			closer,
		},
	}, nil
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// RunUI starts the interactive books list against the configured remote api.
func (app *App) RunUI(in io.Reader, out io.Writer) error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	remote := NewHTTPBooksRemote(app.logger, &app.config.API, NewIDsHandler(), NewClock(app.config.IsProduction))
	ctrl := NewController(app.logger, remote)
	ui := NewTerminalUI(app.logger, &app.config.UI, ctrl, in, out)

	app.logger.Info("ui starting", zap.String("api.base_url", app.config.API.BaseURL))
	err := ui.Run(nCtx)
	app.logger.Info("ui stopped", zap.Error(err))
	return err
}

// RunStub starts the local books api server and a goroutine which is responsible to stop it.
func (app *App) RunStub() error {
	defer app.Clean()
	storage, err := GetBookStorage(app.logger, app.config)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %s", app.config.Stub.Storage, err)
	}
	app.storage = storage
	app.server = app.NewStubServer(storage)

	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err = g.Wait()
	app.logger.Info("stub server stopped",
		zap.String("app.host", app.config.Stub.Host),
		zap.String("app.port", app.config.Stub.Port),
		zap.Error(err),
	)
	return err
}

// NewStubServer builds the stub http server definition on top of the storage.
func (app *App) NewStubServer(storage BookStorage) *http.Server {
	clock := NewClock(app.config.IsProduction)
	api := NewAPIHandler(app.logger, app.config, clock, NewIDsHandler(), storage)
	router := api.SetupRoutes(httprouter.New(), api.MiddlewaresStack())

	return &http.Server{
		Addr:           fmt.Sprintf("%s:%s", app.config.Stub.Host, app.config.Stub.Port),
		Handler:        router,
		ReadTimeout:    app.config.Stub.ReadTimeout,
		WriteTimeout:   app.config.Stub.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}
}

// Serve starts the stub web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("stub server starting",
			zap.String("app.host", app.config.Stub.Host),
			zap.String("app.port", app.config.Stub.Port),
			zap.String("app.storage", app.config.Stub.Storage),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("stub server stopping. reason: requested to stop")
		} else {
			app.logger.Info("stub server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Stub.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("stub server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("stub server graceful shutdown timed out")
		default:
			app.logger.Info("stub server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("stub server going to force shutdown", zap.Error(app.server.Close()))
		}
		if cerr := app.storage.Close(); cerr != nil {
			app.logger.Error("failed to close stub storage", zap.Error(cerr))
		}
		return nil
	}
}
