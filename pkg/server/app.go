package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	drepo "FinCast/internal/domain/repository"
	"FinCast/internal/usecase"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/queue"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.QuoteCollector
	jobsQueue   *queue.RedisQueue
	store       drepo.PriceStore
	pub         drepo.SignalPublisher
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies. collector, jobsQueue,
// store and pub may be nil when the matching subsystem is disabled.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	handler xhttp.Handler,
	collector *usecase.QuoteCollector,
	jobsQueue *queue.RedisQueue,
	store drepo.PriceStore,
	pub drepo.SignalPublisher,
) *App {
	return &App{
		cfg:         cfg,
		logger:      lgr,
		httpHandler: handler,
		collector:   collector,
		jobsQueue:   jobsQueue,
		store:       store,
		pub:         pub,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	a.httpServer.Echo().GET("/health", a.healthHandler)

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.logger.Error("quote collector error", applogger.Error(err))
			}
		}()
		a.logger.Info("quote collector started", applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	if a.jobsQueue != nil {
		if err := a.jobsQueue.Start(); err != nil {
			a.logger.Error("job queue start error", applogger.Error(err))
		} else {
			a.logger.Info("job queue started", applogger.Int("workers", a.cfg.Redis.Queue.Workers))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.logger.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.jobsQueue != nil {
		if err := a.jobsQueue.Stop(shutdownCtx); err != nil {
			a.logger.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("price store close error", applogger.Error(err))
		}
	}

	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.logger.Warn("signal publisher close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

// healthHandler reports liveness of the wired subsystems.
func (a *App) healthHandler(c echo.Context) error {
	status := map[string]string{"service": "ok"}
	code := http.StatusOK

	if a.store != nil {
		if err := a.store.Health(c.Request().Context()); err != nil {
			status["price_store"] = "down"
			code = http.StatusServiceUnavailable
		} else {
			status["price_store"] = "ok"
		}
	}
	if a.collector != nil {
		if a.collector.IsConnected() {
			status["quote_stream"] = "ok"
		} else {
			status["quote_stream"] = "down"
		}
	}

	return c.JSON(code, status)
}
