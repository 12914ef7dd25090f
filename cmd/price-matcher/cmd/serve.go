package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/competitor-price-matcher/api/openapi"
	"github.com/donaldgifford/competitor-price-matcher/internal/api/handlers"
	mw "github.com/donaldgifford/competitor-price-matcher/internal/api/middleware"
	"github.com/donaldgifford/competitor-price-matcher/internal/engine"
	"github.com/donaldgifford/competitor-price-matcher/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and scheduler",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, Version)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(tctx); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := engine.NewScheduler(a.engine, cfg.Schedule.Interval, cfg.Schedule.PruneSpec,
		log.With("component", "scheduler"))
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if cfg.Schedule.Enabled {
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	e := newServer(a, sched)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", addr, "store", cfg.Store.Driver, "scopes", len(cfg.Scopes))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// newServer builds the Echo server with probes, metrics, the HTML report
// and the Huma API routes.
func newServer(a *app, sched handlers.BatchTrigger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		mw.RequestLog(a.log.With("component", "http")),
		mw.Recovery(a.log),
		mw.Tracing(nil),
		mw.Metrics(),
	)

	health := handlers.NewHealthHandler(a.store)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/report", handlers.NewReportHandler(a.store).Report)

	api := humaecho.New(e, huma.DefaultConfig("Competitor Price Matcher API", Version))
	handlers.RegisterTargetRoutes(api, handlers.NewTargetsHandler(a.store))
	handlers.RegisterResolveRoutes(api, handlers.NewResolveHandler(a.engine))
	handlers.RegisterRunRoutes(api, handlers.NewRunsHandler(sched, a.store))
	handlers.RegisterResultRoutes(api, handlers.NewResultsHandler(a.store))
	openapi.RegisterRoutes(e, api)

	return e
}
