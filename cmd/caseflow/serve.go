package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"github.com/urfave/cli/v3"

	"github.com/aureonlegal/caseflow/internal/adapter/cron"
	"github.com/aureonlegal/caseflow/internal/adapter/fsm"
	"github.com/aureonlegal/caseflow/internal/adapter/graph"
	"github.com/aureonlegal/caseflow/internal/adapter/otel"
	riveradapter "github.com/aureonlegal/caseflow/internal/adapter/river"
	"github.com/aureonlegal/caseflow/internal/adapter/smtp"
	"github.com/aureonlegal/caseflow/internal/adapter/sqlite"
	"github.com/aureonlegal/caseflow/internal/app"

	handler "github.com/aureonlegal/caseflow/internal/adapter/http"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the API server, notification workers and overdue sweep",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Usage:   "HTTP listen port",
				Value:   "8080",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "overdue-cron",
				Usage:   "Cron spec for the overdue action sweep",
				Value:   "0 7 * * *",
				Sources: cli.EnvVars("OVERDUE_CRON"),
			},
			&cli.StringFlag{
				Name:    "drive-base-url",
				Usage:   "Microsoft Graph API base URL",
				Value:   "https://graph.microsoft.com/v1.0",
				Sources: cli.EnvVars("DRIVE_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "drive-id",
				Usage:   "Drive holding the case folders",
				Sources: cli.EnvVars("DRIVE_ID"),
			},
			&cli.StringFlag{
				Name:    "drive-token",
				Usage:   "Bearer token for the Graph API",
				Sources: cli.EnvVars("DRIVE_TOKEN"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			return run(ctx, serveOptions{
				Port:         command.String("port"),
				DatabasePath: command.String("database-path"),
				OverdueCron:  command.String("overdue-cron"),
				Drive: graph.Config{
					BaseURL: command.String("drive-base-url"),
					DriveID: command.String("drive-id"),
					Token:   command.String("drive-token"),
				},
			})
		},
	}
}

type serveOptions struct {
	Port         string
	DatabasePath string
	OverdueCron  string
	Drive        graph.Config
}

// run wires the full stack and blocks until SIGINT/SIGTERM.
func run(ctx context.Context, opts serveOptions) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- Telemetry ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(opts.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	cases := otel.NewTracingCaseRepository(store.Cases)
	mailer := smtp.New()
	drive := graph.New(opts.Drive)
	validator := fsm.New()

	// --- Notification pipeline ---
	notifications := app.NewNotificationService(store.Notifications, cases, mailer, logger)

	queue, err := riveradapter.Setup(ctx, db, notifications)
	if err != nil {
		return fmt.Errorf("job queue: %w", err)
	}
	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("starting job queue: %w", err)
	}

	notifier := otel.NewTracingNotifier(riveradapter.NewDispatcher(queue))

	// --- Application ---
	fields := app.NewFieldService(store.Fields)
	engine := app.NewEngine(cases, store.Workflows, store.Catalog, notifier, logger)

	services := handler.Services{
		Cases: app.NewCaseService(cases, store.Clients, store.Catalog, store.Workflows,
			fields, engine, drive, notifier, validator, logger),
		Clients:       app.NewClientService(store.Clients),
		Workflows:     app.NewWorkflowService(store.Workflows),
		Catalog:       app.NewCatalogService(store.Catalog),
		Fields:        fields,
		Timesheets:    app.NewTimesheetService(store.Timesheets, cases, store.Catalog, logger),
		Agreements:    app.NewAgreementService(store.Finance, cases, logger),
		Notifications: notifications,
	}

	// --- Overdue sweep ---
	sweeper := cron.NewSweeper(cases, store.Workflows, notifier, logger)
	if err := sweeper.Start(opts.OverdueCron); err != nil {
		return fmt.Errorf("overdue sweep: %w", err)
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("caseflow", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("caseflow", "0.1.0"))
	handler.Register(api, services)

	srv := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("caseflow listening", "port", opts.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-done:
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	sweeper.Stop()
	if err := queue.Stop(shutdownCtx); err != nil {
		logger.Error("job queue shutdown", "error", err)
	}

	logger.Info("stopped")
	return nil
}
