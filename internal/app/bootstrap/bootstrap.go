// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	analyticsservice "tallyroom/contexts/election-core/analytics-service"
	analyticslocal "tallyroom/contexts/election-core/analytics-service/adapters/local"
	analyticsworkers "tallyroom/contexts/election-core/analytics-service/application/workers"
	resultservice "tallyroom/contexts/election-core/result-service"
	resultlocal "tallyroom/contexts/election-core/result-service/adapters/local"
	resultpostgres "tallyroom/contexts/election-core/result-service/adapters/postgres"
	resultworkers "tallyroom/contexts/election-core/result-service/application/workers"
	ussdservice "tallyroom/contexts/field-intake/ussd-service"
	ussdlocal "tallyroom/contexts/field-intake/ussd-service/adapters/local"
	ussdpostgres "tallyroom/contexts/field-intake/ussd-service/adapters/postgres"
	directoryservice "tallyroom/contexts/registry/directory-service"
	directorypostgres "tallyroom/contexts/registry/directory-service/adapters/postgres"
	"tallyroom/internal/platform/config"
	"tallyroom/internal/platform/db"
	"tallyroom/internal/platform/httpserver"
	"tallyroom/internal/platform/realtime"
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	hub      *realtime.Hub
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	ticker   *analyticsworkers.BroadcastTicker
	sweeper  *resultworkers.ArchiveSweeper
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(logger)

	directoryRepo := directorypostgres.NewRepository(pg.DB, logger)
	directoryModule := directoryservice.NewModule(directoryservice.Dependencies{
		Repository: directoryRepo,
		Clock:      directorypostgres.SystemClock{},
		IDGen:      directorypostgres.UUIDGenerator{},
		Logger:     logger,
	})

	resultRepo := resultpostgres.NewRepository(pg.DB, logger)
	analyticsModule := analyticsservice.NewModule(analyticsservice.Dependencies{
		Results:   analyticslocal.ResultSource{Repo: resultRepo},
		Centers:   analyticslocal.CenterSource{Repo: directoryRepo},
		Publisher: hub,
		Clock:     resultpostgres.SystemClock{},
		Logger:    logger,
	})

	resultModule := resultservice.NewModule(resultservice.Dependencies{
		Repository: resultRepo,
		Centers:    resultlocal.CenterDirectory{Repo: directoryRepo},
		Actors:     resultlocal.ActorDirectory{Repo: directoryRepo},
		Notifier:   analyticslocal.ResultNotifier{Broadcaster: analyticsModule.Broadcaster},
		Clock:      resultpostgres.SystemClock{},
		IDGen:      resultpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	ussdModule := ussdservice.NewModule(ussdservice.Dependencies{
		Sessions:   ussdpostgres.NewStore(pg.DB, logger),
		Directory:  ussdlocal.DirectoryClient{Directory: directoryModule.Service},
		Results:    ussdlocal.ResultClient{Results: resultModule.Service},
		Clock:      ussdpostgres.SystemClock{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	})

	hub.SetSnapshotProvider(func(ctx context.Context) (any, error) {
		return analyticsModule.Service.ComputeSnapshot(ctx)
	})

	server := httpserver.New(
		directoryModule,
		resultModule,
		analyticsModule,
		ussdModule,
		hub,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		hub:      hub,
		logger:   logger,
	}, nil
}

// BuildWorker wires the periodic processes: the analytics broadcast ticker
// and the stale-result archive sweeper. Both read the same Postgres the
// API writes. Each is toggled independently through config so a
// deployment can run one worker per concern.
func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	app := &WorkerApp{
		postgres: pg,
		logger:   logger,
	}

	directoryRepo := directorypostgres.NewRepository(pg.DB, logger)
	resultRepo := resultpostgres.NewRepository(pg.DB, logger)

	if cfg.EnableBroadcastTicker {
		hub := realtime.NewHub(logger)
		analyticsModule := analyticsservice.NewModule(analyticsservice.Dependencies{
			Results:   analyticslocal.ResultSource{Repo: resultRepo},
			Centers:   analyticslocal.CenterSource{Repo: directoryRepo},
			Publisher: hub,
			Clock:     resultpostgres.SystemClock{},
			Logger:    logger,
		})
		app.ticker = &analyticsworkers.BroadcastTicker{
			Broadcaster: analyticsModule.Broadcaster,
			Interval:    cfg.BroadcastInterval,
			Logger:      logger,
		}
	}

	if cfg.EnableArchiveSweeper {
		if strings.TrimSpace(cfg.ArchiveActorID) == "" {
			return nil, errors.New("ARCHIVE_ACTOR_ID is required when the archive sweeper is enabled")
		}
		resultModule := resultservice.NewModule(resultservice.Dependencies{
			Repository: resultRepo,
			Centers:    resultlocal.CenterDirectory{Repo: directoryRepo},
			Actors:     resultlocal.ActorDirectory{Repo: directoryRepo},
			Clock:      resultpostgres.SystemClock{},
			IDGen:      resultpostgres.UUIDGenerator{},
			Logger:     logger,
		})
		app.sweeper = &resultworkers.ArchiveSweeper{
			Results:  resultModule.Service,
			ActorID:  cfg.ArchiveActorID,
			MaxAge:   cfg.ArchiveAfter,
			Interval: cfg.ArchiveInterval,
			Logger:   logger,
		}
	}

	return app, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.ticker == nil && w.sweeper == nil {
		return errors.New("no worker processes are enabled")
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"broadcast_ticker", w.ticker != nil,
		"archive_sweeper", w.sweeper != nil,
	)

	errs := make(chan error, 2)
	if w.ticker != nil {
		go func() { errs <- w.ticker.Run(ctx) }()
	}
	if w.sweeper != nil {
		go func() { errs <- w.sweeper.Run(ctx) }()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errs:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
