package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kitbuilder587/serpclient/internal/cache"
	"github.com/kitbuilder587/serpclient/internal/cache/memory"
	"github.com/kitbuilder587/serpclient/internal/config"
	"github.com/kitbuilder587/serpclient/internal/metrics"
	"github.com/kitbuilder587/serpclient/internal/ratelimit"
	"github.com/kitbuilder587/serpclient/internal/repository"
	"github.com/kitbuilder587/serpclient/internal/repository/postgres"
	"github.com/kitbuilder587/serpclient/internal/repository/sqlite"
	"github.com/kitbuilder587/serpclient/internal/serp/oxylabs"
	"github.com/kitbuilder587/serpclient/internal/service"
)

var ErrHistoryDisabled = errors.New("job history is disabled: set DATABASE_URL or SQLITE_PATH")

// App - собранные зависимости одной команды
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Service *service.ScrapeService
	History repository.JobRepository

	metricsSrv *http.Server
	closers    []func()
}

// NewApp собирает клиент, кеш, историю и метрики по конфигу.
// needAPI=false для команд, которым не нужны учётные данные (jobs).
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, needAPI bool) (*App, error) {
	if needAPI {
		if err := cfg.ValidateCredentials(); err != nil {
			return nil, err
		}
	}

	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// без сервера метрики всё равно пишем, но в отдельный реестр
	if cfg.Metrics.Addr != "" {
		app.Metrics = metrics.New()
		app.startMetricsServer(cfg.Metrics.Addr)
	} else {
		app.Metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	}

	history, err := app.openHistory(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.History = history

	var resultCache cache.Cache
	if cfg.Cache.TTL > 0 {
		mc := memory.New(cfg.Cache.MaxEntries)
		app.closers = append(app.closers, mc.Stop)
		resultCache = mc
	}

	sender := oxylabs.New(oxylabs.Config{
		Username:    cfg.API.Username,
		Password:    cfg.API.Password,
		RealtimeURL: cfg.API.RealtimeURL,
		AsyncURL:    cfg.API.AsyncURL,
		Limiter: ratelimit.New(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		}),
	}, logger)

	app.Service = service.NewScrapeService(service.ScrapeServiceDeps{
		Sender:      sender,
		Jobs:        history,
		Cache:       resultCache,
		CacheTTL:    cfg.Cache.TTL,
		Logger:      logger,
		Metrics:     app.Metrics,
		Concurrency: cfg.Concurrency,
	})

	return app, nil
}

func (a *App) openHistory(ctx context.Context) (repository.JobRepository, error) {
	switch {
	case a.Config.Database.URL != "":
		db, err := postgres.New(ctx, a.Config.Database.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.Logger.Debug("job history in postgres")
		return postgres.NewJobRepo(db), nil

	case a.Config.Database.SQLitePath != "":
		repo, err := sqlite.New(a.Config.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = repo.Close() })
		a.Logger.Debug("job history in sqlite", zap.String("path", a.Config.Database.SQLitePath))
		return repo, nil
	}

	return nil, nil
}

func (a *App) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	a.metricsSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.Logger.Info("metrics server started", zap.String("addr", addr))
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}

func (a *App) Close() {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.metricsSrv.Shutdown(ctx)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.Logger.Sync()
}
