package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/serpclient/internal/cache"
	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/metrics"
	"github.com/kitbuilder587/serpclient/internal/payload"
	"github.com/kitbuilder587/serpclient/internal/repository"
	"github.com/kitbuilder587/serpclient/internal/serp"
)

const DefaultConcurrency = 4

// ScrapeRequest - один запрос: источник, цель (запрос или URL) и параметры
type ScrapeRequest struct {
	Source    domain.Source
	Target    string
	Options   payload.Options
	Overrides []domain.Option
}

// BatchResult - итог одного элемента батча, ошибка не валит остальные
type BatchResult struct {
	Index   int
	Request ScrapeRequest
	Result  *domain.Result
	Err     error
}

type ScrapeServiceDeps struct {
	Sender  serp.Sender
	Jobs    repository.JobRepository
	Cache   cache.Cache
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// 0 - кеш выключен
	CacheTTL    time.Duration
	Concurrency int
}

// ScrapeService выбирает payload builder по источнику, режим по конфигу
// и ведёт историю запросов. Jobs, Cache и Metrics опциональны.
type ScrapeService struct {
	executor    *Executor
	jobs        *JobClient
	history     repository.JobRepository
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      *zap.Logger
	metrics     *metrics.Metrics
	concurrency int
}

func NewScrapeService(deps ScrapeServiceDeps) *ScrapeService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Concurrency <= 0 {
		deps.Concurrency = DefaultConcurrency
	}

	return &ScrapeService{
		executor:    NewExecutor(deps.Sender, deps.Logger),
		jobs:        NewJobClient(deps.Sender, deps.Logger, deps.Metrics),
		history:     deps.Jobs,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		concurrency: deps.Concurrency,
	}
}

func (s *ScrapeService) Scrape(ctx context.Context, req ScrapeRequest) (*domain.Result, error) {
	startTime := time.Now()

	if s.metrics != nil {
		s.metrics.IncRequestsInFlight()
		defer s.metrics.DecRequestsInFlight()
	}

	p, err := payload.Build(req.Source, req.Target, req.Options)
	if err != nil {
		s.recordRequest(req.Source, "", "validation_error", startTime)
		return nil, err
	}

	cfg, err := domain.Resolve(req.Source.Defaults(), req.Overrides...)
	if err != nil {
		s.recordRequest(req.Source, "", "validation_error", startTime)
		return nil, err
	}

	mode := domain.ModeSync
	if cfg.Async {
		mode = domain.ModeAsync
	}

	s.logger.Info("processing scrape",
		zap.String("source", string(req.Source)),
		zap.String("mode", string(mode)),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Duration("job_timeout", cfg.JobCompletionTimeout),
	)

	cacheKey := s.cacheKey(p, req.Options)
	if cacheKey != "" {
		if res, ok := s.cache.Get(cacheKey); ok {
			if s.metrics != nil {
				s.metrics.RecordCacheHit()
			}
			s.logger.Debug("cache hit", zap.String("source", string(req.Source)))
			s.recordRequest(req.Source, mode, "cached", startTime)
			return res, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	rec := s.startRecord(ctx, req, mode)

	var res *domain.Result
	if cfg.Async {
		res, err = s.jobs.run(ctx, p, cfg, func(job *domain.Job) {
			if rec != nil {
				rec.JobID = job.ID
			}
		})
	} else {
		res, err = s.executor.Execute(ctx, p, cfg)
	}

	s.finishRecord(rec, err)

	if err != nil {
		s.logger.Warn("scrape failed",
			zap.String("source", string(req.Source)),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		s.recordRequest(req.Source, mode, errorStatus(err), startTime)
		return nil, err
	}

	if cacheKey != "" {
		s.cache.Set(cacheKey, res, s.cacheTTL)
	}

	s.logger.Info("scrape completed",
		zap.String("source", string(req.Source)),
		zap.String("mode", string(mode)),
		zap.Int("results", len(res.Results)),
		zap.Duration("elapsed", time.Since(startTime)),
	)
	s.recordRequest(req.Source, mode, "success", startTime)

	return res, nil
}

// Batch прогоняет запросы параллельно, не больше concurrency одновременно.
// Порядок результатов совпадает с порядком reqs. onDone (если задан)
// вызывается из рабочих горутин по мере готовности.
func (s *ScrapeService) Batch(ctx context.Context, reqs []ScrapeRequest, onDone func(BatchResult)) []BatchResult {
	results := make([]BatchResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := s.Scrape(ctx, req)
			results[i] = BatchResult{Index: i, Request: req, Result: res, Err: err}
			if onDone != nil {
				onDone(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *ScrapeService) History(ctx context.Context, limit int) ([]domain.JobRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.ListRecent(ctx, limit)
}

// cacheKey пустой, если кешировать нельзя: нет кеша, TTL 0
// или результат уходит на callback
func (s *ScrapeService) cacheKey(p payload.Payload, opts payload.Options) string {
	if s.cache == nil || s.cacheTTL <= 0 || opts.CallbackURL != "" {
		return ""
	}
	key, err := cache.Key(p)
	if err != nil {
		s.logger.Warn("failed to build cache key", zap.Error(err))
		return ""
	}
	return key
}

// история вспомогательная: ошибки хранилища только логируем
func (s *ScrapeService) startRecord(ctx context.Context, req ScrapeRequest, mode domain.Mode) *domain.JobRecord {
	if s.history == nil {
		return nil
	}
	rec := &domain.JobRecord{
		ID:          uuid.NewString(),
		Source:      string(req.Source),
		Target:      req.Target,
		Mode:        mode,
		Status:      domain.JobPending,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.history.Create(ctx, rec); err != nil {
		s.logger.Warn("failed to save job record", zap.String("id", rec.ID), zap.Error(err))
		return nil
	}
	return rec
}

func (s *ScrapeService) finishRecord(rec *domain.JobRecord, err error) {
	if rec == nil {
		return
	}
	now := time.Now().UTC()
	rec.FinishedAt = &now
	rec.Status = domain.JobDone
	if err != nil {
		rec.Status = domain.JobFailed
		rec.Error = err.Error()
	}

	// ctx вызывающего мог уже отмениться, а запись закрыть всё равно надо
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Update(ctx, rec); err != nil {
		s.logger.Warn("failed to update job record", zap.String("id", rec.ID), zap.Error(err))
	}
}

func (s *ScrapeService) recordRequest(source domain.Source, mode domain.Mode, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordRequest(string(source), string(mode), status, time.Since(start))
	}
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrJobCompletionTimeout), errors.Is(err, serp.ErrTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrJobFailed):
		return "job_failed"
	case errors.Is(err, domain.ErrSubmission):
		return "submission_error"
	case errors.Is(err, domain.ErrFetch):
		return "fetch_error"
	default:
		return "error"
	}
}
