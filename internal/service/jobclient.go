package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/metrics"
	"github.com/kitbuilder587/serpclient/internal/payload"
	"github.com/kitbuilder587/serpclient/internal/serp"
)

// JobClient - асинхронный режим: submit -> poll -> fetch.
// Состояния своего у клиента нет, каждый RunAsync владеет своей задачей,
// так что один JobClient можно дёргать из многих горутин.
type JobClient struct {
	sender  serp.Sender
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewJobClient(sender serp.Sender, logger *zap.Logger, m *metrics.Metrics) *JobClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobClient{sender: sender, logger: logger, metrics: m}
}

// RunAsync отправляет задачу, ждёт её завершения и забирает результат.
//
// Ошибка отдельного опроса статуса не прерывает ожидание, следующий опрос
// повторит попытку. Всё ожидание ограничено JobCompletionTimeout от момента
// отправки (domain.ErrJobCompletionTimeout). Ошибки отправки и получения
// результата не повторяются: domain.ErrSubmission, domain.ErrFetch.
// Если ctx отменён, опрос прекращается и результат не запрашивается.
func (c *JobClient) RunAsync(ctx context.Context, p payload.Payload, cfg domain.RequestConfig) (*domain.Result, error) {
	return c.run(ctx, p, cfg, nil)
}

func (c *JobClient) run(ctx context.Context, p payload.Payload, cfg domain.RequestConfig, onSubmit func(*domain.Job)) (*domain.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	job, err := c.submit(ctx, p, cfg)
	if err != nil {
		return nil, err
	}
	if onSubmit != nil {
		onSubmit(job)
	}

	log := c.logger.With(zap.String("job_id", job.ID))
	log.Debug("job submitted", zap.String("source", string(p.Source())))

	if err := c.waitDone(ctx, job, cfg, log); err != nil {
		c.recordJob(job, err)
		return nil, err
	}

	res, err := c.fetch(ctx, job, cfg)
	c.recordJob(job, err)
	if err != nil {
		return nil, err
	}

	log.Debug("job result fetched", zap.Int("results", len(res.Results)))
	return res, nil
}

func (c *JobClient) submit(ctx context.Context, p payload.Payload, cfg domain.RequestConfig) (*domain.Job, error) {
	reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	job, err := c.sender.SubmitJob(reqCtx, p)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if c.metrics != nil {
			c.metrics.RecordSubmission("error")
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSubmission, err)
	}
	if c.metrics != nil {
		c.metrics.RecordSubmission("success")
	}

	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	job.Status = domain.JobPending
	return job, nil
}

// waitDone опрашивает статус до done/failed или до дедлайна.
// Первый опрос сразу после отправки, дальше раз в PollInterval.
func (c *JobClient) waitDone(ctx context.Context, job *domain.Job, cfg domain.RequestConfig, log *zap.Logger) error {
	deadline := job.SubmittedAt.Add(cfg.JobCompletionTimeout)
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-pollCtx.Done():
			return c.pollAborted(ctx, job, cfg)
		case <-timer.C:
		}

		status, err := c.checkStatus(pollCtx, job.ID, cfg.RequestTimeout)
		if err != nil {
			if pollCtx.Err() != nil {
				return c.pollAborted(ctx, job, cfg)
			}
			c.recordPoll("error")
			log.Warn("job status check failed, will poll again",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			timer.Reset(cfg.PollInterval)
			continue
		}

		job.Status = status
		c.recordPoll(string(status))

		switch status {
		case domain.JobDone:
			log.Debug("job done", zap.Int("polls", attempt))
			return nil
		case domain.JobFailed:
			log.Debug("job failed remotely", zap.Int("polls", attempt))
			return fmt.Errorf("%w: job %s reported failure", domain.ErrJobFailed, job.ID)
		}

		timer.Reset(cfg.PollInterval)
	}
}

func (c *JobClient) checkStatus(ctx context.Context, jobID string, timeout time.Duration) (domain.JobStatus, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.sender.JobStatus(reqCtx, jobID)
}

// pollAborted различает отмену вызывающим и истечение JobCompletionTimeout
func (c *JobClient) pollAborted(ctx context.Context, job *domain.Job, cfg domain.RequestConfig) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: job %s not finished within %v", domain.ErrJobCompletionTimeout, job.ID, cfg.JobCompletionTimeout)
}

func (c *JobClient) fetch(ctx context.Context, job *domain.Job, cfg domain.RequestConfig) (*domain.Result, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	res, err := c.sender.JobResult(reqCtx, job.ID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: job %s: %w", domain.ErrFetch, job.ID, err)
	}
	return res, nil
}

func (c *JobClient) recordPoll(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordPoll(outcome)
	}
}

func (c *JobClient) recordJob(job *domain.Job, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordJob(outcome, time.Since(job.SubmittedAt))
}
