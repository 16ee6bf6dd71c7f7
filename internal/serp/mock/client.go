package mock

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/payload"
	"github.com/kitbuilder587/serpclient/internal/serp"
)

// StatusStep - один ответ статус-эндпоинта: либо статус, либо ошибка
type StatusStep struct {
	Status domain.JobStatus
	Err    error
}

// Client - скриптуемый serp.Sender для тестов.
// Статусы отдаются по очереди, последний повторяется бесконечно.
type Client struct {
	JobID       string
	Result      *domain.Result
	Statuses    []StatusStep
	RealtimeErr error
	SubmitErr   error
	FetchErr    error
	Delay       time.Duration

	RealtimeCalls int
	SubmitCalls   int
	StatusCalls   int
	FetchCalls    int
	LastPayload   payload.Payload

	mu sync.Mutex
}

var _ serp.Sender = (*Client)(nil)

func New() *Client {
	return &Client{
		JobID:  "J1",
		Result: SampleResult("J1"),
	}
}

func (c *Client) WithJobID(id string) *Client {
	c.JobID = id
	return c
}

func (c *Client) WithResult(res *domain.Result) *Client {
	c.Result = res
	return c
}

func (c *Client) WithStatuses(statuses ...domain.JobStatus) *Client {
	for _, s := range statuses {
		c.Statuses = append(c.Statuses, StatusStep{Status: s})
	}
	return c
}

func (c *Client) WithStatusError(err error) *Client {
	c.Statuses = append(c.Statuses, StatusStep{Err: err})
	return c
}

func (c *Client) WithRealtimeError(err error) *Client {
	c.RealtimeErr = err
	return c
}

func (c *Client) WithSubmitError(err error) *Client {
	c.SubmitErr = err
	return c
}

func (c *Client) WithFetchError(err error) *Client {
	c.FetchErr = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Realtime(ctx context.Context, p payload.Payload) (*domain.Result, error) {
	c.mu.Lock()
	c.RealtimeCalls++
	c.LastPayload = p
	res, err := c.Result, c.RealtimeErr
	c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) SubmitJob(ctx context.Context, p payload.Payload) (*domain.Job, error) {
	c.mu.Lock()
	c.SubmitCalls++
	c.LastPayload = p
	id, err := c.JobID, c.SubmitErr
	c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return &domain.Job{ID: id, SubmittedAt: time.Now(), Status: domain.JobPending}, nil
}

func (c *Client) JobStatus(ctx context.Context, jobID string) (domain.JobStatus, error) {
	c.mu.Lock()
	idx := c.StatusCalls
	c.StatusCalls++
	var step StatusStep
	switch {
	case len(c.Statuses) == 0:
		step = StatusStep{Status: domain.JobDone}
	case idx < len(c.Statuses):
		step = c.Statuses[idx]
	default:
		step = c.Statuses[len(c.Statuses)-1]
	}
	c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	if step.Err != nil {
		return "", step.Err
	}
	return step.Status, nil
}

func (c *Client) JobResult(ctx context.Context, jobID string) (*domain.Result, error) {
	c.mu.Lock()
	c.FetchCalls++
	res, err := c.Result, c.FetchErr
	c.mu.Unlock()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Calls() (realtime, submit, status, fetch int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.RealtimeCalls, c.SubmitCalls, c.StatusCalls, c.FetchCalls
}

func (c *Client) wait(ctx context.Context) error {
	if c.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.Delay):
		return nil
	}
}

// SampleResult - минимальный ответ сервиса для тестов
func SampleResult(jobID string) *domain.Result {
	return &domain.Result{
		Results: []domain.ResultItem{
			{
				Content:    json.RawMessage(`{"results":{"organic":[{"pos":1,"url":"https://example.com"}]}}`),
				Page:       1,
				URL:        "https://www.google.com/search?q=nike",
				JobID:      jobID,
				StatusCode: 200,
			},
		},
	}
}
