package oxylabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/payload"
	"github.com/kitbuilder587/serpclient/internal/ratelimit"
	"github.com/kitbuilder587/serpclient/internal/serp"
)

const (
	DefaultRealtimeURL = "https://realtime.oxylabs.io"
	DefaultAsyncURL    = "https://data.oxylabs.io"

	Version = "0.3.0"

	// тело ошибки в логах/ошибках обрезаем
	maxErrorBody = 512
)

type Config struct {
	Username    string
	Password    string
	RealtimeURL string
	AsyncURL    string
	Limiter     *ratelimit.Limiter
}

type Client struct {
	username    string
	password    string
	realtimeURL string
	asyncURL    string
	client      *http.Client
	limiter     *ratelimit.Limiter
	logger      *zap.Logger
}

var _ serp.Sender = (*Client)(nil)

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.RealtimeURL == "" {
		cfg.RealtimeURL = DefaultRealtimeURL
	}
	if cfg.AsyncURL == "" {
		cfg.AsyncURL = DefaultAsyncURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// без http.Client.Timeout: единственная граница вызова - дедлайн ctx
	return &Client{
		username:    cfg.Username,
		password:    cfg.Password,
		realtimeURL: cfg.RealtimeURL,
		asyncURL:    cfg.AsyncURL,
		client:      &http.Client{},
		limiter:     cfg.Limiter,
		logger:      logger,
	}
}

type submitResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) Realtime(ctx context.Context, p payload.Payload) (*domain.Result, error) {
	var res domain.Result
	if err := c.do(ctx, "realtime", http.MethodPost, c.realtimeURL+"/v1/queries", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) SubmitJob(ctx context.Context, p payload.Payload) (*domain.Job, error) {
	var resp submitResponse
	if err := c.do(ctx, "submit", http.MethodPost, c.asyncURL+"/v1/queries", p, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: submission response has no job id", serp.ErrServer)
	}

	return &domain.Job{
		ID:          resp.ID,
		SubmittedAt: time.Now(),
		Status:      domain.ParseJobStatus(resp.Status),
	}, nil
}

func (c *Client) JobStatus(ctx context.Context, jobID string) (domain.JobStatus, error) {
	var resp statusResponse
	if err := c.do(ctx, "status", http.MethodGet, c.asyncURL+"/v1/queries/"+url.PathEscape(jobID), nil, &resp); err != nil {
		return "", err
	}
	return domain.ParseJobStatus(resp.Status), nil
}

func (c *Client) JobResult(ctx context.Context, jobID string) (*domain.Result, error) {
	var res domain.Result
	if err := c.do(ctx, "result", http.MethodGet, c.asyncURL+"/v1/queries/"+url.PathEscape(jobID)+"/results", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, endpoint, method, rawURL string, body any, out any) error {
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		if ctx.Err() != nil {
			return classifyErr(ctx, err)
		}
		// rate.Limiter отказывает заранее, если токен не успеет до дедлайна
		return fmt.Errorf("%w: %v", serp.ErrTimeout, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "serpclient-go/"+Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return classifyErr(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyErr(ctx, fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("api request finished",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b := string(respBody)
		if len(b) > maxErrorBody {
			b = b[:maxErrorBody] + "..."
		}
		return &serp.StatusError{StatusCode: resp.StatusCode, Body: b}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: unmarshal response: %v", serp.ErrServer, err)
	}
	return nil
}

// classifyErr раскладывает сетевые ошибки на timeout / transport.
// Отмена самим вызывающим возвращается как context.Canceled.
func classifyErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", serp.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", serp.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", serp.ErrTransport, err)
}
