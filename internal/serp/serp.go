package serp

import (
	"context"
	"errors"
	"fmt"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/payload"
)

var (
	ErrTimeout        = errors.New("request timed out")
	ErrTransport      = errors.New("transport error")
	ErrServer         = errors.New("server error")
	ErrUnauthorized   = errors.New("invalid API credentials")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrInvalidRequest = errors.New("invalid request parameters")
)

// Sender - сетевой слой до API. Реализации должны быть безопасны
// для одновременного использования из нескольких горутин.
type Sender interface {
	// Realtime отправляет payload и ждёт готовый результат одним запросом.
	Realtime(ctx context.Context, p payload.Payload) (*domain.Result, error)
	// SubmitJob создаёт асинхронную задачу.
	SubmitJob(ctx context.Context, p payload.Payload) (*domain.Job, error)
	JobStatus(ctx context.Context, jobID string) (domain.JobStatus, error)
	JobResult(ctx context.Context, jobID string) (*domain.Result, error)
}

// StatusError - ответ с не-2xx кодом
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// Unwrap даёт errors.Is(err, ErrUnauthorized) и т.п.; всё остальное - ErrServer
func (e *StatusError) Unwrap() []error {
	switch e.StatusCode {
	case 401, 403:
		return []error{ErrUnauthorized, ErrServer}
	case 429:
		return []error{ErrRateLimit, ErrServer}
	case 400, 422:
		return []error{ErrInvalidRequest, ErrServer}
	default:
		return []error{ErrServer}
	}
}
