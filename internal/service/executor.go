package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/payload"
	"github.com/kitbuilder587/serpclient/internal/serp"
)

// Executor - синхронный режим: один запрос, сервер держит соединение до готовности
type Executor struct {
	sender serp.Sender
	logger *zap.Logger
}

func NewExecutor(sender serp.Sender, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{sender: sender, logger: logger}
}

// Execute делает одну попытку без ретраев. Ошибки: serp.ErrTimeout,
// serp.ErrTransport, serp.ErrServer (как *serp.StatusError).
func (e *Executor) Execute(ctx context.Context, p payload.Payload, cfg domain.RequestConfig) (*domain.Result, error) {
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("%w: request timeout must be positive", domain.ErrInvalidConfig)
	}

	reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	res, err := e.sender.Realtime(reqCtx, p)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, serp.ErrTimeout) {
			err = fmt.Errorf("%w: no response within %v", serp.ErrTimeout, cfg.RequestTimeout)
		}
		e.logger.Debug("realtime request failed",
			zap.String("source", string(p.Source())),
			zap.Error(err),
		)
		return nil, err
	}

	return res, nil
}
