package domain

import (
	"fmt"
	"time"
)

// RequestConfig - итоговые таймауты одного вызова. Собирается через Resolve.
type RequestConfig struct {
	RequestTimeout       time.Duration
	PollInterval         time.Duration
	JobCompletionTimeout time.Duration
	Async                bool
}

// Defaults - значения по умолчанию для семейства продуктов.
type Defaults struct {
	RequestTimeout       time.Duration
	PollInterval         time.Duration
	JobCompletionTimeout time.Duration
}

var (
	SERPDefaults = Defaults{
		RequestTimeout:       50 * time.Second,
		PollInterval:         2 * time.Second,
		JobCompletionTimeout: 50 * time.Second,
	}
	EcommerceDefaults = Defaults{
		RequestTimeout:       165 * time.Second,
		PollInterval:         5 * time.Second,
		JobCompletionTimeout: 50 * time.Second,
	}
)

type overrides struct {
	requestTimeout       *time.Duration
	pollInterval         *time.Duration
	jobCompletionTimeout *time.Duration
	async                bool
}

type Option func(*overrides)

func WithRequestTimeout(d time.Duration) Option {
	return func(o *overrides) { o.requestTimeout = &d }
}

func WithPollInterval(d time.Duration) Option {
	return func(o *overrides) { o.pollInterval = &d }
}

func WithJobCompletionTimeout(d time.Duration) Option {
	return func(o *overrides) { o.jobCompletionTimeout = &d }
}

func WithAsync(async bool) Option {
	return func(o *overrides) { o.async = async }
}

// Resolve мержит явные значения с дефолтами семейства.
func Resolve(defaults Defaults, opts ...Option) (RequestConfig, error) {
	var o overrides
	for _, opt := range opts {
		opt(&o)
	}

	cfg := RequestConfig{
		RequestTimeout:       defaults.RequestTimeout,
		PollInterval:         defaults.PollInterval,
		JobCompletionTimeout: defaults.JobCompletionTimeout,
		Async:                o.async,
	}

	if o.requestTimeout != nil {
		if *o.requestTimeout <= 0 {
			return RequestConfig{}, fmt.Errorf("%w: request timeout must be positive, got %v", ErrInvalidConfig, *o.requestTimeout)
		}
		cfg.RequestTimeout = *o.requestTimeout
	}
	if o.pollInterval != nil {
		if *o.pollInterval <= 0 {
			return RequestConfig{}, fmt.Errorf("%w: poll interval must be positive, got %v", ErrInvalidConfig, *o.pollInterval)
		}
		cfg.PollInterval = *o.pollInterval
	}
	if o.jobCompletionTimeout != nil {
		if *o.jobCompletionTimeout <= 0 {
			return RequestConfig{}, fmt.Errorf("%w: job completion timeout must be positive, got %v", ErrInvalidConfig, *o.jobCompletionTimeout)
		}
		cfg.JobCompletionTimeout = *o.jobCompletionTimeout
	}

	if err := cfg.Validate(); err != nil {
		return RequestConfig{}, err
	}
	return cfg, nil
}

func (c RequestConfig) Validate() error {
	if c.RequestTimeout <= 0 || c.PollInterval <= 0 || c.JobCompletionTimeout <= 0 {
		return fmt.Errorf("%w: all timeouts must be positive", ErrInvalidConfig)
	}
	if c.PollInterval >= c.JobCompletionTimeout {
		return fmt.Errorf("%w: poll interval %v must be less than job completion timeout %v",
			ErrInvalidConfig, c.PollInterval, c.JobCompletionTimeout)
	}
	return nil
}
