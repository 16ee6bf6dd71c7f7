package domain

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid request config")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownSource   = errors.New("unknown source")
)

// ошибки асинхронного протокола
var (
	ErrSubmission           = errors.New("job submission failed")
	ErrJobFailed            = errors.New("job failed")
	ErrJobCompletionTimeout = errors.New("job completion timeout")
	ErrFetch                = errors.New("job result fetch failed")
)

var (
	ErrJobNotFound = errors.New("job not found")
)
