package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/payload"
	"github.com/kitbuilder587/serpclient/internal/serp"
	"github.com/kitbuilder587/serpclient/internal/serp/mock"
)

func testPayload(t *testing.T) payload.Payload {
	t.Helper()
	p, err := payload.Build(domain.SourceGoogleSearch, "nike", payload.Options{})
	if err != nil {
		t.Fatalf("payload.Build() error = %v", err)
	}
	return p
}

func testConfig(poll, job time.Duration) domain.RequestConfig {
	return domain.RequestConfig{
		RequestTimeout:       5 * time.Second,
		PollInterval:         poll,
		JobCompletionTimeout: job,
		Async:                true,
	}
}

func TestJobClient_RunAsync_DoneAfterPending(t *testing.T) {
	sender := mock.New().WithStatuses(domain.JobPending, domain.JobPending, domain.JobDone)
	client := NewJobClient(sender, zap.NewNop(), nil)

	start := time.Now()
	res, err := client.RunAsync(context.Background(), testPayload(t), testConfig(time.Second, 10*time.Second))
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("RunAsync() error = %v", err)
	}
	if !reflect.DeepEqual(res, mock.SampleResult("J1")) {
		t.Errorf("RunAsync() result = %+v", res)
	}
	if elapsed < 2*time.Second || elapsed >= 3*time.Second {
		t.Errorf("RunAsync() took %v, want [2s, 3s)", elapsed)
	}

	_, submit, status, fetch := sender.Calls()
	if submit != 1 {
		t.Errorf("submit calls = %d, want 1", submit)
	}
	if status != 3 {
		t.Errorf("status calls = %d, want 3", status)
	}
	if fetch != 1 {
		t.Errorf("fetch calls = %d, want 1", fetch)
	}
}

func TestJobClient_RunAsync_ImmediateDone(t *testing.T) {
	sender := mock.New().WithStatuses(domain.JobDone)
	client := NewJobClient(sender, zap.NewNop(), nil)

	start := time.Now()
	_, err := client.RunAsync(context.Background(), testPayload(t), testConfig(time.Second, 10*time.Second))
	if err != nil {
		t.Fatalf("RunAsync() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed >= 500*time.Millisecond {
		t.Errorf("RunAsync() took %v, first poll should not wait for interval", elapsed)
	}
}

func TestJobClient_RunAsync_CompletionTimeout(t *testing.T) {
	sender := mock.New().WithStatuses(domain.JobPending)
	client := NewJobClient(sender, zap.NewNop(), nil)

	start := time.Now()
	_, err := client.RunAsync(context.Background(), testPayload(t), testConfig(time.Second, 5*time.Second))
	elapsed := time.Since(start)

	if !errors.Is(err, domain.ErrJobCompletionTimeout) {
		t.Fatalf("RunAsync() error = %v, want ErrJobCompletionTimeout", err)
	}
	if elapsed < 5*time.Second || elapsed >= 6*time.Second {
		t.Errorf("RunAsync() took %v, want [5s, 6s)", elapsed)
	}
	if _, _, _, fetch := sender.Calls(); fetch != 0 {
		t.Errorf("fetch calls = %d, want 0", fetch)
	}
}

func TestJobClient_RunAsync_DeadlineBoundsSlowStatusCall(t *testing.T) {
	// статус отвечает дольше, чем осталось до дедлайна
	sender := mock.New().WithStatuses(domain.JobPending).WithDelay(800 * time.Millisecond)
	client := NewJobClient(sender, zap.NewNop(), nil)

	start := time.Now()
	_, err := client.RunAsync(context.Background(), testPayload(t), testConfig(500*time.Millisecond, 2*time.Second))
	elapsed := time.Since(start)

	if !errors.Is(err, domain.ErrJobCompletionTimeout) {
		t.Fatalf("RunAsync() error = %v, want ErrJobCompletionTimeout", err)
	}
	if elapsed >= 3*time.Second {
		t.Errorf("RunAsync() took %v, deadline should interrupt in-flight status call", elapsed)
	}
}

func TestJobClient_RunAsync_Failed(t *testing.T) {
	sender := mock.New().WithStatuses(domain.JobPending, domain.JobFailed)
	client := NewJobClient(sender, zap.NewNop(), nil)

	_, err := client.RunAsync(context.Background(), testPayload(t), testConfig(100*time.Millisecond, 5*time.Second))

	if !errors.Is(err, domain.ErrJobFailed) {
		t.Fatalf("RunAsync() error = %v, want ErrJobFailed", err)
	}
	if _, _, _, fetch := sender.Calls(); fetch != 0 {
		t.Errorf("fetch calls = %d, want 0", fetch)
	}
}

func TestJobClient_RunAsync_StatusErrorIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transport", serp.ErrTransport},
		{"server 503", &serp.StatusError{StatusCode: 503, Body: "unavailable"}},
		{"timeout", serp.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := mock.New().WithStatusError(tt.err).WithStatuses(domain.JobDone)
			client := NewJobClient(sender, zap.NewNop(), nil)

			res, err := client.RunAsync(context.Background(), testPayload(t), testConfig(100*time.Millisecond, 5*time.Second))
			if err != nil {
				t.Fatalf("RunAsync() error = %v", err)
			}
			if res == nil || len(res.Results) != 1 {
				t.Errorf("RunAsync() result = %+v", res)
			}
			if _, _, status, fetch := sender.Calls(); status != 2 || fetch != 1 {
				t.Errorf("status calls = %d, fetch calls = %d; want 2, 1", status, fetch)
			}
		})
	}
}

func TestJobClient_RunAsync_SubmissionError(t *testing.T) {
	sender := mock.New().WithSubmitError(&serp.StatusError{StatusCode: 401, Body: "bad credentials"})
	client := NewJobClient(sender, zap.NewNop(), nil)

	_, err := client.RunAsync(context.Background(), testPayload(t), testConfig(time.Second, 5*time.Second))

	if !errors.Is(err, domain.ErrSubmission) {
		t.Fatalf("RunAsync() error = %v, want ErrSubmission", err)
	}
	if !errors.Is(err, serp.ErrUnauthorized) {
		t.Errorf("RunAsync() error = %v, should keep ErrUnauthorized cause", err)
	}
	if _, _, status, fetch := sender.Calls(); status != 0 || fetch != 0 {
		t.Errorf("status calls = %d, fetch calls = %d; want 0, 0", status, fetch)
	}
}

func TestJobClient_RunAsync_FetchError(t *testing.T) {
	sender := mock.New().WithStatuses(domain.JobDone).WithFetchError(&serp.StatusError{StatusCode: 500})
	client := NewJobClient(sender, zap.NewNop(), nil)

	_, err := client.RunAsync(context.Background(), testPayload(t), testConfig(time.Second, 5*time.Second))

	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("RunAsync() error = %v, want ErrFetch", err)
	}
	if !errors.Is(err, serp.ErrServer) {
		t.Errorf("RunAsync() error = %v, should keep ErrServer cause", err)
	}
	if _, _, _, fetch := sender.Calls(); fetch != 1 {
		t.Errorf("fetch calls = %d, want 1 (no retries)", fetch)
	}
}

func TestJobClient_RunAsync_Cancelled(t *testing.T) {
	sender := mock.New().WithStatuses(domain.JobPending)
	client := NewJobClient(sender, zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	start := time.Now()
	_, err := client.RunAsync(ctx, testPayload(t), testConfig(100*time.Millisecond, 10*time.Second))

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunAsync() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, domain.ErrJobCompletionTimeout) {
		t.Errorf("cancellation must not be reported as completion timeout")
	}
	if elapsed := time.Since(start); elapsed >= time.Second {
		t.Errorf("RunAsync() took %v after cancel", elapsed)
	}
	if _, _, _, fetch := sender.Calls(); fetch != 0 {
		t.Errorf("fetch calls = %d, want 0", fetch)
	}
}

func TestJobClient_RunAsync_InvalidConfig(t *testing.T) {
	sender := mock.New()
	client := NewJobClient(sender, zap.NewNop(), nil)

	cfg := testConfig(5*time.Second, 5*time.Second)
	_, err := client.RunAsync(context.Background(), testPayload(t), cfg)

	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("RunAsync() error = %v, want ErrInvalidConfig", err)
	}
	if _, submit, _, _ := sender.Calls(); submit != 0 {
		t.Errorf("submit calls = %d, want 0", submit)
	}
}

func TestJobClient_RunAsync_Concurrent(t *testing.T) {
	sender := mock.New().WithStatuses(domain.JobPending, domain.JobDone)
	client := NewJobClient(sender, zap.NewNop(), nil)

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := client.RunAsync(context.Background(), testPayload(t), testConfig(50*time.Millisecond, 5*time.Second))
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Errorf("RunAsync() error = %v", err)
		}
	}
	if _, submit, _, fetch := sender.Calls(); submit != n || fetch != n {
		t.Errorf("submit = %d, fetch = %d; want %d each", submit, fetch, n)
	}
}
