package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/kitbuilder587/serpclient/internal/domain"
)

func TestFormatJobs(t *testing.T) {
	submitted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := submitted.Add(2500 * time.Millisecond)

	records := []domain.JobRecord{
		{
			ID:          "r1",
			JobID:       "J1",
			Source:      "google_search",
			Target:      "nike",
			Mode:        domain.ModeAsync,
			Status:      domain.JobDone,
			SubmittedAt: submitted,
			FinishedAt:  &finished,
		},
		{
			ID:          "r2",
			Source:      "universal",
			Target:      "https://example.com/" + strings.Repeat("x", 100),
			Mode:        domain.ModeSync,
			Status:      domain.JobPending,
			SubmittedAt: submitted,
		},
	}

	var buf bytes.Buffer
	if err := FormatJobs(&buf, records); err != nil {
		t.Fatalf("FormatJobs() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"SOURCE", "google_search", "async", "● done", "2.5s", "J1", "◐ pending", "Total: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatJobs() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 100)) {
		t.Error("long target should be truncated")
	}
}

func TestFormatJobs_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatJobs(&buf, nil); err != nil {
		t.Fatalf("FormatJobs() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Total: 0") {
		t.Errorf("FormatJobs() = %q", buf.String())
	}
}

func TestTruncateTarget(t *testing.T) {
	tests := []struct {
		name   string
		target string
		maxLen int
		want   string
	}{
		{"short", "nike", 10, "nike"},
		{"exact", "0123456789", 10, "0123456789"},
		{"long", "0123456789abc", 10, "0123456..."},
		{"unicode", "кроссовки найк", 8, "кросс..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateTarget(tt.target, tt.maxLen); got != tt.want {
				t.Errorf("truncateTarget(%q, %d) = %q, want %q", tt.target, tt.maxLen, got, tt.want)
			}
		})
	}
}
