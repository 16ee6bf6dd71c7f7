package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/kitbuilder587/serpclient/internal/domain"
)

const maxTargetLen = 48

// FormatJobs печатает историю таблицей, новые сверху
func FormatJobs(w io.Writer, records []domain.JobRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "SUBMITTED\tSOURCE\tMODE\tSTATUS\tDURATION\tJOB ID\tTARGET")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.SubmittedAt.Local().Format(time.DateTime),
			r.Source,
			r.Mode,
			getStatusIcon(r.Status)+" "+string(r.Status),
			formatDuration(r),
			orDash(r.JobID),
			truncateTarget(r.Target, maxTargetLen),
		)
	}
	fmt.Fprintf(tw, "\nTotal: %d\n", len(records))

	return tw.Flush()
}

func getStatusIcon(status domain.JobStatus) string {
	switch status {
	case domain.JobDone:
		return "●"
	case domain.JobPending:
		return "◐"
	case domain.JobFailed:
		return "✗"
	default:
		return "○"
	}
}

func formatDuration(r domain.JobRecord) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.SubmittedAt).Round(100 * time.Millisecond).String()
}

func truncateTarget(target string, maxLen int) string {
	runes := []rune(target)
	if len(runes) <= maxLen {
		return target
	}
	return string(runes[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
