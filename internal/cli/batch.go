package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/service"
)

// batchOutput - одна строка JSON Lines на каждый запрос батча
type batchOutput struct {
	Line   int            `json:"line"`
	Source string         `json:"source"`
	Target string         `json:"target"`
	Result *domain.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	flags := &requestFlags{}
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Scrape every \"source<TAB>target\" line of a file concurrently",
		Long: `Scrape every line of a file concurrently and print one JSON object per line.

Concurrency is limited by SERP_CONCURRENCY. A failed line does not stop the others;
the command exits non-zero if any line failed. Use "-" to read from stdin.`,
		Example: `  printf 'google_search\tnike\nbing_search\tadidas\n' > queries.tsv
  serpctl batch queries.tsv --async --parse`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readBatchInput(cmd, args[0])
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return fmt.Errorf("%s: no requests", args[0])
			}

			reqs := make([]service.ScrapeRequest, 0, len(lines))
			for _, l := range lines {
				req, err := flags.request(l.Source, l.Target)
				if err != nil {
					return fmt.Errorf("line %d: %w", l.Line, err)
				}
				reqs = append(reqs, req)
			}

			app, err := root.newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer app.Close()

			var bar *progressbar.ProgressBar
			if !noProgress {
				bar = newProgressBar(cmd.ErrOrStderr(), len(reqs))
			}

			results := app.Service.Batch(cmd.Context(), reqs, func(service.BatchResult) {
				if bar != nil {
					_ = bar.Add(1)
				}
			})
			if bar != nil {
				_ = bar.Finish()
			}

			failed, err := writeBatchResults(cmd.OutOrStdout(), lines, results)
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d requests failed", failed, len(results))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Do not draw the progress bar")
	return cmd
}

func readBatchInput(cmd *cobra.Command, path string) ([]batchLine, error) {
	if path == "-" {
		return ReadBatchFile(cmd.InOrStdin())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadBatchFile(f)
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("scraping"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}

func writeBatchResults(w io.Writer, lines []batchLine, results []service.BatchResult) (failed int, err error) {
	enc := json.NewEncoder(w)
	for i, r := range results {
		out := batchOutput{
			Line:   lines[i].Line,
			Source: lines[i].Source,
			Target: lines[i].Target,
			Result: r.Result,
		}
		if r.Err != nil {
			out.Error = r.Err.Error()
			failed++
		}
		if err := enc.Encode(out); err != nil {
			return failed, err
		}
	}
	return failed, nil
}
