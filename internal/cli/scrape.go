package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/serpclient/internal/domain"
	"github.com/kitbuilder587/serpclient/internal/payload"
	"github.com/kitbuilder587/serpclient/internal/service"
)

// requestFlags - общие флаги scrape и batch
type requestFlags struct {
	async        bool
	timeout      int
	pollInterval int
	jobTimeout   int

	domain        string
	startPage     int
	pages         int
	limit         int
	userAgentType string
	locale        string
	geoLocation   string
	render        string
	callbackURL   string
	parse         bool
	parserType    string
	context       []string

	// явно заданный 0 должен дойти до валидации, а не стать дефолтом
	cmd *cobra.Command
}

func (f *requestFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	fs := cmd.Flags()
	fs.BoolVar(&f.async, "async", false, "Use the async job protocol (submit, poll, fetch) instead of realtime")
	fs.IntVar(&f.timeout, "timeout", 0, "Per-request timeout in seconds (unset = source default)")
	fs.IntVar(&f.pollInterval, "poll-interval", 0, "Seconds between job status checks (unset = source default)")
	fs.IntVar(&f.jobTimeout, "job-timeout", 0, "Seconds to wait for an async job to finish (unset = source default)")

	fs.StringVar(&f.domain, "domain", "", "Search engine domain, e.g. de or co.uk")
	fs.IntVar(&f.startPage, "start-page", 0, "First results page")
	fs.IntVar(&f.pages, "pages", 0, "Number of result pages")
	fs.IntVar(&f.limit, "limit", 0, "Results per page")
	fs.StringVar(&f.userAgentType, "user-agent", "", "User agent type: desktop, mobile, tablet, ...")
	fs.StringVar(&f.locale, "locale", "", "Accept-Language locale, e.g. en-us")
	fs.StringVar(&f.geoLocation, "geo", "", "Geo location, e.g. \"Berlin,Germany\"")
	fs.StringVar(&f.render, "render", "", "Render JavaScript: html or png")
	fs.StringVar(&f.callbackURL, "callback-url", "", "URL notified when an async job finishes")
	fs.BoolVar(&f.parse, "parse", false, "Return parsed data instead of raw HTML")
	fs.StringVar(&f.parserType, "parser-type", "", "Parser variant, e.g. ecommerce_product")
	fs.StringArrayVar(&f.context, "context", nil, "Extra context parameter key=value (repeatable)")
}

func (f *requestFlags) changed(name string) bool {
	return f.cmd != nil && f.cmd.Flags().Changed(name)
}

func (f *requestFlags) options() (payload.Options, error) {
	for name, v := range map[string]int{"start-page": f.startPage, "pages": f.pages, "limit": f.limit} {
		if f.changed(name) && v <= 0 {
			return payload.Options{}, fmt.Errorf("%w: --%s must be a positive integer, got %d", domain.ErrInvalidArgument, name, v)
		}
	}

	opts := payload.Options{
		Domain:        f.domain,
		StartPage:     f.startPage,
		Pages:         f.pages,
		Limit:         f.limit,
		UserAgentType: f.userAgentType,
		Locale:        f.locale,
		GeoLocation:   f.geoLocation,
		Render:        f.render,
		CallbackURL:   f.callbackURL,
		Parse:         f.parse,
		ParserType:    f.parserType,
	}

	for _, kv := range f.context {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return payload.Options{}, fmt.Errorf("%w: --context expects key=value, got %q", domain.ErrInvalidArgument, kv)
		}
		opts.Context = append(opts.Context, payload.ContextParam{Key: strings.TrimSpace(key), Value: contextValue(value)})
	}

	return opts, nil
}

// contextValue: true/false уходят в API булевыми, остальное строкой
func contextValue(v string) any {
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

// overrides передаёт в Resolve только явно заданные флаги, включая 0 и отрицательные
func (f *requestFlags) overrides() []domain.Option {
	opts := []domain.Option{domain.WithAsync(f.async)}
	if f.changed("timeout") {
		opts = append(opts, domain.WithRequestTimeout(seconds(f.timeout)))
	}
	if f.changed("poll-interval") {
		opts = append(opts, domain.WithPollInterval(seconds(f.pollInterval)))
	}
	if f.changed("job-timeout") {
		opts = append(opts, domain.WithJobCompletionTimeout(seconds(f.jobTimeout)))
	}
	return opts
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (f *requestFlags) request(source, target string) (service.ScrapeRequest, error) {
	opts, err := f.options()
	if err != nil {
		return service.ScrapeRequest{}, err
	}
	return service.ScrapeRequest{
		Source:    domain.Source(source),
		Target:    target,
		Options:   opts,
		Overrides: f.overrides(),
	}, nil
}

func newScrapeCmd(root *rootOptions) *cobra.Command {
	flags := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "scrape <source> <query-or-url>",
		Short: "Scrape one query or URL and print the result as JSON",
		Long: fmt.Sprintf(`Scrape one query or URL and print the result as JSON.

Sources: %s`, sourceNames()),
		Example: `  serpctl scrape google_search "nike shoes" --geo "Berlin,Germany" --parse
  serpctl scrape bing_search adidas --async --poll-interval 1
  serpctl scrape universal https://example.com --render html --timeout 120`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args[0], args[1])
			if err != nil {
				return err
			}

			app, err := root.newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Service.Scrape(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	flags.register(cmd)
	return cmd
}

func sourceNames() string {
	names := make([]string, 0, len(domain.AllSources()))
	for _, s := range domain.AllSources() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
