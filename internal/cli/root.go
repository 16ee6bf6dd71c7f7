package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kitbuilder587/serpclient/internal/config"
	"github.com/kitbuilder587/serpclient/internal/credentials"
	"github.com/kitbuilder587/serpclient/internal/serp/oxylabs"
)

// SecretStore - keyring или его подмена в тестах
type SecretStore interface {
	Get(username string) (string, error)
	Set(username, password string) error
	Delete(username string) error
}

type rootOptions struct {
	logLevel    string
	metricsAddr string
	secrets     SecretStore
}

func NewRootCmd(secrets SecretStore) *cobra.Command {
	opts := &rootOptions{secrets: secrets}

	root := &cobra.Command{
		Use:     "serpctl",
		Short:   "Client for the scraper API: search engines, e-commerce and arbitrary URLs",
		Version: oxylabs.Version,
		Long: `serpctl sends scraping requests to the remote API and prints the result as JSON.

Credentials come from SERP_USERNAME / SERP_PASSWORD; the password can be
stored in the OS keyring with "serpctl login".`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.PersistentFlags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090; overrides METRICS_ADDR")

	root.AddCommand(
		newScrapeCmd(opts),
		newBatchCmd(opts),
		newJobsCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
	)

	return root
}

// Execute запускается из main, Ctrl+C отменяет текущий запрос
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(credentials.NewKeyring()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.secrets)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Addr = o.metricsAddr
	}
	return cfg, nil
}

func (o *rootOptions) newApp(ctx context.Context, needAPI bool) (*App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	app, err := NewApp(ctx, cfg, logger, needAPI)
	if err != nil {
		logger.Debug("app init failed", zap.Error(err))
		_ = logger.Sync()
		return nil, err
	}
	return app, nil
}
