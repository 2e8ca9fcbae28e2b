package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"sla-insights/config"
	"sla-insights/logging"
	"sla-insights/metrics"
	"sla-insights/normalizer"
	"sla-insights/repository"
)

// version is set at build time via -ldflags.
var version = "dev"

// app is the per-invocation session: configuration plus the repository loaded once.
type app struct {
	configPath  string
	statePath   string
	insightPath string
	logLevel    string
	logFormat   string
	metricsAddr string
	pushURL     string
	wait        bool

	cfg    config.Config
	logger *slog.Logger
	repo   *repository.Repository
	stats  normalizer.JoinStats
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "slainsights",
		Short: "SLA risk analytics for service-queue cases",
		Long: "slainsights joins operational state and risk insight CSVs into one case set\n" +
			"and reports risk distributions, bottlenecks, trends and what-if simulations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.finish(cmd.Context())
		},
	}
	root.Version = version

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (YAML or JSON)")
	pf.StringVar(&a.statePath, "state", "", "Operational state CSV (overrides config)")
	pf.StringVar(&a.insightPath, "insights", "", "Decision insights CSV (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: text|json")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pf.StringVar(&a.pushURL, "push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	pf.BoolVar(&a.wait, "wait", false, "Keep process running after completion to allow for metric scraping")

	root.AddCommand(
		newReportCmd(a),
		newCasesCmd(a),
		newPlanCmd(a),
		newSimulateCmd(a),
		newStaffingCmd(a),
		newExportCmd(a),
	)
	return root
}

// setup resolves configuration, logging and the metrics endpoint.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.LoadFromPath(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.statePath != "" {
		cfg.Data.StatePath = a.statePath
	}
	if a.insightPath != "" {
		cfg.Data.InsightPath = a.insightPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.metricsAddr != "" {
		cfg.Metrics.Addr = a.metricsAddr
	}
	if a.pushURL != "" {
		cfg.Metrics.PushURL = a.pushURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())
	a.logger = logging.New("cli")
	a.cfg = cfg

	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			a.logger.Info("metrics server listening", "addr", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server error", "error", err)
			}
		}()
	}
	return nil
}

// load builds the repository on first use. It is the single load of the session.
func (a *app) load(ctx context.Context) (*repository.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	repo, stats, err := repository.Load(ctx, a.cfg.Data.StatePath, a.cfg.Data.InsightPath)
	if err != nil {
		return nil, err
	}
	if stats.Dropped() > 0 || stats.UnmatchedInsight > 0 {
		a.logger.Warn("rows dropped during join",
			"missing_id", stats.MissingID,
			"unmatched_state", stats.UnmatchedState,
			"unmatched_insight", stats.UnmatchedInsight,
			"duplicate_state", stats.DuplicateState,
		)
	}
	a.repo, a.stats = repo, stats
	return repo, nil
}

// finish pushes metrics and optionally waits for a final scrape.
func (a *app) finish(ctx context.Context) error {
	if a.cfg.Metrics.PushURL != "" {
		if err := push.New(a.cfg.Metrics.PushURL, "sla_insights").Gatherer(metrics.Registry).PushContext(ctx); err != nil {
			a.logger.Error("push metrics", "url", a.cfg.Metrics.PushURL, "error", err)
		} else {
			a.logger.Info("metrics pushed", "url", a.cfg.Metrics.PushURL)
		}
	}

	if a.wait && a.cfg.Metrics.Addr != "" {
		a.logger.Info("process kept alive for metric scraping; press Ctrl+C to exit")
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		select {
		case <-c:
		case <-ctx.Done():
		}
	}
	return nil
}
