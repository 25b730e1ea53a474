package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitecrawl/internal/config"
	"sitecrawl/internal/crawler"
	"sitecrawl/internal/frontier"
	"sitecrawl/internal/logging"
	"sitecrawl/internal/metrics"
	"sitecrawl/internal/parser"
	"sitecrawl/internal/report"
	"sitecrawl/internal/storage"
	"sitecrawl/internal/transport"
)

func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <domain>",
		Short: "Crawl and audit a site",
		Long: `Crawl fetches the home page of <domain>, then every same-site page it links
to, and reports SEO issues per page. It keeps running and picks up new
links from the home page until interrupted, or stops once everything found
is done when --once is given.

Examples:
  sitecrawl crawl example.com
  sitecrawl crawl --once --concurrency 8 --detect-body example.com
  sitecrawl crawl --once --markdown -o reports/example.md https://www.example.com

Environment (also read from --env-file):
  MONGODB_URI        mirror results into MongoDB
  MONGODB_DATABASE   database name (default: sitecrawl)`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	f := cmd.Flags()
	f.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each relay attempt")
	f.IntP("concurrency", "n", config.DefaultConcurrency,
		fmt.Sprintf("Parallel fetches (clamped to 1..%d)", crawler.MaxConcurrency))
	f.IntP("limit", "l", config.DefaultPageLimit, "Maximum number of pages to queue")
	f.Int("max-depth", config.DefaultMaxDepth, "Link expansion depth (never deeper than 1)")
	f.Int64("max-body-size", config.DefaultMaxBodySize, "Maximum bytes read per response")
	f.String("user-agent", config.DefaultUserAgent, "User-Agent header")
	f.Bool("detect-body", false, "Also check each page for a main content block")
	f.Int("retries", 0, "Retry a failed page this many times (backoff waits free the fetch slot)")
	f.Duration("retry-backoff", config.DefaultRetryBackoff, "Wait before retry n is n times this")
	f.Bool("once", false, "Stop when every discovered page is done")

	f.BoolP("json", "j", false, "Write a JSON report (mutually exclusive with --markdown)")
	f.BoolP("markdown", "m", false, "Write a Markdown report (mutually exclusive with --json)")
	f.StringP("report-file", "o", "", "Write the report to this file instead of stdout")

	f.String("metrics-addr", config.DefaultMetricsAddr, "Serve Prometheus metrics here (empty disables)")
	f.String("env-file", ".env", "Load environment variables from this file if it exists")
	f.Bool("log-json", false, "Log JSON lines instead of console text")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose, cfg.JSONLog)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig layers defaults, the config file, the environment and the
// flags the user set explicitly.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Domain = args[0]

	f := cmd.Flags()
	cfg.Timeout, _ = f.GetDuration("timeout")
	cfg.Concurrency, _ = f.GetInt("concurrency")
	cfg.PageLimit, _ = f.GetInt("limit")
	cfg.MaxDepth, _ = f.GetInt("max-depth")
	cfg.MaxBodySize, _ = f.GetInt64("max-body-size")
	cfg.UserAgent, _ = f.GetString("user-agent")
	cfg.DetectBody, _ = f.GetBool("detect-body")
	cfg.Retries, _ = f.GetInt("retries")
	cfg.RetryBackoff, _ = f.GetDuration("retry-backoff")
	cfg.Once, _ = f.GetBool("once")
	cfg.JSONReport, _ = f.GetBool("json")
	cfg.MarkdownReport, _ = f.GetBool("markdown")
	cfg.ReportFile, _ = f.GetString("report-file")
	cfg.MetricsAddr, _ = f.GetString("metrics-addr")
	cfg.JSONLog, _ = f.GetBool("log-json")
	cfg.Verbose = getVerboseFlag(cmd)

	if err := applyConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	envFile, _ := f.GetString("env-file")
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || f.Changed("env-file") {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)

	return cfg, nil
}

// applyConfigFile loads the YAML file, if any, without overriding flags
// given on the command line.
func applyConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	cfg.ConfigFilePath, _ = cmd.Flags().GetString("config")

	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	file.Apply(cfg, cmd.Flags().Changed)
	return nil
}

func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, _ = cmd.Root().PersistentFlags().GetBool("verbose")
	}
	return verbose
}

func runCrawl(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	site, err := frontier.NewSite(cfg.Domain)
	if err != nil {
		return fmt.Errorf("%w %q: %v", crawler.ErrInvalidDomain, cfg.Domain, err)
	}

	relays, err := cfg.RelayChain()
	if err != nil {
		return err
	}
	tr := transport.New(
		transport.WithRelays(relays),
		transport.WithTimeout(cfg.Timeout),
		transport.WithUserAgent(cfg.UserAgent),
		transport.WithMaxBodySize(cfg.MaxBodySize),
		transport.WithLogger(logger.Named("transport")),
	)

	if cfg.MongoURI != "" {
		logger.Info("using MongoDB", zap.String("uri", logging.RedactURI(cfg.MongoURI)))
	}
	store, err := storage.New(ctx, cfg.MongoURI, cfg.MongoDatabase, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() { _ = store.Close(context.Background()) }()
	if err := store.Reset(ctx, site.Home); err != nil {
		return fmt.Errorf("reset MongoDB results: %w", err)
	}

	collector := report.NewCollector(site.Home)
	reporters := report.Multi{report.NewConsole(logger), collector}
	if store.Enabled() {
		reporters = append(reporters, store)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Warn("metrics server failed", zap.Error(err))
			}
		}()
	}

	engine := crawler.NewEngine(
		tr,
		parser.Extractor{DetectBody: cfg.DetectBody},
		reporters,
		crawler.WithLogger(logger),
	)
	if err := engine.Start(ctx, cfg.Domain, cfg.CrawlOptions()); err != nil {
		return err
	}

	status := report.StatusStopped
	if cfg.Once {
		select {
		case <-engine.Idle():
			status = report.StatusCompleted
		case <-ctx.Done():
		}
	} else {
		<-ctx.Done()
	}
	engine.Stop()

	rep := collector.Snapshot(status)
	ok, bad := rep.Counts()
	logger.Info("crawl "+status,
		zap.String("site", rep.Site),
		zap.Int("completed", rep.Completed),
		zap.Int("planned", rep.Planned),
		zap.Int("ok", ok),
		zap.Int("bad", bad))

	return writeReport(cfg, rep, stdout)
}

func writeReport(cfg *config.Config, rep *report.Report, stdout io.Writer) error {
	out := stdout
	if cfg.ReportFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.ReportFile), 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
		file, err := os.Create(cfg.ReportFile)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer file.Close()
		out = file
	}

	w, err := report.NewWriter(cfg.ReportFormat(), out)
	if err != nil {
		return err
	}
	if _, err := w.Write(rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
