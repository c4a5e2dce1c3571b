package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/spider/internal/config"
	"github.com/nao1215/spider/internal/dedup"
	"github.com/nao1215/spider/internal/engine"
	"github.com/nao1215/spider/internal/log"
	"github.com/nao1215/spider/internal/model"
	"github.com/nao1215/spider/internal/report"
	"github.com/nao1215/spider/internal/runner"
	"github.com/nao1215/spider/internal/sink"
	"github.com/nao1215/spider/internal/transport"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the spiders of a crawl definition",
		Long: `Run crawls with every spider defined in spider.yaml, or only the
spiders named with --spider.

Extracted rows go to the configured sinks. When all spiders have
stopped, a summary report is written to stderr, or to the --output file
with a text copy on stderr.
The exit status is non-zero when any spider failed.

Examples:
  # Run every spider in ./spider.yaml
  spider run

  # Run two spiders side by side
  spider run --spider blog --spider news --parallel 2

  # Stop each spider after 20 pages and keep a JSON report
  spider run --max-pages 20 --report json -o report.json

  # Use a definition from another location
  spider run -c crawls/news.yaml`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Crawl definition path (default: ./spider.yaml, then the XDG config directory)")
	cmd.Flags().StringSliceP("spider", "s", nil,
		"Run only the named spider (repeatable)")
	cmd.Flags().IntP("parallel", "p", config.DefaultParallel,
		"Number of spiders running at once")
	cmd.Flags().IntP("max-pages", "m", 0,
		"Page limit per spider, overriding the definition (0 keeps it)")
	cmd.Flags().StringP("report", "r", report.FormatText,
		"Report format: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file (creates directories if needed)")
	cmd.Flags().Bool("json-logs", false, "Write logs as JSON lines")
	cmd.Flags().BoolP("quiet", "q", false, "Only log warnings and errors")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cmd.ErrOrStderr(), log.Options{
		Verbose: cfg.Verbose,
		Quiet:   cfg.Quiet,
		JSON:    cfg.JSONLogs,
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSpiders(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	flags := cmd.Flags()

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Spiders, err = flags.GetStringSlice("spider"); err != nil {
		return nil, err
	}
	if cfg.Parallel, err = flags.GetInt("parallel"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.ReportFormat, err = flags.GetString("report"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.JSONLogs, err = flags.GetBool("json-logs"); err != nil {
		return nil, err
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDefinition loads .env and the crawl definition.
// An explicit path that does not exist is an error; otherwise the
// default locations are searched.
func loadDefinition(configPath string) (*config.File, error) {
	if err := config.LoadEnv(config.DefaultEnvFile); err != nil {
		return nil, err
	}

	path := config.FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: no %s found (run 'spider init' to create one)",
			config.ErrConfigNotFound, config.DefaultConfigFile)
	}
	return config.LoadFile(path)
}

// runSpiders executes the selected spiders and writes the report.
func runSpiders(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) (err error) {
	def, err := loadDefinition(cfg.ConfigFilePath)
	if err != nil {
		return err
	}

	selected, err := def.Select(cfg.Spiders)
	if err != nil {
		return err
	}

	// Chains are built up front so a broken template stops the run
	// before anything is fetched.
	chains := make([]*model.Chain, len(selected))
	for i, sp := range selected {
		if chains[i], err = sp.Chain(); err != nil {
			return err
		}
	}

	if def.Fetcher.Proxy != "" {
		if err := checkProxy(ctx, def.Fetcher, logger); err != nil {
			return err
		}
	}

	filter, err := def.Dedup.NewFilter(ctx)
	if err != nil {
		return fmt.Errorf("failed to open dedup filter: %w", err)
	}
	defer closeFilter(filter, logger)

	sinks, err := def.NewSinks(ctx, stdout, logger)
	if err != nil {
		return fmt.Errorf("failed to open sinks: %w", err)
	}
	defer func() {
		if closeErr := sinks.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close sinks: %w", closeErr))
		}
	}()

	logger.Info("starting run",
		"spiders", len(selected),
		"parallel", cfg.Parallel,
		"dedup", def.Dedup.Kind,
		"sinks", sinks.Len(),
	)

	jobs := make([]runner.Job, len(selected))
	for i, sp := range selected {
		jobs[i] = runner.Job{
			Name:  sp.Name,
			Build: spiderFactory(def, sp, chains[i], cfg.MaxPages, filter, sinks, logger),
		}
	}

	batch := runner.NewBatch(
		runner.WithConcurrency(cfg.Parallel),
		runner.WithLogger(logger),
	)
	results, runErr := batch.Run(ctx, jobs)

	summary := report.NewSummary(results)
	if err := outputReport(cfg, summary, stderr); err != nil {
		logger.Error("report failed", "error", err)
	}

	if runErr != nil {
		return runErr
	}
	if !summary.OK() {
		return fmt.Errorf("%d of %d spiders failed", summary.Failed, len(summary.Spiders))
	}
	return nil
}

// spiderFactory returns the Build function of a runner job. Each spider
// gets its own fetcher; the dedup filter and sinks are shared.
func spiderFactory(
	def *config.File,
	sp config.SpiderConfig,
	chain *model.Chain,
	maxPages int,
	filter dedup.Filter,
	sinks sink.Sink,
	logger *slog.Logger,
) func() (*engine.Spider, error) {
	return func() (*engine.Spider, error) {
		fetcher, err := def.Fetcher.NewFetcher(logger, sp.NeedsRender())
		if err != nil {
			return nil, err
		}

		limit := maxPages
		if limit == 0 {
			limit = sp.MaxPages
		}

		return engine.New(sp.Name, chain,
			engine.WithLogger(logger),
			engine.WithMaxPages(limit),
			engine.WithFetcher(fetcher),
			engine.WithFilter(filter),
			engine.WithSink(sinks),
		)
	}
}

// checkProxy verifies that the configured SOCKS5 proxy answers.
func checkProxy(ctx context.Context, fc config.FetcherConfig, logger *slog.Logger) error {
	client, err := transport.NewClient(fc.Proxy, fc.Timeout)
	if err != nil {
		return fmt.Errorf("proxy %q: %w", fc.Proxy, err)
	}

	status := client.CheckConnection(ctx)
	if err := status.Error(); err != nil {
		return fmt.Errorf("proxy check failed: %s (make sure a SOCKS5 proxy is running at %s): %w",
			status, fc.Proxy, err)
	}

	logger.Info("proxy connection verified", "address", client.ProxyAddress())
	return nil
}

// closeFilter closes dedup backends that hold connections or files.
func closeFilter(filter dedup.Filter, logger *slog.Logger) {
	closer, ok := filter.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close dedup filter", "error", err)
	}
}

// outputReport writes the summary in the requested format to stderr, or to
// the output file with a text copy on stderr.
func outputReport(cfg *config.Config, summary *report.Summary, stderr io.Writer) error {
	if cfg.ReportFile == "" {
		writer, err := report.NewWriter(cfg.ReportFormat, stderr)
		if err != nil {
			return err
		}
		_, err = writer.Write(summary)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	fileWriter, err := report.NewWriter(cfg.ReportFormat, f)
	if err != nil {
		return err
	}
	writer := report.NewMultiWriter(fileWriter, report.NewTextWriter(stderr))
	_, err = writer.Write(summary)
	return err
}
