package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/vitalis/analyst/internal/analysis"
	"github.com/Guliveer/vitalis/analyst/internal/collector"
	"github.com/Guliveer/vitalis/analyst/internal/config"
	"github.com/Guliveer/vitalis/analyst/internal/logging"
	"github.com/Guliveer/vitalis/analyst/internal/metrics"
	"github.com/Guliveer/vitalis/analyst/internal/pipeline"
	"github.com/Guliveer/vitalis/analyst/internal/render"
)

type rootFlags struct {
	configPath   string
	model        string
	endpoint     string
	apiKey       string
	timeout      float64
	collectOnly  bool
	output       string
	raw          bool
	topProcesses int
	logLevel     string
	metricsFile  string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "analyst",
		Short: "Collect a host telemetry snapshot and ask an LLM to analyse it",
		Long: `analyst gathers a one-shot snapshot of host telemetry (CPU, memory, disks,
network, processes, temperatures, systemd units) and sends it to an
OpenAI-compatible chat-completions endpoint for a short analysis.

Examples:
  # Print the snapshot without calling the API
  analyst --collect-only

  # Analyse with a different model and a short timeout
  OPENAI_API_KEY=sk-... analyst --model gpt-4o --timeout 10

  # Machine-readable output including the provider response
  analyst -o json --raw`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyst(cmd, f)
		},
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&f.configPath, "config", "c", "", "Path to configuration file (default: auto-discover)")
	flags.StringVar(&f.model, "model", "", fmt.Sprintf("Chat model to use (default %q)", analysis.DefaultModel))
	flags.StringVar(&f.endpoint, "endpoint", "", fmt.Sprintf("Chat-completions endpoint (default %q)", analysis.DefaultEndpoint))
	flags.StringVar(&f.apiKey, "api-key", "", "API key (default: read from "+config.EnvAPIKey+")")
	flags.Float64Var(&f.timeout, "timeout", analysis.DefaultTimeout.Seconds(), "Timeout for the API request in seconds")
	flags.BoolVar(&f.collectOnly, "collect-only", false, "Collect telemetry and print it without calling the API")
	flags.StringVarP(&f.output, "output", "o", "", "Output format (text, json, yaml)")
	flags.BoolVar(&f.raw, "raw", false, "Include the raw provider response")
	flags.IntVar(&f.topProcesses, "top-processes", collector.DefaultTopProcesses, "Number of processes listed by CPU usage")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")

	rootCmd.AddCommand(
		newConfigCmd(f),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vitalis-analyst %s\n", version)
		},
	}
}

func newConfigCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// loadConfig layers file, env and the flags the user actually set.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	flags := cmd.Flags()
	cli := config.CLIOverrides{
		Model:       f.model,
		Endpoint:    f.endpoint,
		APIKey:      f.apiKey,
		LogLevel:    f.logLevel,
		Format:      f.output,
		MetricsFile: f.metricsFile,
		Raw:         f.raw,
	}
	if flags.Changed("timeout") {
		cli.Timeout = &f.timeout
	}
	if flags.Changed("top-processes") {
		cli.TopProcesses = &f.topProcesses
	}

	if flags.Changed("config") {
		return config.LoadLayered(cli, f.configPath)
	}
	return config.LoadLayered(cli)
}

func runAnalyst(cmd *cobra.Command, f *rootFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := cfg.Validate(f.collectOnly); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting vitalis analyst",
		zap.String("version", version),
		zap.Bool("collect_only", f.collectOnly))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := metrics.New()
	registry := collector.Default(collector.Options{
		TopProcesses:      cfg.Collection.TopProcesses,
		CPUSampleInterval: cfg.Collection.CPUSampleInterval.Duration,
		Timeout:           cfg.Collection.Timeout.Duration,
		Started:           time.Now(),
	}, logger)
	registry.SetRecorder(rec)

	spin := newSpinner(" Collecting telemetry...")
	spin.Start()

	out, err := pipeline.Run(ctx, pipeline.Options{
		Source:      registry,
		Analyzer:    analysis.New(logger),
		Client:      cfg.ClientConfig(),
		CollectOnly: f.collectOnly,
		Recorder:    rec,
		Logger:      logger,
		OnSend: func() {
			spin.Stop()
			spin.Suffix = fmt.Sprintf(" Analysing with %s...", cfg.Analysis.Model)
			spin.Start()
		},
	})
	spin.Stop()

	writeMetrics(logger, rec, cfg.Output.MetricsFile)
	if err != nil {
		return err
	}

	opts := render.Options{Format: cfg.Output.Format, Raw: cfg.Output.Raw}
	if err := render.Write(cmd.OutOrStdout(), out.Snapshot, out.Result, opts); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if out.Result != nil && !out.Result.Succeeded() {
		return exitCode(exitAnalysisFailed)
	}
	return nil
}

// newSpinner returns a spinner on stderr that stays silent when stderr is not
// a terminal.
func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		s.Disable()
	}
	return s
}

func writeMetrics(logger *zap.Logger, rec *metrics.Recorder, path string) {
	if path == "" {
		return
	}
	if err := rec.WriteTextfile(path); err != nil {
		logger.Warn("Failed to write metrics file", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Debug("Metrics written", zap.String("path", path))
}
