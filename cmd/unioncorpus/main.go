package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/observability"
	"github.com/IshaanNene/unioncorpus/internal/storage"
	"github.com/IshaanNene/unioncorpus/internal/taxonomy"
)

var (
	cfgFile    string
	verbose    bool
	outputPath string
	outputType string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "unioncorpus",
		Short: "Labor-union news corpus builder",
		Long: `unioncorpus harvests news articles from outlet sitemaps and turns raw
article dumps into a classified research corpus about labor-union coverage.

Commands:
  harvest   discover and scrape articles for a year
  clean     normalize, filter, classify and partition an article dump
  terms     build the union term list from the affiliate pages
  outlets   list the outlet taxonomy`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(harvestCmd())
	rootCmd.AddCommand(cleanCmd())
	rootCmd.AddCommand(termsCmd())
	rootCmd.AddCommand(outletsCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every pipeline command sets up before doing work.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	runID   string
	mongo   *storage.MongoDB
}

// setup loads and validates config, builds the logger, starts the metrics
// server and connects the optional MongoDB sink. The returned context is
// cancelled on SIGINT/SIGTERM.
func setup(apply func(*config.Config)) (context.Context, *app, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if apply != nil {
		apply(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	rt := &app{cfg: cfg, runID: uuid.NewString()}
	rt.logger = setupLogger(cfg.Logging).With("run_id", rt.runID)
	rt.metrics = observability.NewMetrics(rt.logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	if cfg.Metrics.Enabled {
		if err := rt.metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			rt.logger.Warn("failed to start metrics server", "error", err)
		}
	}

	if cfg.Storage.Mongo.Enabled {
		m, err := storage.OpenMongo(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database, rt.runID, rt.logger)
		if err != nil {
			stop()
			return nil, nil, nil, fmt.Errorf("open mongodb: %w", err)
		}
		rt.mongo = m
	}

	cleanup := func() {
		if rt.mongo != nil {
			if err := rt.mongo.Close(); err != nil {
				rt.logger.Warn("mongodb disconnect failed", "error", err)
			}
		}
		if cfg.Metrics.Enabled {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			rt.metrics.Shutdown(shutdownCtx)
		}
		stop()
	}
	return ctx, rt, cleanup, nil
}

func (rt *app) writer() *storage.Writer {
	return storage.NewWriter(rt.cfg.Storage, rt.mongo, rt.metrics, rt.logger)
}

// outletsCmd creates the "outlets" subcommand.
func outletsCmd() *cobra.Command {
	var taxonomyPath string
	cmd := &cobra.Command{
		Use:   "outlets",
		Short: "List the outlet taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if taxonomyPath == "" {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				taxonomyPath = cfg.Inputs.Taxonomy
			}
			tax, err := taxonomy.Load(taxonomyPath)
			if err != nil {
				return err
			}
			fmt.Printf("%-22s %-8s %s\n", "OUTLET", "LEANING", "FAR")
			for _, e := range tax.Entries() {
				fmt.Printf("%-22s %-8s %s\n", e.Outlet, e.Leaning, e.FarLabel())
			}
			fmt.Printf("\n%d outlets\n", tax.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&taxonomyPath, "taxonomy", "", "taxonomy YAML file (default: embedded table)")
	return cmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("unioncorpus %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Harvest:\n")
			fmt.Printf("  Concurrency:       %d\n", cfg.Harvest.Concurrency)
			fmt.Printf("  Request Timeout:   %s\n", cfg.Harvest.RequestTimeout)
			fmt.Printf("  Politeness Delay:  %s\n", cfg.Harvest.PolitenessDelay)
			fmt.Printf("  Max Retries:       %d\n", cfg.Harvest.MaxRetries)
			fmt.Printf("  User Agents:       %d configured\n", len(cfg.Harvest.UserAgents))
			fmt.Printf("\nSources:\n")
			fmt.Printf("  Breitbart:         %s\n", cfg.Sources.Breitbart)
			fmt.Printf("  Vox:               %s\n", cfg.Sources.Vox)
			fmt.Printf("  Democracy Now:     %s\n", cfg.Sources.DemocracyNow)
			fmt.Printf("\nInputs:\n")
			fmt.Printf("  Articles:          %s\n", cfg.Inputs.Articles)
			fmt.Printf("  Metadata:          %s\n", cfg.Inputs.Metadata)
			fmt.Printf("  Terms:             %s\n", cfg.Inputs.Terms)
			fmt.Printf("  Taxonomy:          %s\n", orDefault(cfg.Inputs.Taxonomy, "(embedded)"))
			fmt.Printf("\nNormalize:\n")
			fmt.Printf("  Excluded Years:    %v\n", cfg.Normalize.ExcludedYears)
			fmt.Printf("  Excluded Months:   %v\n", cfg.Normalize.ExcludedMonths)
			fmt.Printf("  Sample Size:       %d\n", cfg.Normalize.SampleSize)
			fmt.Printf("\nFilter:\n")
			fmt.Printf("  Mode:              %s\n", cfg.Filter.Mode)
			fmt.Printf("  Title Source:      %s\n", cfg.Filter.TitleSource)
			fmt.Printf("\nPartition:\n")
			fmt.Printf("  Subset Base:       %s\n", cfg.Partition.SubsetBase)
			fmt.Printf("  Topics:            %d configured\n", len(cfg.Partition.Topics))
			fmt.Printf("  Years:             %v\n", cfg.Partition.Years)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			fmt.Printf("  MongoDB:           %v\n", cfg.Storage.Mongo.Enabled)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
	return cmd
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// setupLogger creates a structured logger from the logging config. The
// --verbose flag forces debug level.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
