package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/unioncorpus/internal/adapter"
	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/fetcher"
	"github.com/IshaanNene/unioncorpus/internal/harvest"
)

var (
	harvestOutlets     []string
	harvestYear        int
	harvestMonths      []int
	harvestMerge       bool
	harvestConcurrency int
)

// harvestCmd creates the "harvest" subcommand.
func harvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Discover and scrape articles for a year",
		Long: `Reads the sitemaps of each selected outlet for the given year, scrapes
every article found and writes one raw article file per outlet
(<outlet>_<year>.csv), or a single harvest_<year> file with --merge.`,
		RunE: runHarvest,
	}

	cmd.Flags().StringSliceVar(&harvestOutlets, "outlets", nil, "outlets to harvest (default: all)")
	cmd.Flags().IntVarP(&harvestYear, "year", "y", 0, "publication year to harvest")
	cmd.Flags().IntSliceVar(&harvestMonths, "months", nil, "restrict discovery to these months (1-12)")
	cmd.Flags().BoolVar(&harvestMerge, "merge", false, "write all outlets to one file")
	cmd.Flags().IntVarP(&harvestConcurrency, "concurrency", "n", 0, "number of concurrent scrapes (default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: csv, jsonl")
	cmd.MarkFlagRequired("year")

	return cmd
}

// runHarvest executes the harvest command.
func runHarvest(cmd *cobra.Command, args []string) error {
	period := adapter.Period{Year: harvestYear, Months: harvestMonths}
	if err := period.Validate(); err != nil {
		return err
	}

	ctx, rt, cleanup, err := setup(func(cfg *config.Config) {
		if harvestConcurrency > 0 {
			cfg.Harvest.Concurrency = harvestConcurrency
		}
	})
	if err != nil {
		return err
	}
	defer cleanup()
	logger := rt.logger

	httpFetcher, err := fetcher.NewHTTPFetcher(rt.cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	adapters, err := adapter.Default(rt.cfg.Sources, httpFetcher, logger).Select(harvestOutlets)
	if err != nil {
		return err
	}

	logger.Info("starting harvest",
		"outlets", len(adapters),
		"year", period.Year,
		"months", period.MonthList(),
		"concurrency", rt.cfg.Harvest.Concurrency,
		"output", rt.cfg.Storage.OutputPath,
		"format", rt.cfg.Storage.Type,
	)

	agg := harvest.New(rt.cfg.Harvest, rt.metrics, os.Stdout, logger)
	w := rt.writer()
	start := time.Now()

	var runErr error
	if harvestMerge {
		articles, err := agg.HarvestAll(ctx, adapters, period)
		if werr := w.WriteArticles(fmt.Sprintf("harvest_%d", period.Year), articles); werr != nil {
			return werr
		}
		runErr = err
	} else {
		for _, a := range adapters {
			articles, err := agg.Harvest(ctx, a, period)
			if err != nil && ctx.Err() == nil {
				logger.Error("harvest failed", "outlet", a.Outlet(), "error", err)
				continue
			}
			if werr := w.WriteArticles(fmt.Sprintf("%s_%d", a.Outlet(), period.Year), articles); werr != nil {
				return werr
			}
			if err != nil {
				runErr = err
				break
			}
		}
	}

	elapsed := time.Since(start)
	stats := rt.metrics.Snapshot()
	rt.metrics.LogSummary()

	fmt.Printf("\nHarvest complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("   Discovered: %v\n", stats["articles_discovered"])
	fmt.Printf("   Scraped:    %v scraped, %v failed, %v dropped\n",
		stats["articles_scraped"], stats["scrapes_failed"], stats["articles_dropped"])
	fmt.Printf("   Output:     %s\n", rt.cfg.Storage.OutputPath)

	if runErr != nil {
		return fmt.Errorf("harvest interrupted: %w", runErr)
	}
	return nil
}
