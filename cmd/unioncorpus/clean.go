package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/unioncorpus/internal/classify"
	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/dataset"
	"github.com/IshaanNene/unioncorpus/internal/taxonomy"
	"github.com/IshaanNene/unioncorpus/internal/terms"
)

var (
	cleanArticles string
	cleanMetadata string
	cleanTerms    string
	cleanTaxonomy string
	cleanSample   int
)

// cleanCmd creates the "clean" subcommand.
func cleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize, filter, classify and partition an article dump",
		Long: `Loads raw article CSVs (a file or a directory of *.csv), joins the
optional metadata file on url, normalizes the records, keeps those that
mention a union term and writes the full, eliminated, far, topical and
year partitions to the output directory, then prints a summary report.`,
		RunE: runClean,
	}

	cmd.Flags().StringVar(&cleanArticles, "articles", "", "raw article CSV file or directory")
	cmd.Flags().StringVar(&cleanMetadata, "metadata", "", "metadata CSV joined on url")
	cmd.Flags().StringVar(&cleanTerms, "terms", "", "union term list, one term per line")
	cmd.Flags().StringVar(&cleanTaxonomy, "taxonomy", "", "outlet taxonomy YAML (default: embedded table)")
	cmd.Flags().IntVar(&cleanSample, "sample", -1, "restrict to a deterministic sample of this size (0 = all)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: csv, jsonl")

	return cmd
}

// runClean executes the clean command.
func runClean(cmd *cobra.Command, args []string) error {
	_, rt, cleanup, err := setup(func(cfg *config.Config) {
		if cleanArticles != "" {
			cfg.Inputs.Articles = cleanArticles
		}
		if cleanMetadata != "" {
			cfg.Inputs.Metadata = cleanMetadata
		}
		if cleanTerms != "" {
			cfg.Inputs.Terms = cleanTerms
		}
		if cleanTaxonomy != "" {
			cfg.Inputs.Taxonomy = cleanTaxonomy
		}
		if cleanSample >= 0 {
			cfg.Normalize.SampleSize = cleanSample
		}
	})
	if err != nil {
		return err
	}
	defer cleanup()
	cfg, logger := rt.cfg, rt.logger

	tax, err := taxonomy.Load(cfg.Inputs.Taxonomy)
	if err != nil {
		return err
	}

	var termList []string
	if cfg.Filter.Mode == classify.ModeTerms {
		list, err := terms.Load(cfg.Inputs.Terms, cfg.Filter.ExcludedTerms)
		if err != nil {
			return err
		}
		termList = list.Terms()
		logger.Info("term list loaded", "path", cfg.Inputs.Terms, "terms", len(termList))
	}
	matcher, err := classify.NewMatcher(cfg.Filter.Mode, cfg.Filter.TitleSource, termList)
	if err != nil {
		return err
	}
	partitioner, err := classify.NewPartitioner(cfg.Partition, logger)
	if err != nil {
		return err
	}

	tables, err := dataset.LoadTables(cfg.Inputs.Articles)
	if err != nil {
		return err
	}
	var meta *dataset.Table
	if cfg.Inputs.Metadata != "" {
		if meta, err = dataset.LoadTable(cfg.Inputs.Metadata); err != nil {
			return err
		}
	}

	logger.Info("starting clean",
		"tables", len(tables),
		"metadata", cfg.Inputs.Metadata != "",
		"outlets", tax.Len(),
		"mode", cfg.Filter.Mode,
		"subset_base", partitioner.Base(),
		"output", cfg.Storage.OutputPath,
	)
	start := time.Now()

	articles, err := dataset.NewNormalizer(cfg.Normalize, rt.metrics, logger).Normalize(tables, meta)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	res, err := classify.Run(articles, matcher, classify.NewClassifier(tax), partitioner)
	if err != nil {
		return err
	}
	rt.metrics.RecordsKept.Add(int64(res.Kept))
	rt.metrics.RecordsEliminated.Add(int64(res.Eliminated))

	if err := rt.writer().WritePartitions(res.Partitions); err != nil {
		return err
	}

	rt.metrics.LogSummary()
	logger.Info("clean complete", "elapsed", time.Since(start).Round(time.Millisecond))

	fmt.Println()
	partitioner.Report(os.Stdout, res.Partitions)
	return nil
}
