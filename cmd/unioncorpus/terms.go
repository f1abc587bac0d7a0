package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/fetcher"
	"github.com/IshaanNene/unioncorpus/internal/terms"
)

var (
	termsUS     string
	termsCA     string
	termsOutput string
)

// termsCmd creates the "terms" subcommand.
func termsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Build the union term list from the affiliate pages",
		Long: `Extracts union names and acronyms from the AFL-CIO affiliates page and
the Canadian Labour Congress affiliates page and writes them one per line.
Each source may be a local HTML file or an http(s) URL.`,
		RunE: runTerms,
	}

	cmd.Flags().StringVar(&termsUS, "us", "https://aflcio.org/about-us/our-unions-and-allies/our-affiliated-unions", "AFL-CIO affiliates page (file or URL, empty to skip)")
	cmd.Flags().StringVar(&termsCA, "ca", "https://canadianlabour.ca/who-we-are/affiliates/", "Canadian affiliates page (file or URL, empty to skip)")
	cmd.Flags().StringVarP(&termsOutput, "output", "o", "", "term list path (default: inputs.terms)")

	return cmd
}

// runTerms executes the terms command.
func runTerms(cmd *cobra.Command, args []string) error {
	ctx, rt, cleanup, err := setup(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if termsUS == "" && termsCA == "" {
		return fmt.Errorf("at least one of --us and --ca is required")
	}
	if termsOutput == "" {
		termsOutput = rt.cfg.Inputs.Terms
	}

	httpFetcher, err := fetcher.NewHTTPFetcher(rt.cfg, rt.logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	us, err := openSource(ctx, httpFetcher, termsUS)
	if err != nil {
		return err
	}
	ca, err := openSource(ctx, httpFetcher, termsCA)
	if err != nil {
		return err
	}

	raw, err := terms.Build(us, ca)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(termsOutput), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(termsOutput)
	if err != nil {
		return fmt.Errorf("create term list: %w", err)
	}
	defer f.Close()
	if err := terms.Write(f, raw); err != nil {
		return err
	}

	rt.logger.Info("term list written", "path", termsOutput, "terms", len(raw))
	fmt.Printf("Wrote %d terms to %s\n", len(raw), termsOutput)
	return nil
}

// openSource reads a page from a URL or local file. An empty source
// returns a nil reader.
func openSource(ctx context.Context, f fetcher.Fetcher, src string) (io.Reader, error) {
	if src == "" {
		return nil, nil
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if err := config.ValidateURL(src); err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", src, err)
		}
		resp, err := fetcher.Get(ctx, f, src, "terms")
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(resp.Body), nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return bytes.NewReader(data), nil
}
