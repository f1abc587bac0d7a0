package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Harvest.Concurrency < 1 {
		return fmt.Errorf("harvest.concurrency must be >= 1, got %d", cfg.Harvest.Concurrency)
	}
	if cfg.Harvest.Concurrency > 64 {
		return fmt.Errorf("harvest.concurrency must be <= 64, got %d", cfg.Harvest.Concurrency)
	}
	if cfg.Harvest.RequestTimeout <= 0 {
		return fmt.Errorf("harvest.request_timeout must be > 0")
	}
	if cfg.Harvest.PolitenessDelay < 0 {
		return fmt.Errorf("harvest.politeness_delay must be >= 0")
	}
	if cfg.Harvest.MaxRetries < 0 {
		return fmt.Errorf("harvest.max_retries must be >= 0, got %d", cfg.Harvest.MaxRetries)
	}
	if cfg.Harvest.ProgressSteps < 1 {
		return fmt.Errorf("harvest.progress_steps must be >= 1, got %d", cfg.Harvest.ProgressSteps)
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	for name, base := range map[string]string{
		"sources.breitbart":    cfg.Sources.Breitbart,
		"sources.vox":          cfg.Sources.Vox,
		"sources.democracynow": cfg.Sources.DemocracyNow,
	} {
		if err := ValidateURL(base); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	for _, m := range cfg.Normalize.ExcludedMonths {
		if m < 1 || m > 12 {
			return fmt.Errorf("normalize.excluded_months: invalid month %d", m)
		}
	}
	if cfg.Normalize.SampleSize < 0 {
		return fmt.Errorf("normalize.sample_size must be >= 0, got %d", cfg.Normalize.SampleSize)
	}

	if cfg.Filter.Mode != "terms" && cfg.Filter.Mode != "phrases" {
		return fmt.Errorf("filter.mode must be 'terms' or 'phrases', got %q", cfg.Filter.Mode)
	}
	validTitleSources := map[string]bool{
		"content": true, "title": true, "none": true,
	}
	if !validTitleSources[cfg.Filter.TitleSource] {
		return fmt.Errorf("filter.title_source must be content/title/none, got %q", cfg.Filter.TitleSource)
	}

	if cfg.Partition.SubsetBase != "far" && cfg.Partition.SubsetBase != "full" {
		return fmt.Errorf("partition.subset_base must be 'far' or 'full', got %q", cfg.Partition.SubsetBase)
	}
	for name, terms := range cfg.Partition.Topics {
		if len(terms) == 0 {
			return fmt.Errorf("partition.topics.%s has no terms", name)
		}
		if reservedPartition(name) {
			return fmt.Errorf("partition.topics.%s collides with a built-in partition name", name)
		}
	}
	for _, y := range cfg.Partition.Years {
		if y < 1990 || y > 2100 {
			return fmt.Errorf("partition.years: invalid year %d", y)
		}
	}

	validStorageTypes := map[string]bool{
		"csv": true, "jsonl": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: csv, jsonl)", cfg.Storage.Type)
	}
	if cfg.Storage.Mongo.Enabled && cfg.Storage.Mongo.URI == "" {
		return fmt.Errorf("storage.mongo.uri is required when mongo is enabled")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks that a URL string is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// reservedPartition reports whether name is taken by the full, eliminated,
// far or year partitions.
func reservedPartition(name string) bool {
	switch name {
	case "full", "eliminated", "far":
		return true
	}
	return strings.HasPrefix(name, "year")
}
