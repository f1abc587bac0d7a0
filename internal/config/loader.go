package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied on top by the caller.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("UNIONCORPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("unioncorpus")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".unioncorpus"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is okay if not explicitly specified
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("harvest.concurrency", cfg.Harvest.Concurrency)
	v.SetDefault("harvest.request_timeout", cfg.Harvest.RequestTimeout)
	v.SetDefault("harvest.politeness_delay", cfg.Harvest.PolitenessDelay)
	v.SetDefault("harvest.max_retries", cfg.Harvest.MaxRetries)
	v.SetDefault("harvest.retry_delay", cfg.Harvest.RetryDelay)
	v.SetDefault("harvest.progress_steps", cfg.Harvest.ProgressSteps)
	v.SetDefault("harvest.user_agents", cfg.Harvest.UserAgents)

	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("sources.breitbart", cfg.Sources.Breitbart)
	v.SetDefault("sources.vox", cfg.Sources.Vox)
	v.SetDefault("sources.democracynow", cfg.Sources.DemocracyNow)

	v.SetDefault("inputs.articles", cfg.Inputs.Articles)
	v.SetDefault("inputs.metadata", cfg.Inputs.Metadata)
	v.SetDefault("inputs.terms", cfg.Inputs.Terms)
	v.SetDefault("inputs.taxonomy", cfg.Inputs.Taxonomy)

	v.SetDefault("normalize.excluded_years", cfg.Normalize.ExcludedYears)
	v.SetDefault("normalize.sample_size", cfg.Normalize.SampleSize)
	v.SetDefault("normalize.sample_seed", cfg.Normalize.SampleSeed)
	v.SetDefault("normalize.strip_html", cfg.Normalize.StripHTML)

	v.SetDefault("filter.mode", cfg.Filter.Mode)
	v.SetDefault("filter.title_source", cfg.Filter.TitleSource)
	v.SetDefault("filter.excluded_terms", cfg.Filter.ExcludedTerms)

	v.SetDefault("partition.subset_base", cfg.Partition.SubsetBase)
	v.SetDefault("partition.years", cfg.Partition.Years)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo.enabled", cfg.Storage.Mongo.Enabled)
	v.SetDefault("storage.mongo.uri", cfg.Storage.Mongo.URI)
	v.SetDefault("storage.mongo.database", cfg.Storage.Mongo.Database)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
