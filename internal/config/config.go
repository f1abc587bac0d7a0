package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for unioncorpus.
type Config struct {
	Harvest   HarvestConfig   `mapstructure:"harvest"   yaml:"harvest"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   yaml:"fetcher"`
	Sources   SourcesConfig   `mapstructure:"sources"   yaml:"sources"`
	Inputs    InputsConfig    `mapstructure:"inputs"    yaml:"inputs"`
	Normalize NormalizeConfig `mapstructure:"normalize" yaml:"normalize"`
	Filter    FilterConfig    `mapstructure:"filter"    yaml:"filter"`
	Partition PartitionConfig `mapstructure:"partition" yaml:"partition"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
}

// HarvestConfig controls sitemap discovery and article scraping.
type HarvestConfig struct {
	Concurrency     int           `mapstructure:"concurrency"      yaml:"concurrency"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"  yaml:"request_timeout"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay" yaml:"politeness_delay"`
	MaxRetries      int           `mapstructure:"max_retries"      yaml:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"      yaml:"retry_delay"`
	ProgressSteps   int           `mapstructure:"progress_steps"   yaml:"progress_steps"`
	UserAgents      []string      `mapstructure:"user_agents"      yaml:"user_agents"`
}

// FetcherConfig controls the HTTP fetcher.
type FetcherConfig struct {
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// SourcesConfig holds the sitemap base URL of each outlet adapter.
type SourcesConfig struct {
	Breitbart    string `mapstructure:"breitbart"    yaml:"breitbart"`
	Vox          string `mapstructure:"vox"          yaml:"vox"`
	DemocracyNow string `mapstructure:"democracynow" yaml:"democracynow"`
}

// InputsConfig locates the local files the cleaning pipeline reads.
type InputsConfig struct {
	// Articles is a raw CSV file or a directory of CSV files.
	Articles string `mapstructure:"articles" yaml:"articles"`
	Metadata string `mapstructure:"metadata" yaml:"metadata"`
	Terms    string `mapstructure:"terms"    yaml:"terms"`
	// Taxonomy overrides the embedded outlet taxonomy when set.
	Taxonomy string `mapstructure:"taxonomy" yaml:"taxonomy"`
}

// NormalizeConfig controls record normalization.
type NormalizeConfig struct {
	ExcludedYears  []int `mapstructure:"excluded_years"  yaml:"excluded_years"`
	ExcludedMonths []int `mapstructure:"excluded_months" yaml:"excluded_months"`
	SampleSize     int   `mapstructure:"sample_size"     yaml:"sample_size"`
	SampleSeed     int64 `mapstructure:"sample_seed"     yaml:"sample_seed"`

	// StripHTML removes markup left in archival text before filtering.
	StripHTML bool `mapstructure:"strip_html" yaml:"strip_html"`
}

// FilterConfig controls the content filter.
type FilterConfig struct {
	Mode          string   `mapstructure:"mode"           yaml:"mode"`         // terms, phrases
	TitleSource   string   `mapstructure:"title_source"   yaml:"title_source"` // content, title, none
	ExcludedTerms []string `mapstructure:"excluded_terms" yaml:"excluded_terms"`
}

// PartitionConfig controls which optional subsets are produced.
type PartitionConfig struct {
	SubsetBase string              `mapstructure:"subset_base" yaml:"subset_base"` // far, full
	Topics     map[string][]string `mapstructure:"topics"      yaml:"topics"`
	Years      []int               `mapstructure:"years"       yaml:"years"`
}

// StorageConfig controls output sinks.
type StorageConfig struct {
	Type       string      `mapstructure:"type"        yaml:"type"`
	OutputPath string      `mapstructure:"output_path" yaml:"output_path"`
	Mongo      MongoConfig `mapstructure:"mongo"       yaml:"mongo"`
}

// MongoConfig enables an additional MongoDB sink.
type MongoConfig struct {
	Enabled  bool   `mapstructure:"enabled"  yaml:"enabled"`
	URI      string `mapstructure:"uri"      yaml:"uri"`
	Database string `mapstructure:"database" yaml:"database"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus-style metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Harvest: HarvestConfig{
			Concurrency:     8,
			RequestTimeout:  30 * time.Second,
			PolitenessDelay: 0,
			MaxRetries:      2,
			RetryDelay:      2 * time.Second,
			ProgressSteps:   10,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Fetcher: FetcherConfig{
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Sources: SourcesConfig{
			Breitbart:    "https://www.breitbart.com",
			Vox:          "https://www.vox.com",
			DemocracyNow: "https://www.democracynow.org",
		},
		Inputs: InputsConfig{
			Articles: "data/input/articles.csv",
			Terms:    "data/output/unions.txt",
		},
		Normalize: NormalizeConfig{
			ExcludedYears: []int{2006, 2007},
			SampleSeed:    1,
		},
		Filter: FilterConfig{
			Mode:          "terms",
			TitleSource:   "content",
			ExcludedTerms: []string{"pass", "cope", "smart"},
		},
		Partition: PartitionConfig{
			SubsetBase: "far",
			Topics: map[string][]string{
				"covid": {"covid", "covid-19"},
			},
			Years: []int{2019},
		},
		Storage: StorageConfig{
			Type:       "csv",
			OutputPath: "./data/output",
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "unioncorpus",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
