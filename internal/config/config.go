package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for redscraper.
type Config struct {
	Scraper ScraperConfig `mapstructure:"scraper" yaml:"scraper"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Media   MediaConfig   `mapstructure:"media"   yaml:"media"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ScraperConfig controls the discovery loop and dispatcher.
type ScraperConfig struct {
	// PostLimit caps discovered posts. Negative means no limit; zero scrapes
	// nothing.
	PostLimit int `mapstructure:"post_limit" yaml:"post_limit"`

	// CommentLimit is the global comment visit quota per post. Zero disables
	// comment expansion.
	CommentLimit int `mapstructure:"comment_limit" yaml:"comment_limit"`

	// WorkerLimit bounds concurrent detail-fetch sessions per batch.
	WorkerLimit int `mapstructure:"worker_limit" yaml:"worker_limit"`

	// ScrollMinDelay/ScrollMaxDelay bound the randomized settle wait after
	// each scroll, simulating human browsing cadence.
	ScrollMinDelay time.Duration `mapstructure:"scroll_min_delay" yaml:"scroll_min_delay"`
	ScrollMaxDelay time.Duration `mapstructure:"scroll_max_delay" yaml:"scroll_max_delay"`

	// PageTimeout bounds navigation and element waits on a single surface.
	PageTimeout time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
}

// BrowserConfig controls the rod browser sessions.
type BrowserConfig struct {
	Headless   bool     `mapstructure:"headless"    yaml:"headless"`
	Stealth    bool     `mapstructure:"stealth"     yaml:"stealth"`
	WindowSize string   `mapstructure:"window_size" yaml:"window_size"`
	UserAgents []string `mapstructure:"user_agents" yaml:"user_agents"`
}

// MediaConfig controls media resolution and download.
type MediaConfig struct {
	// Dir is where saved assets land, one subdirectory per post. Empty
	// disables media saving.
	Dir string `mapstructure:"dir" yaml:"dir"`

	RetryAttempts int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"    yaml:"retry_delay"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"  yaml:"fetch_timeout"`
	MaxBodySize   int64         `mapstructure:"max_body_size"  yaml:"max_body_size"`
}

// StorageConfig controls the optional structured-result archive.
type StorageConfig struct {
	Type       string `mapstructure:"type"        yaml:"type"` // json, jsonl, mongodb, none
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`

	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			PostLimit:      -1,
			CommentLimit:   0,
			WorkerLimit:    8,
			ScrollMinDelay: 1 * time.Second,
			ScrollMaxDelay: 3 * time.Second,
			PageTimeout:    30 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:   true,
			Stealth:    true,
			WindowSize: "1920,1080",
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Media: MediaConfig{
			RetryAttempts: 3,
			RetryDelay:    5 * time.Second,
			FetchTimeout:  60 * time.Second,
			MaxBodySize:   50 * 1024 * 1024, // 50MB
		},
		Storage: StorageConfig{
			Type:            "none",
			OutputPath:      "./output/posts.json",
			MongoDatabase:   "redscraper",
			MongoCollection: "posts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
