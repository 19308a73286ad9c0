package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults. CLI flag
// overrides are applied by the command layer after Load.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("REDSCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("redscraper")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".redscraper"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine unless one was explicitly requested.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scraper.post_limit", cfg.Scraper.PostLimit)
	v.SetDefault("scraper.comment_limit", cfg.Scraper.CommentLimit)
	v.SetDefault("scraper.worker_limit", cfg.Scraper.WorkerLimit)
	v.SetDefault("scraper.scroll_min_delay", cfg.Scraper.ScrollMinDelay)
	v.SetDefault("scraper.scroll_max_delay", cfg.Scraper.ScrollMaxDelay)
	v.SetDefault("scraper.page_timeout", cfg.Scraper.PageTimeout)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.window_size", cfg.Browser.WindowSize)
	v.SetDefault("browser.user_agents", cfg.Browser.UserAgents)

	v.SetDefault("media.dir", cfg.Media.Dir)
	v.SetDefault("media.retry_attempts", cfg.Media.RetryAttempts)
	v.SetDefault("media.retry_delay", cfg.Media.RetryDelay)
	v.SetDefault("media.fetch_timeout", cfg.Media.FetchTimeout)
	v.SetDefault("media.max_body_size", cfg.Media.MaxBodySize)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
