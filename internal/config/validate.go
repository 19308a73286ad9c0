package config

import (
	"fmt"
	"net/url"
	"regexp"

	"redscraper/internal/types"
)

var (
	feedHostPattern = regexp.MustCompile(`(^|\.)reddit\.com$`)

	// A feed path is a subreddit plus an optional sort mode.
	feedPathPattern = regexp.MustCompile(`^/r/([A-Za-z0-9_]{3,21})(/(hot|new|top|rising))?/?$`)
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Scraper.WorkerLimit < 1 {
		return fmt.Errorf("scraper.worker_limit must be >= 1, got %d", cfg.Scraper.WorkerLimit)
	}
	if cfg.Scraper.WorkerLimit > 64 {
		return fmt.Errorf("scraper.worker_limit must be <= 64, got %d", cfg.Scraper.WorkerLimit)
	}
	if cfg.Scraper.CommentLimit < 0 {
		return fmt.Errorf("scraper.comment_limit must be >= 0, got %d", cfg.Scraper.CommentLimit)
	}
	if cfg.Scraper.PageTimeout <= 0 {
		return fmt.Errorf("scraper.page_timeout must be > 0")
	}
	if cfg.Scraper.ScrollMinDelay < 0 || cfg.Scraper.ScrollMaxDelay < cfg.Scraper.ScrollMinDelay {
		return fmt.Errorf("scroll delays must satisfy 0 <= min <= max, got min=%s max=%s",
			cfg.Scraper.ScrollMinDelay, cfg.Scraper.ScrollMaxDelay)
	}

	if cfg.Media.RetryAttempts < 1 {
		return fmt.Errorf("media.retry_attempts must be >= 1, got %d", cfg.Media.RetryAttempts)
	}
	if cfg.Media.RetryDelay < 0 {
		return fmt.Errorf("media.retry_delay must be >= 0")
	}
	if cfg.Media.MaxBodySize <= 0 {
		return fmt.Errorf("media.max_body_size must be > 0")
	}

	validStorageTypes := map[string]bool{
		"none": true, "json": true, "jsonl": true, "mongodb": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: none, json, jsonl, mongodb)", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongodb" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required when storage.type is mongodb")
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

	return nil
}

// ValidateFeedURL checks that a URL is a reddit subreddit listing, optionally
// suffixed with a sort mode (hot, new, top, rising). The URL is returned
// unchanged when valid.
func ValidateFeedURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidFeedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https, got %q", types.ErrInvalidFeedURL, u.Scheme)
	}
	if !feedHostPattern.MatchString(u.Hostname()) {
		return "", fmt.Errorf("%w: must be a link to reddit, got host %q", types.ErrInvalidFeedURL, u.Hostname())
	}
	if !feedPathPattern.MatchString(u.Path) {
		return "", fmt.Errorf("%w: illegal subreddit path %q", types.ErrInvalidFeedURL, u.Path)
	}
	return rawURL, nil
}
