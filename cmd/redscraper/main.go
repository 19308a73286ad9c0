package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"redscraper/internal/browser"
	"redscraper/internal/config"
	"redscraper/internal/media"
	"redscraper/internal/pipeline"
	"redscraper/internal/scraper"
	"redscraper/internal/storage"
)

var (
	cfgFile      string
	verbose      bool
	postLimit    int
	commentLimit int
	workers      int
	mediaDir     string
	outputPath   string
	outputType   string
	headless     bool
	minScore     int
	safeOnly     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "redscraper",
		Short: "redscraper — Reddit feed scraper",
		Long: `redscraper harvests posts from a subreddit listing as it infinitely
scrolls, fetches each post's own page concurrently, and optionally expands
comment threads and downloads attached media.

Features:
  • Incremental feed discovery with deduplication
  • Bounded-concurrency post fetching, results in discovery order
  • Quota-aware recursive comment expansion ("load more" included)
  • Gallery and direct-image media download with retry
  • JSON, JSONL, and MongoDB output`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [subreddit url]",
		Short: "Scrape a subreddit feed",
		Long:  "Scrape posts from a subreddit listing URL such as https://www.reddit.com/r/golang/hot.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().IntVarP(&postLimit, "limit", "l", -1, "maximum posts to scrape (-1 = until the feed ends)")
	cmd.Flags().IntVar(&commentLimit, "comments", 0, "comment visit quota per post (0 = skip comments)")
	cmd.Flags().IntVarP(&workers, "workers", "n", 8, "concurrent post-fetch sessions per batch")
	cmd.Flags().StringVarP(&mediaDir, "media-dir", "m", "", "download post media under this directory")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: json, jsonl, mongodb")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "drop posts below this score")
	cmd.Flags().BoolVar(&safeOnly, "safe-only", false, "drop posts flagged as not brand safe")

	return cmd
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg, cmd)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	feedURL, err := config.ValidateFeedURL(args[0])
	if err != nil {
		return fmt.Errorf("invalid feed URL %q: %w", args[0], err)
	}

	logger.Info("starting scrape",
		"feed", feedURL,
		"limit", cfg.Scraper.PostLimit,
		"comments", cfg.Scraper.CommentLimit,
		"workers", cfg.Scraper.WorkerLimit,
		"media_dir", cfg.Media.Dir,
	)

	b, err := browser.Launch(cfg, logger)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer b.Close()

	var resolver *media.Resolver
	if cfg.Media.Dir != "" {
		resolver = media.NewResolver(&cfg.Media, logger)
	}

	stats := scraper.NewStats()
	fetcher, err := scraper.NewDetailFetcher(b, "https://www.reddit.com",
		scraper.DetailOptions{
			CommentLimit: cfg.Scraper.CommentLimit,
			MediaDir:     cfg.Media.Dir,
		}, resolver, stats, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}

	s, err := scraper.New(b, feedURL, cfg.Scraper.WorkerLimit, fetcher, stats, logger)
	if err != nil {
		return fmt.Errorf("create scraper: %w", err)
	}

	// Graceful shutdown: a signal cancels between batches, keeping what was
	// collected so far.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results, err := s.Run(ctx, cfg.Scraper.PostLimit)
	if err != nil && len(results) == 0 {
		return fmt.Errorf("scrape: %w", err)
	}
	if err != nil {
		logger.Warn("scrape ended early, keeping partial results", "error", err)
	}

	results, err = buildPipeline(logger).ProcessAll(results)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if store != nil {
		if err := store.Store(results); err != nil {
			return fmt.Errorf("store results: %w", err)
		}
		if err := store.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}

	elapsed := time.Since(start)
	snap := stats.Snapshot()
	logger.Info("scrape complete",
		"elapsed", elapsed,
		"discovered", snap["discovered"],
		"fetched", snap["fetched"],
		"failed", snap["failed"],
	)

	fmt.Printf("\n✅ Scrape complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("   Posts:     %v discovered, %v fetched, %v failed\n",
		snap["discovered"], snap["fetched"], snap["failed"])
	fmt.Printf("   Comments:  %v expanded\n", snap["comments"])
	fmt.Printf("   Media:     %v files saved\n", snap["media_saved"])
	if store != nil {
		fmt.Printf("   Output:    %s (%s)\n", cfg.Storage.OutputPath, store.Name())
	}
	if s.Incomplete() {
		fmt.Println("\n⚠️  The feed stopped growing before the requested limit was reached.")
	}

	return nil
}

// buildPipeline assembles the post-processing chain from CLI flags.
func buildPipeline(logger *slog.Logger) *pipeline.Pipeline {
	pipe := pipeline.New(logger)
	pipe.Use(&pipeline.TrimMiddleware{})
	if minScore > 0 {
		pipe.Use(&pipeline.MinScoreMiddleware{Min: minScore})
	}
	if safeOnly {
		pipe.Use(&pipeline.BrandSafetyMiddleware{})
	}
	return pipe
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("redscraper %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Scraper:\n")
			fmt.Printf("  Post Limit:        %d\n", cfg.Scraper.PostLimit)
			fmt.Printf("  Comment Limit:     %d\n", cfg.Scraper.CommentLimit)
			fmt.Printf("  Worker Limit:      %d\n", cfg.Scraper.WorkerLimit)
			fmt.Printf("  Scroll Delay:      %s – %s\n", cfg.Scraper.ScrollMinDelay, cfg.Scraper.ScrollMaxDelay)
			fmt.Printf("  Page Timeout:      %s\n", cfg.Scraper.PageTimeout)
			fmt.Printf("\nBrowser:\n")
			fmt.Printf("  Headless:          %v\n", cfg.Browser.Headless)
			fmt.Printf("  Stealth:           %v\n", cfg.Browser.Stealth)
			fmt.Printf("  Window Size:       %s\n", cfg.Browser.WindowSize)
			fmt.Printf("  User Agents:       %d configured\n", len(cfg.Browser.UserAgents))
			fmt.Printf("\nMedia:\n")
			fmt.Printf("  Directory:         %s\n", cfg.Media.Dir)
			fmt.Printf("  Retry:             %d attempts, %s apart\n", cfg.Media.RetryAttempts, cfg.Media.RetryDelay)
			fmt.Printf("  Max Body Size:     %d bytes\n", cfg.Media.MaxBodySize)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:       %s\n", cfg.Storage.OutputPath)
			fmt.Printf("\nLogging:\n")
			fmt.Printf("  Level:             %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:            %s\n", cfg.Logging.Format)
			return nil
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config. Only
// flags the user actually set override file and environment values.
func applyCLIOverrides(cfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("limit") {
		cfg.Scraper.PostLimit = postLimit
	}
	if cmd.Flags().Changed("comments") {
		cfg.Scraper.CommentLimit = commentLimit
	}
	if cmd.Flags().Changed("workers") {
		cfg.Scraper.WorkerLimit = workers
	}
	if cmd.Flags().Changed("media-dir") {
		cfg.Media.Dir = mediaDir
	}
	if cmd.Flags().Changed("output") {
		cfg.Storage.OutputPath = outputPath
		if cfg.Storage.Type == "none" || cfg.Storage.Type == "" {
			cfg.Storage.Type = "json"
		}
	}
	if cmd.Flags().Changed("format") {
		cfg.Storage.Type = outputType
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = headless
	}
}
