// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scirate-digest/internal/digest"
	"github.com/pdiddy/scirate-digest/internal/logging"
	"github.com/pdiddy/scirate-digest/internal/secrets"
	"github.com/pdiddy/scirate-digest/internal/store"
	"github.com/pdiddy/scirate-digest/internal/summarize"
	"github.com/pdiddy/scirate-digest/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "scirate-digest/0.1"
	defaultCategory  = "quant-ph"
	defaultTopN      = 8
	defaultLanguage  = "ja"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the digest pipeline once",
	Long: `Run scrapes the SciRate listing, drops papers posted within the last 30
days, fills abstracts from the arXiv API, summarizes the rest with Gemini,
and posts the digest to the configured Discord webhook.

Credentials come from GEMINI_API_KEY and DISCORD_WEBHOOK_URL (environment,
.env, or .secrets/ key files). Without an API key summaries degrade to a
placeholder; without a webhook the digest is printed instead of posted.`,
	RunE: runDigest,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "print the would-be digest without summarizing or posting")
	runCmd.Flags().Bool("force", false, "run even on weekends")
	runCmd.Flags().String("category", "", "arXiv category feed to scrape (default quant-ph)")
	runCmd.Flags().Int("top", 0, "number of top papers to include (default 8)")
	runCmd.Flags().String("language", "", "summary language: ja or en (default ja)")
	runCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	runCmd.Flags().String("models", "", "models YAML file (default <storage-dir>/models.yaml)")

	rootCmd.AddCommand(runCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	dir := storageDir(cmd)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	logger, closer := logging.New(filepath.Join(dir, "digest.log"))
	defer closer.Close()
	out := io.MultiWriter(os.Stdout, logging.NewLineWriter(logger))

	modelsPath, _ := cmd.Flags().GetString("models")
	if modelsPath == "" {
		modelsPath = filepath.Join(dir, "models.yaml")
	}
	models, err := summarize.LoadModels(modelsPath)
	if err != nil {
		return fmt.Errorf("loading models: %w", err)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	category, _ := cmd.Flags().GetString("category")
	if category == "" {
		category = stringSetting("category", defaultCategory)
	}
	topN, _ := cmd.Flags().GetInt("top")
	if topN == 0 {
		topN = intSetting("top_n", defaultTopN)
	}
	language, _ := cmd.Flags().GetString("language")
	if language == "" {
		language = stringSetting("language", defaultLanguage)
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")

	httpCfg := types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent}
	client := &http.Client{Timeout: timeout}

	apiKey := credential("GEMINI_API_KEY", secrets.GeminiAPIKey)
	var backend summarize.Backend
	if apiKey != "" {
		backend = &summarize.GeminiBackend{APIKey: apiKey, Client: client}
	} else if !dryRun {
		fmt.Fprintln(os.Stderr, "warning: no Gemini API key; summaries degrade to a placeholder")
	}

	cfg := types.PipelineConfig{
		Scrape: types.ScrapeConfig{
			HTTPConfig: httpCfg,
			Category:   category,
			TopN:       topN,
		},
		Enrich: types.EnrichConfig{
			HTTPConfig:   httpCfg,
			RequestDelay: time.Second,
		},
		Summary: types.SummaryConfig{
			Models:   models,
			Language: language,
		},
		Delivery: types.DeliveryConfig{
			HTTPConfig: httpCfg,
			WebhookURL: credential("DISCORD_WEBHOOK_URL", secrets.DiscordWebhookURL),
		},
		Store:        types.StoreConfig{Dir: dir},
		DryRun:       dryRun,
		ForceWeekday: force,
	}
	applyTuning(&cfg)

	return digest.New(cfg, newDeps(cfg, client, backend, out), out).Run()
}

// applyTuning reads the optional tuning keys a config file can set. A key
// left unset stays zero and the owning component applies its default.
func applyTuning(cfg *types.PipelineConfig) {
	cfg.Summary.CacheTTL = viper.GetDuration("cache_ttl")
	cfg.Summary.AbstractPrefixLen = viper.GetInt("abstract_prefix_len")
	cfg.Summary.QuotaBackoff = viper.GetDuration("quota_backoff")
	cfg.Delivery.MessageDelay = viper.GetDuration("message_delay")
	cfg.Store.PostedWindow = viper.GetDuration("posted_window")
	cfg.Store.CleanupWindow = viper.GetDuration("cleanup_window")
}

// newDeps constructs the store-backed collaborators from the resolved
// configuration. Zero-valued settings fall through to each store's default.
func newDeps(cfg types.PipelineConfig, client *http.Client, backend summarize.Backend, out io.Writer) digest.Deps {
	dir := cfg.Store.Dir
	return digest.Deps{
		Client:  client,
		Backend: backend,
		Cache:   store.NewSummaryCache(dir, cfg.Summary.CacheTTL, cfg.Summary.AbstractPrefixLen, out),
		Posted:  store.NewPostedTracker(dir, cfg.Store.PostedWindow, cfg.Store.CleanupWindow, out),
		Usage:   store.NewUsageTracker(dir, out),
	}
}

func stringSetting(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func intSetting(key string, fallback int) int {
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}
