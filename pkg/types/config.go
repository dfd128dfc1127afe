// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scirate-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScrapeConfig holds settings for the SciRate listing scrape.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL overrides the SciRate listing endpoint. Empty means the
	// public site; tests point it at a local server.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Category is the arXiv category feed to scrape (e.g. "quant-ph", "cs.LG").
	Category string `json:"category" yaml:"category"`

	// TopN is the number of ranked papers to keep (default 8).
	TopN int `json:"top_n" yaml:"top_n"`
}

// EnrichConfig holds settings for the arXiv metadata lookup.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIBase overrides the arXiv query endpoint. Empty means the public API.
	APIBase string `json:"api_base,omitempty" yaml:"api_base,omitempty"`

	// RequestDelay is the politeness pause after each arXiv API call (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// Model is one candidate summarization backend with its throughput ceiling.
type Model struct {
	// Name is the model identifier (e.g. "gemini-2.5-flash").
	Name string `json:"name" yaml:"name"`

	// RPM is the requests-per-minute ceiling for this model.
	RPM int `json:"rpm" yaml:"rpm"`
}

// SummaryConfig holds settings for summary generation.
type SummaryConfig struct {
	// Models is the ordered fallback list of candidate models.
	Models []Model `json:"models" yaml:"models"`

	// Language selects the summary language: "ja" or "en" (default "ja").
	Language string `json:"language" yaml:"language"`

	// CacheTTL is how long a cached summary stays valid (default 24h).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// AbstractPrefixLen is the number of abstract characters mixed into the
	// cache key (default 100).
	AbstractPrefixLen int `json:"abstract_prefix_len" yaml:"abstract_prefix_len"`

	// QuotaBackoff is the pause before trying the next model after a
	// quota error (default 5s).
	QuotaBackoff time.Duration `json:"quota_backoff" yaml:"quota_backoff"`
}

// DeliveryConfig holds settings for the Discord webhook delivery.
type DeliveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// WebhookURL is the Discord webhook endpoint. Empty disables delivery.
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`

	// MessageDelay is the pause between consecutive webhook posts (default 2s).
	MessageDelay time.Duration `json:"message_delay" yaml:"message_delay"`
}

// StoreConfig holds settings for the local persisted stores.
type StoreConfig struct {
	// Dir is the directory holding the JSON stores and the diagnostic log.
	Dir string `json:"dir" yaml:"dir"`

	// PostedWindow is how long a delivered paper stays suppressed (default 30 days).
	PostedWindow time.Duration `json:"posted_window" yaml:"posted_window"`

	// CleanupWindow is when posted records are purged entirely (default 60 days).
	CleanupWindow time.Duration `json:"cleanup_window" yaml:"cleanup_window"`
}

// PipelineConfig groups all stage configurations for one digest run.
type PipelineConfig struct {
	Scrape   ScrapeConfig   `json:"scrape" yaml:"scrape"`
	Enrich   EnrichConfig   `json:"enrich" yaml:"enrich"`
	Summary  SummaryConfig  `json:"summary" yaml:"summary"`
	Delivery DeliveryConfig `json:"delivery" yaml:"delivery"`
	Store    StoreConfig    `json:"store" yaml:"store"`

	// DryRun prints the would-be digest instead of generating summaries or
	// posting to the webhook.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// ForceWeekday bypasses the weekend gate.
	ForceWeekday bool `json:"force_weekday" yaml:"force_weekday"`
}
