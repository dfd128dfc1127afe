// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize generates short natural-language paper summaries with a
// fallback chain of Gemini models, a file-backed cache, and per-model rate
// limiting.
package summarize

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/scirate-digest/internal/notation"
	"github.com/pdiddy/scirate-digest/internal/ratelimit"
	"github.com/pdiddy/scirate-digest/internal/store"
	"github.com/pdiddy/scirate-digest/pkg/types"
)

// Sentinel summaries returned instead of model output. Never cached.
var sentinels = map[string]map[string]string{
	"ja": {
		"no-abstract": "Abstractが取得できませんでした。",
		"no-key":      "Gemini APIキーが設定されていません。",
		"all-failed":  "要約の生成に失敗しました（全モデル失敗）。",
	},
	"en": {
		"no-abstract": "The abstract could not be retrieved.",
		"no-key":      "Summary unavailable: no API key configured.",
		"all-failed":  "Summary unavailable: all models failed.",
	},
}

func sentinel(language, kind string) string {
	lang := sentinels[language]
	if lang == nil {
		lang = sentinels["en"]
	}
	return lang[kind]
}

// Summarizer owns the candidate model chain and its collaborators. Construct
// one per run and inject it from the orchestrator; there is no package state.
type Summarizer struct {
	backend Backend // nil when no API key is configured
	cache   *store.SummaryCache
	usage   *store.UsageTracker
	limiter *ratelimit.Limiter
	cfg     types.SummaryConfig
	out     io.Writer

	// sleep is swapped out by tests to skip the quota backoff.
	sleep func(time.Duration)
}

// New builds a Summarizer. backend may be nil; every summary then degrades
// to a placeholder sentinel and no model or usage calls happen.
func New(cfg types.SummaryConfig, backend Backend, cache *store.SummaryCache, usage *store.UsageTracker, limiter *ratelimit.Limiter, out io.Writer) *Summarizer {
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels()
	}
	if cfg.QuotaBackoff <= 0 {
		cfg.QuotaBackoff = 5 * time.Second
	}
	return &Summarizer{
		backend: backend,
		cache:   cache,
		usage:   usage,
		limiter: limiter,
		cfg:     cfg,
		out:     out,
		sleep:   time.Sleep,
	}
}

// Summarize produces one paper's summary. Cache hits return immediately
// without touching the rate limiter. Each candidate model gets one attempt;
// quota errors pause before the next model, other failures advance directly.
// Sentinel returns are never cached.
func (s *Summarizer) Summarize(p *types.Paper) string {
	if strings.TrimSpace(p.Abstract) == "" {
		return sentinel(s.cfg.Language, "no-abstract")
	}

	if text, ok := s.cache.Get(p.ArxivID, p.Abstract); ok {
		return text
	}

	if s.backend == nil {
		return sentinel(s.cfg.Language, "no-key")
	}

	prompt, err := singlePrompt(s.cfg.Language, p.Title, p.Abstract)
	if err != nil {
		fmt.Fprintf(s.out, "warning: %v\n", err)
		return sentinel(s.cfg.Language, "all-failed")
	}

	for _, model := range s.cfg.Models {
		out := s.attempt(model, prompt)
		if out.Status == StatusSuccess {
			text := notation.Format(out.Text)
			if err := s.cache.Put(p.ArxivID, p.Abstract, text); err != nil {
				fmt.Fprintf(s.out, "warning: caching summary for %s: %v\n", p.ArxivID, err)
			}
			return text
		}
	}

	fmt.Fprintf(s.out, "warning: every model failed for %s\n", p.ArxivID)
	return sentinel(s.cfg.Language, "all-failed")
}

// attempt runs one rate-limited call against one model and handles the
// per-status policy: usage is recorded regardless of outcome, quota errors
// trigger the fixed backoff, everything else just advances.
func (s *Summarizer) attempt(model types.Model, prompt string) Outcome {
	s.limiter.Reconfigure(model.RPM)
	s.limiter.Throttle()

	if err := s.usage.Record(model.Name); err != nil {
		fmt.Fprintf(s.out, "warning: recording usage: %v\n", err)
	}

	out := s.backend.Generate(model.Name, prompt)
	switch out.Status {
	case StatusSuccess:
	case StatusQuotaExceeded:
		fmt.Fprintf(s.out, "  %s: %s, backing off %v\n", model.Name, out.Status, s.cfg.QuotaBackoff)
		s.sleep(s.cfg.QuotaBackoff)
	default:
		fmt.Fprintf(s.out, "  %s: %s (%v)\n", model.Name, out.Status, out.Err)
	}
	return out
}

// batchSegmentRe matches the positional markers in a batch response.
var batchSegmentRe = regexp.MustCompile(`(?m)^\s*\[(\d+)\]\s*`)

// SummarizeBatch generates summaries for all papers in one model call.
// Already-cached papers are served from the cache; papers the model's
// response does not cover are simply absent from the result, and the caller
// falls back to Summarize for them. Papers without an abstract are left to
// the single-item path as well.
func (s *Summarizer) SummarizeBatch(papers []*types.Paper) map[string]string {
	result := make(map[string]string)

	var uncached []*types.Paper
	for _, p := range papers {
		if strings.TrimSpace(p.Abstract) == "" {
			continue
		}
		if text, ok := s.cache.Get(p.ArxivID, p.Abstract); ok {
			result[p.ArxivID] = text
			continue
		}
		uncached = append(uncached, p)
	}

	if len(uncached) == 0 || s.backend == nil {
		return result
	}

	prompt, err := batchPrompt(s.cfg.Language, uncached)
	if err != nil {
		fmt.Fprintf(s.out, "warning: %v\n", err)
		return result
	}

	for _, model := range s.cfg.Models {
		out := s.attempt(model, prompt)
		if out.Status != StatusSuccess {
			continue
		}

		parsed := parseBatchResponse(out.Text, len(uncached))
		if len(parsed) == 0 {
			fmt.Fprintf(s.out, "  %s: batch response had no parseable segments\n", model.Name)
			continue
		}

		for pos, text := range parsed {
			p := uncached[pos-1]
			formatted := notation.Format(text)
			if err := s.cache.Put(p.ArxivID, p.Abstract, formatted); err != nil {
				fmt.Fprintf(s.out, "warning: caching summary for %s: %v\n", p.ArxivID, err)
			}
			result[p.ArxivID] = formatted
		}
		return result
	}

	fmt.Fprintf(s.out, "warning: batch summarization failed on every model\n")
	return result
}

// parseBatchResponse splits the model output at [n] markers and maps the
// 1-based positions back to the uncached list. Positions outside [1, n]
// are discarded.
func parseBatchResponse(text string, n int) map[int]string {
	locs := batchSegmentRe.FindAllStringSubmatchIndex(text, -1)
	result := make(map[int]string)

	for i, loc := range locs {
		pos, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || pos < 1 || pos > n {
			continue
		}

		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segment := strings.TrimSpace(text[loc[1]:end])
		if segment != "" {
			result[pos] = segment
		}
	}
	return result
}
