// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest sequences the full pipeline: scrape the SciRate listing,
// drop recently posted papers, enrich from arXiv, summarize, deliver to
// Discord, and record what was delivered. A run that finds nothing to do at
// any stage ends early and successfully.
package digest

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/scirate-digest/internal/arxiv"
	"github.com/pdiddy/scirate-digest/internal/discord"
	"github.com/pdiddy/scirate-digest/internal/ratelimit"
	"github.com/pdiddy/scirate-digest/internal/scirate"
	"github.com/pdiddy/scirate-digest/internal/store"
	"github.com/pdiddy/scirate-digest/internal/summarize"
	"github.com/pdiddy/scirate-digest/pkg/types"
)

// Deps bundles the long-lived collaborators a digest run needs. Backend may
// be nil when no API key is configured; summaries then degrade to a
// placeholder and the run still delivers.
type Deps struct {
	Client  *http.Client
	Backend summarize.Backend
	Cache   *store.SummaryCache
	Posted  *store.PostedTracker
	Usage   *store.UsageTracker
}

// Runner executes one digest run.
type Runner struct {
	cfg  types.PipelineConfig
	deps Deps
	out  io.Writer

	// now is swapped out by tests to pin the weekday gate.
	now func() time.Time
}

// New builds a Runner for one run.
func New(cfg types.PipelineConfig, deps Deps, out io.Writer) *Runner {
	return &Runner{cfg: cfg, deps: deps, out: out, now: time.Now}
}

// Run executes the pipeline. Every skip condition (weekend, empty listing,
// everything already posted, header delivery failure) is an ordinary outcome,
// not an error; Run only returns an error for broken preconditions such as a
// nil HTTP client.
func (r *Runner) Run() error {
	if r.deps.Client == nil {
		return fmt.Errorf("digest: nil HTTP client")
	}

	day := r.now().Weekday()
	if !r.cfg.ForceWeekday && (day == time.Saturday || day == time.Sunday) {
		fmt.Fprintf(r.out, "Skipping run: %s (weekend)\n", day)
		return nil
	}

	if err := r.deps.Posted.Cleanup(); err != nil {
		fmt.Fprintf(r.out, "warning: cleaning posted records: %v\n", err)
	}

	papers := scirate.TopPapers(r.deps.Client, r.cfg.Scrape, r.out)
	if len(papers) == 0 {
		fmt.Fprintln(r.out, "No papers found; nothing to do.")
		return nil
	}
	scirate.FormatListing(papers, r.out)

	fresh := r.deps.Posted.FilterNew(papers)
	if skipped := len(papers) - len(fresh); skipped > 0 {
		fmt.Fprintf(r.out, "%d paper(s) already posted recently, skipping\n", skipped)
	}
	if len(fresh) == 0 {
		fmt.Fprintln(r.out, "Every paper was posted recently; nothing to do.")
		return nil
	}

	arxiv.Enrich(r.deps.Client, fresh, r.cfg.Enrich, r.out)

	if r.cfg.DryRun {
		fmt.Fprintln(r.out, "\nDry run: no summaries generated, nothing posted.")
		r.printDigest(fresh)
		return nil
	}

	summaries := r.summarize(fresh)

	if r.cfg.Delivery.WebhookURL == "" {
		fmt.Fprintln(r.out, "No webhook configured; printing digest instead.")
		r.printDigest(fresh)
		return nil
	}

	poster := discord.NewPoster(r.deps.Client, r.cfg.Delivery, r.out)
	delivered, err := poster.PostDigest(fresh, summaries, r.cfg.Scrape.Category, r.cfg.Summary.Language)
	if err != nil {
		fmt.Fprintf(r.out, "warning: posting digest: %v\n", err)
		return nil
	}

	for _, id := range delivered {
		if err := r.deps.Posted.MarkPosted(id); err != nil {
			fmt.Fprintf(r.out, "warning: recording posted paper %s: %v\n", id, err)
		}
	}
	fmt.Fprintf(r.out, "Posted %d paper(s)\n", len(delivered))
	fmt.Fprintln(r.out, r.deps.Usage.Summary())
	return nil
}

// summarize runs the batch path and falls back to single-item calls for any
// paper the batch response did not cover.
func (r *Runner) summarize(papers []*types.Paper) map[string]string {
	limiter := ratelimit.New(defaultRPM(r.cfg.Summary))
	s := summarize.New(r.cfg.Summary, r.deps.Backend, r.deps.Cache, r.deps.Usage, limiter, r.out)

	summaries := s.SummarizeBatch(papers)
	for _, p := range papers {
		if _, ok := summaries[p.ArxivID]; !ok {
			summaries[p.ArxivID] = s.Summarize(p)
		}
	}
	return summaries
}

func defaultRPM(cfg types.SummaryConfig) int {
	if len(cfg.Models) > 0 {
		return cfg.Models[0].RPM
	}
	return summarize.DefaultModels()[0].RPM
}

// printDigest writes the would-be digest in plain text, one block per paper.
func (r *Runner) printDigest(papers []*types.Paper) {
	for i, p := range papers {
		fmt.Fprintf(r.out, "\n[%d] %s (scites: %d)\n", i+1, p.Title, p.Scites)
		if len(p.Authors) > 0 {
			fmt.Fprintf(r.out, "    %s\n", strings.Join(p.Authors, ", "))
		}
		fmt.Fprintf(r.out, "    %s\n", p.URL)
		if p.Abstract != "" {
			fmt.Fprintf(r.out, "    %s\n", truncate(p.Abstract, 200))
		}
	}
}

// truncate shortens s to at most n runes. Counting runes rather than bytes
// keeps multibyte abstracts valid UTF-8 after the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
