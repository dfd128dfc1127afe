// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scirate-digest/internal/store"
	"github.com/pdiddy/scirate-digest/internal/summarize"
	"github.com/pdiddy/scirate-digest/pkg/types"
)

// Two valid listing rows plus one without an identifier (dropped by the
// scraper); paper 2511.00002 has more scites and ranks first.
const listingPage = `<html><body><div class="paperlist"><ul class="papers">
<div class="row">
  <div class="uid">no identifier</div>
  <div class="title"><a href="/arxiv/x">Broken Row</a></div>
  <div class="scites-count"><button class="count">99</button></div>
</div>
<div class="row">
  <div class="uid">arXiv:2511.00001v1</div>
  <div class="title"><a href="/arxiv/2511.00001">Paper One</a></div>
  <div class="scites-count"><button class="count">5</button></div>
  <div class="authors"><a href="/a">Alice</a></div>
</div>
<div class="row">
  <div class="uid">arXiv:2511.00002v1</div>
  <div class="title"><a href="/arxiv/2511.00002">Paper Two</a></div>
  <div class="scites-count"><button class="count">9</button></div>
  <div class="authors"><a href="/a">Bob</a></div>
</div>
</ul></div></body></html>`

const atomTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>%s</title>
    <summary>%s</summary>
    <author><name>%s</name></author>
  </entry>
</feed>`

type scriptedBackend struct {
	calls   int
	prompts []string
	text    string
}

func (b *scriptedBackend) Generate(model, prompt string) summarize.Outcome {
	b.calls++
	b.prompts = append(b.prompts, prompt)
	return summarize.Outcome{Status: summarize.StatusSuccess, Text: b.text}
}

type recordingWebhook struct {
	srv      *httptest.Server
	statuses []int
	bodies   []string
}

// newRecordingWebhook replies with the scripted statuses in order, then 204.
func newRecordingWebhook(t *testing.T, statuses ...int) *recordingWebhook {
	t.Helper()
	w := &recordingWebhook{statuses: statuses}
	w.srv = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		status := http.StatusNoContent
		if len(w.bodies) < len(w.statuses) {
			status = w.statuses[len(w.bodies)]
		}
		w.bodies = append(w.bodies, string(body))
		rw.WriteHeader(status)
	}))
	t.Cleanup(w.srv.Close)
	return w
}

type testEnv struct {
	runner  *Runner
	out     *bytes.Buffer
	backend *scriptedBackend
	webhook *recordingWebhook
	posted  *store.PostedTracker
}

func newTestEnv(t *testing.T, webhook *recordingWebhook) *testEnv {
	t.Helper()

	listing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage)
	}))
	t.Cleanup(listing.Close)

	atom := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id_list")
		fmt.Fprintf(w, atomTemplate, "Title "+id, "Abstract for "+id+".", "Author "+id)
	}))
	t.Cleanup(atom.Close)

	out := &bytes.Buffer{}
	dir := t.TempDir()
	posted := store.NewPostedTracker(dir, 0, 0, out)
	backend := &scriptedBackend{
		text: "[1] Summary for first.\n[2] Summary for second.",
	}

	cfg := types.PipelineConfig{
		Scrape: types.ScrapeConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: "test/0.1"},
			BaseURL:    listing.URL,
			Category:   "quant-ph",
			TopN:       8,
		},
		Enrich: types.EnrichConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: "test/0.1"},
			APIBase:    atom.URL,
		},
		Summary: types.SummaryConfig{
			Models:       []types.Model{{Name: "test-model", RPM: 6000}},
			Language:     "en",
			QuotaBackoff: time.Millisecond,
		},
		Delivery: types.DeliveryConfig{
			WebhookURL:   webhook.srv.URL,
			MessageDelay: time.Millisecond,
		},
		Store:        types.StoreConfig{Dir: dir},
		ForceWeekday: true,
	}

	deps := Deps{
		Client:  http.DefaultClient,
		Backend: backend,
		Cache:   store.NewSummaryCache(dir, 0, 0, out),
		Posted:  posted,
		Usage:   store.NewUsageTracker(dir, out),
	}

	return &testEnv{
		runner:  New(cfg, deps, out),
		out:     out,
		backend: backend,
		webhook: webhook,
		posted:  posted,
	}
}

func TestRunSkipsWeekend(t *testing.T) {
	webhook := newRecordingWebhook(t)
	env := newTestEnv(t, webhook)
	env.runner.cfg.ForceWeekday = false
	env.runner.now = func() time.Time {
		return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC) // a Saturday
	}

	require.NoError(t, env.runner.Run())

	assert.Contains(t, env.out.String(), "Skipping run")
	assert.Empty(t, env.webhook.bodies)
	assert.Zero(t, env.backend.calls)
}

func TestRunEndToEnd(t *testing.T) {
	webhook := newRecordingWebhook(t)
	env := newTestEnv(t, webhook)

	require.NoError(t, env.runner.Run())

	// Header plus one embed per paper, higher-scited paper first.
	require.Len(t, env.webhook.bodies, 3)
	assert.Contains(t, env.webhook.bodies[0], "Top 2 quant-ph Papers")
	assert.Contains(t, env.webhook.bodies[1], "arXiv: 2511.00002")
	assert.Contains(t, env.webhook.bodies[1], "Summary for first.")
	assert.Contains(t, env.webhook.bodies[2], "arXiv: 2511.00001")
	assert.Contains(t, env.webhook.bodies[2], "Summary for second.")

	// One batch call covered both papers.
	assert.Equal(t, 1, env.backend.calls)

	assert.True(t, env.posted.RecentlyPosted("2511.00001"))
	assert.True(t, env.posted.RecentlyPosted("2511.00002"))
	assert.Contains(t, env.out.String(), "Posted 2 paper(s)")
	assert.Contains(t, env.out.String(), "API usage")
}

func TestRunDryRunPostsNothing(t *testing.T) {
	webhook := newRecordingWebhook(t)
	env := newTestEnv(t, webhook)
	env.runner.cfg.DryRun = true

	require.NoError(t, env.runner.Run())

	assert.Empty(t, env.webhook.bodies)
	assert.Zero(t, env.backend.calls, "dry run must not contact the model")
	assert.Contains(t, env.out.String(), "Dry run")
	assert.Contains(t, env.out.String(), "Abstract for 2511.00002.")
	assert.False(t, env.posted.RecentlyPosted("2511.00002"))
}

func TestRunSkipsWhenEverythingRecentlyPosted(t *testing.T) {
	webhook := newRecordingWebhook(t)
	env := newTestEnv(t, webhook)
	require.NoError(t, env.posted.MarkPosted("2511.00001"))
	require.NoError(t, env.posted.MarkPosted("2511.00002"))

	require.NoError(t, env.runner.Run())

	assert.Empty(t, env.webhook.bodies)
	assert.Zero(t, env.backend.calls)
	assert.Contains(t, env.out.String(), "nothing to do")
}

func TestRunFiltersRecentlyPostedPaper(t *testing.T) {
	webhook := newRecordingWebhook(t)
	env := newTestEnv(t, webhook)
	require.NoError(t, env.posted.MarkPosted("2511.00002"))

	require.NoError(t, env.runner.Run())

	// Only the unposted paper goes through delivery: header + one embed.
	require.Len(t, env.webhook.bodies, 2)
	assert.Contains(t, env.webhook.bodies[1], "arXiv: 2511.00001")
	assert.True(t, env.posted.RecentlyPosted("2511.00001"))
	assert.Contains(t, env.out.String(), "1 paper(s) already posted recently")
}

// A failed header means nothing was shown to readers, so no paper may be
// recorded as posted. The run itself still ends without an error.
func TestRunHeaderFailureMarksNothing(t *testing.T) {
	webhook := newRecordingWebhook(t, http.StatusInternalServerError)
	env := newTestEnv(t, webhook)

	require.NoError(t, env.runner.Run())

	require.Len(t, env.webhook.bodies, 1)
	assert.False(t, env.posted.RecentlyPosted("2511.00001"))
	assert.False(t, env.posted.RecentlyPosted("2511.00002"))
	assert.Contains(t, env.out.String(), "warning: posting digest")
}

// When one embed is rejected mid-delivery, only the papers whose embed was
// accepted are suppressed on later runs. The rejected paper stays eligible
// so the next run can retry it.
func TestRunMarksOnlyDeliveredPapers(t *testing.T) {
	webhook := newRecordingWebhook(t, http.StatusNoContent, http.StatusInternalServerError)
	env := newTestEnv(t, webhook)

	require.NoError(t, env.runner.Run())

	require.Len(t, env.webhook.bodies, 3)
	assert.False(t, env.posted.RecentlyPosted("2511.00002"), "rejected embed must not be marked")
	assert.True(t, env.posted.RecentlyPosted("2511.00001"))
	assert.Contains(t, env.out.String(), "Posted 1 paper(s)")
}

func TestRunNoWebhookPrintsDigest(t *testing.T) {
	webhook := newRecordingWebhook(t)
	env := newTestEnv(t, webhook)
	env.runner.cfg.Delivery.WebhookURL = ""

	require.NoError(t, env.runner.Run())

	assert.Empty(t, env.webhook.bodies)
	assert.Equal(t, 1, env.backend.calls, "summaries are still generated")
	assert.Contains(t, env.out.String(), "No webhook configured")
	assert.False(t, env.posted.RecentlyPosted("2511.00002"))
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("要約テスト", 50) // 250 runes, 3 bytes each

	got := truncate(long, 200)

	assert.True(t, utf8.ValidString(got), "truncated text must stay valid UTF-8")
	assert.Equal(t, string([]rune(long)[:197])+"...", got)

	short := "μ_c² の測定"
	assert.Equal(t, short, truncate(short, 200), "short text passes through unchanged")
}

func TestRunBatchGapFallsBackToSingleCalls(t *testing.T) {
	webhook := newRecordingWebhook(t)
	env := newTestEnv(t, webhook)
	// Batch response covers only position 1; the second paper needs a
	// follow-up single-item call.
	env.backend.text = "[1] Summary for first."

	require.NoError(t, env.runner.Run())

	require.Equal(t, 2, env.backend.calls)
	assert.True(t, strings.Contains(env.backend.prompts[1], "Abstract for 2511.00001."),
		"second call should target the uncovered paper")
	require.Len(t, env.webhook.bodies, 3)
	assert.Contains(t, env.webhook.bodies[2], "Summary for first.")
}
