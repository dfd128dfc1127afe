// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scirate-digest/pkg/types"
)

// --- SummaryCache ---

func TestSummaryCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	c := NewSummaryCache(dir, 24*time.Hour, 100, &buf)

	_, ok := c.Get("2511.00001", "X")
	assert.False(t, ok)

	require.NoError(t, c.Put("2511.00001", "X", "a summary"))

	got, ok := c.Get("2511.00001", "X")
	require.True(t, ok)
	assert.Equal(t, "a summary", got)

	// A different abstract for the same ID is a different entry.
	_, ok = c.Get("2511.00001", "Y")
	assert.False(t, ok)

	// Reopening reads the rewritten file.
	reopened := NewSummaryCache(dir, 24*time.Hour, 100, &buf)
	got, ok = reopened.Get("2511.00001", "X")
	require.True(t, ok)
	assert.Equal(t, "a summary", got)
}

func TestSummaryCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	c := NewSummaryCache(dir, 24*time.Hour, 100, &buf)

	clock := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Put("2511.00001", "X", "fresh"))

	clock = clock.Add(23 * time.Hour)
	_, ok := c.Get("2511.00001", "X")
	assert.True(t, ok, "entry inside the TTL must hit")

	clock = clock.Add(2 * time.Hour)
	_, ok = c.Get("2511.00001", "X")
	assert.False(t, ok, "entry past the TTL must be treated as absent")
}

func TestSummaryCacheHonorsConfiguredTTL(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	c := NewSummaryCache(dir, time.Hour, 100, &buf)

	clock := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Put("2511.00001", "X", "fresh"))

	clock = clock.Add(30 * time.Minute)
	_, ok := c.Get("2511.00001", "X")
	assert.True(t, ok)

	clock = clock.Add(time.Hour)
	_, ok = c.Get("2511.00001", "X")
	assert.False(t, ok, "a 1h TTL must expire a 90-minute-old entry")
}

func TestSummaryCacheCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFile), []byte("{not json"), 0o644))

	var buf bytes.Buffer
	c := NewSummaryCache(dir, 24*time.Hour, 100, &buf)

	assert.Contains(t, buf.String(), "warning")
	_, ok := c.Get("2511.00001", "X")
	assert.False(t, ok)
	// The store must still accept writes.
	assert.NoError(t, c.Put("2511.00001", "X", "s"))
}

// --- PostedTracker ---

func newTrackerAt(t *testing.T, dir string, now time.Time) *PostedTracker {
	t.Helper()
	var buf bytes.Buffer
	tr := NewPostedTracker(dir, 30*24*time.Hour, 60*24*time.Hour, &buf)
	tr.now = func() time.Time { return now }
	return tr
}

func TestPostedTrackerWindows(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	tr := newTrackerAt(t, dir, now)
	tr.records["recent"] = now.Add(-10 * 24 * time.Hour)
	tr.records["stale"] = now.Add(-45 * 24 * time.Hour)
	tr.records["ancient"] = now.Add(-61 * 24 * time.Hour)

	assert.True(t, tr.RecentlyPosted("recent"))
	assert.False(t, tr.RecentlyPosted("stale"), "outside the 30-day window")
	assert.False(t, tr.RecentlyPosted("ancient"))
	assert.Equal(t, 3, tr.Len(), "expired records stay until cleanup")

	require.NoError(t, tr.Cleanup())
	assert.Equal(t, 2, tr.Len(), "cleanup purges only 60+ day records")
	_, ok := tr.records["ancient"]
	assert.False(t, ok)
}

func TestPostedTrackerHonorsConfiguredWindows(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	tr := NewPostedTracker(dir, 24*time.Hour, 48*time.Hour, &buf)
	tr.now = func() time.Time { return now }
	tr.records["yesterday"] = now.Add(-30 * time.Hour)
	tr.records["old"] = now.Add(-50 * time.Hour)

	assert.False(t, tr.RecentlyPosted("yesterday"), "outside a 24h posted window")

	require.NoError(t, tr.Cleanup())
	assert.Equal(t, 1, tr.Len(), "a 48h cleanup window purges the 50h-old record")
	_, ok := tr.records["old"]
	assert.False(t, ok)
}

func TestPostedTrackerFilterNewPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	tr := newTrackerAt(t, dir, now)
	require.NoError(t, tr.MarkPosted("2511.00002"))

	papers := []*types.Paper{
		{ArxivID: "2511.00001"},
		{ArxivID: "2511.00002"},
		{ArxivID: "2511.00003"},
	}
	fresh := tr.FilterNew(papers)

	require.Len(t, fresh, 2)
	assert.Equal(t, "2511.00001", fresh[0].ArxivID)
	assert.Equal(t, "2511.00003", fresh[1].ArxivID)
}

func TestPostedTrackerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	tr := newTrackerAt(t, dir, now)
	require.NoError(t, tr.MarkPosted("2511.00007"))

	reopened := newTrackerAt(t, dir, now.Add(time.Hour))
	assert.True(t, reopened.RecentlyPosted("2511.00007"))
}

// --- UsageTracker ---

func TestUsageTrackerRecord(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	u := NewUsageTracker(dir, &buf)
	u.now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, u.Record("gemini-2.5-flash"))
	require.NoError(t, u.Record("gemini-2.5-flash"))
	require.NoError(t, u.Record("gemini-2.0-flash"))

	assert.Equal(t, 3, u.Today())
	assert.Equal(t, 3, u.data.TotalRequests)
	assert.Equal(t, 2, u.data.Days["2026-08-28"].Models["gemini-2.5-flash"])

	summary := u.Summary()
	assert.Contains(t, summary, "2026-08-28")
	assert.Contains(t, summary, "gemini-2.5-flash=2")
	assert.Contains(t, summary, "lifetime total 3")

	// Lifetime total survives a reopen.
	reopened := NewUsageTracker(dir, &buf)
	assert.Equal(t, 3, reopened.data.TotalRequests)
}
