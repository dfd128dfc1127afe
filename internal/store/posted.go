// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pdiddy/scirate-digest/pkg/types"
)

const postedFile = "posted_papers.json"

// PostedTracker records which arXiv IDs were already delivered. An ID inside
// the posted window is suppressed from re-delivery; records older than the
// cleanup window are purged entirely on Cleanup.
type PostedTracker struct {
	path          string
	postedWindow  time.Duration
	cleanupWindow time.Duration
	records       map[string]time.Time
	now           func() time.Time
}

// NewPostedTracker opens the posted-papers file under dir. An unreadable
// file is logged to w and treated as empty.
func NewPostedTracker(dir string, postedWindow, cleanupWindow time.Duration, w io.Writer) *PostedTracker {
	if postedWindow <= 0 {
		postedWindow = 30 * 24 * time.Hour
	}
	if cleanupWindow <= 0 {
		cleanupWindow = 60 * 24 * time.Hour
	}
	t := &PostedTracker{
		path:          filepath.Join(dir, postedFile),
		postedWindow:  postedWindow,
		cleanupWindow: cleanupWindow,
		records:       make(map[string]time.Time),
		now:           time.Now,
	}
	if err := loadJSON(t.path, &t.records); err != nil {
		fmt.Fprintf(w, "warning: posted tracker unreadable, starting empty: %v\n", err)
		t.records = make(map[string]time.Time)
	}
	return t
}

// RecentlyPosted reports whether the ID was delivered within the posted window.
func (t *PostedTracker) RecentlyPosted(arxivID string) bool {
	postedAt, ok := t.records[arxivID]
	return ok && t.now().Sub(postedAt) < t.postedWindow
}

// MarkPosted records a successful delivery and rewrites the file.
func (t *PostedTracker) MarkPosted(arxivID string) error {
	t.records[arxivID] = t.now()
	return saveJSON(t.path, t.records)
}

// Cleanup drops records older than the cleanup window. Called once per run
// before filtering. The file is only rewritten when something was removed.
func (t *PostedTracker) Cleanup() error {
	removed := false
	for id, postedAt := range t.records {
		if t.now().Sub(postedAt) > t.cleanupWindow {
			delete(t.records, id)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	return saveJSON(t.path, t.records)
}

// FilterNew returns the papers not recently posted, preserving order.
func (t *PostedTracker) FilterNew(papers []*types.Paper) []*types.Paper {
	var fresh []*types.Paper
	for _, p := range papers {
		if t.RecentlyPosted(p.ArxivID) {
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh
}

// Len returns the number of stored records, including expired ones that
// have not yet been cleaned up.
func (t *PostedTracker) Len() int { return len(t.records) }
