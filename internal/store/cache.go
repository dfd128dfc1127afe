// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"crypto/sha256"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

const cacheFile = "summary_cache.json"

// cacheEntry is one generated summary with its creation time.
type cacheEntry struct {
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryCache maps (arXiv ID, abstract prefix) to a previously generated
// summary. Entries expire after the TTL and are purged lazily on lookup.
type SummaryCache struct {
	path      string
	ttl       time.Duration
	prefixLen int
	entries   map[string]cacheEntry
	now       func() time.Time
}

// NewSummaryCache opens the cache file under dir. An unreadable file is
// logged to w and treated as empty.
func NewSummaryCache(dir string, ttl time.Duration, prefixLen int, w io.Writer) *SummaryCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefixLen <= 0 {
		prefixLen = 100
	}
	c := &SummaryCache{
		path:      filepath.Join(dir, cacheFile),
		ttl:       ttl,
		prefixLen: prefixLen,
		entries:   make(map[string]cacheEntry),
		now:       time.Now,
	}
	if err := loadJSON(c.path, &c.entries); err != nil {
		fmt.Fprintf(w, "warning: summary cache unreadable, starting empty: %v\n", err)
		c.entries = make(map[string]cacheEntry)
	}
	return c
}

// key hashes the identifier together with the leading abstract characters,
// so a revised abstract misses the cache.
func (c *SummaryCache) key(arxivID, abstract string) string {
	prefix := abstract
	if len(prefix) > c.prefixLen {
		prefix = prefix[:c.prefixLen]
	}
	h := sha256.New()
	h.Write([]byte(arxivID))
	h.Write([]byte(prefix))
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// Get returns the cached summary for (arxivID, abstract). An expired entry
// is removed from the in-memory map and reported as absent; the file is not
// rewritten until the next Put.
func (c *SummaryCache) Get(arxivID, abstract string) (string, bool) {
	k := c.key(arxivID, abstract)
	entry, ok := c.entries[k]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.CreatedAt) > c.ttl {
		delete(c.entries, k)
		return "", false
	}
	return entry.Summary, true
}

// Put stores a freshly generated summary and rewrites the cache file.
func (c *SummaryCache) Put(arxivID, abstract, summary string) error {
	c.entries[c.key(arxivID, abstract)] = cacheEntry{
		Summary:   summary,
		CreatedAt: c.now(),
	}
	return saveJSON(c.path, c.entries)
}
