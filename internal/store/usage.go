// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const usageFile = "usage_stats.json"

// dayUsage counts API attempts for one calendar day.
type dayUsage struct {
	Requests int            `json:"requests"`
	Models   map[string]int `json:"models"`
}

// usageData is the on-disk shape of the usage file.
type usageData struct {
	TotalRequests int                 `json:"total_requests"`
	Days          map[string]dayUsage `json:"days"`
}

// UsageTracker counts summarization API attempts per day and per model.
// Diagnostic only: counters are append-only and never consulted by the
// pipeline's control flow.
type UsageTracker struct {
	path string
	data usageData
	now  func() time.Time
}

// NewUsageTracker opens the usage file under dir. An unreadable file is
// logged to w and treated as empty.
func NewUsageTracker(dir string, w io.Writer) *UsageTracker {
	t := &UsageTracker{
		path: filepath.Join(dir, usageFile),
		data: usageData{Days: make(map[string]dayUsage)},
		now:  time.Now,
	}
	if err := loadJSON(t.path, &t.data); err != nil {
		fmt.Fprintf(w, "warning: usage stats unreadable, starting empty: %v\n", err)
		t.data = usageData{}
	}
	if t.data.Days == nil {
		t.data.Days = make(map[string]dayUsage)
	}
	return t
}

// Record counts one API attempt against model and rewrites the file.
// Called once per attempt regardless of the call's outcome.
func (t *UsageTracker) Record(model string) error {
	day := t.now().Format("2006-01-02")
	d := t.data.Days[day]
	if d.Models == nil {
		d.Models = make(map[string]int)
	}
	d.Requests++
	d.Models[model]++
	t.data.Days[day] = d
	t.data.TotalRequests++
	return saveJSON(t.path, t.data)
}

// Today returns the request count for the current day.
func (t *UsageTracker) Today() int {
	return t.data.Days[t.now().Format("2006-01-02")].Requests
}

// Summary renders a short human-readable usage report.
func (t *UsageTracker) Summary() string {
	var b strings.Builder
	day := t.now().Format("2006-01-02")
	d := t.data.Days[day]

	fmt.Fprintf(&b, "API usage %s: %d request(s)", day, d.Requests)
	if len(d.Models) > 0 {
		models := make([]string, 0, len(d.Models))
		for m := range d.Models {
			models = append(models, m)
		}
		sort.Strings(models)
		var parts []string
		for _, m := range models {
			parts = append(parts, fmt.Sprintf("%s=%d", m, d.Models[m]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintf(&b, "; lifetime total %d", t.data.TotalRequests)
	return b.String()
}
