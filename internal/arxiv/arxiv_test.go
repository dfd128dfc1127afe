// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/scirate-digest/pkg/types"
)

const atomEntry = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/%s</id>
    <title>%s</title>
    <summary>%s</summary>
    <author><name>Alice Example</name></author>
    <author><name>Bob Example</name></author>
  </entry>
</feed>`

const atomEmpty = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"></feed>`

func serveAtom(t *testing.T, handler http.HandlerFunc) types.EnrichConfig {
	t.Helper()
	srv := httptest.NewServer(handler)
	origSleep := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() {
		sleep = origSleep
		srv.Close()
	})
	return types.EnrichConfig{
		HTTPConfig:   types.HTTPConfig{UserAgent: "test/0.1"},
		APIBase:      srv.URL,
		RequestDelay: time.Second,
	}
}

func TestEnrichFillsAbstractAndKeepsListingFields(t *testing.T) {
	cfg := serveAtom(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, atomEntry, "2511.13560v1", "API Title", "An abstract\n  spanning lines.")
	})

	p := &types.Paper{
		ArxivID: "2511.13560",
		Title:   "Listing Title",
		Authors: []string{"Listing Author"},
	}

	var buf bytes.Buffer
	Enrich(http.DefaultClient, []*types.Paper{p}, cfg, &buf)

	if p.Abstract != "An abstract spanning lines." {
		t.Errorf("Abstract = %q", p.Abstract)
	}
	// Title and authors from the listing win over the API.
	if p.Title != "Listing Title" {
		t.Errorf("Title = %q, want listing title preserved", p.Title)
	}
	if len(p.Authors) != 1 || p.Authors[0] != "Listing Author" {
		t.Errorf("Authors = %v, want listing authors preserved", p.Authors)
	}
}

func TestEnrichFillsPlaceholderTitleAndMissingAuthors(t *testing.T) {
	cfg := serveAtom(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, atomEntry, "2511.13560v1", "API Title", "abstract text")
	})

	p := &types.Paper{ArxivID: "2511.13560", Title: types.PlaceholderTitle}

	var buf bytes.Buffer
	Enrich(http.DefaultClient, []*types.Paper{p}, cfg, &buf)

	if p.Title != "API Title" {
		t.Errorf("Title = %q, want API title", p.Title)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Alice Example" {
		t.Errorf("Authors = %v, want API authors", p.Authors)
	}
}

func TestEnrichOverwritesStaleAbstract(t *testing.T) {
	cfg := serveAtom(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, atomEntry, "2511.13560v1", "T", "fresh abstract")
	})

	p := &types.Paper{ArxivID: "2511.13560", Title: "T", Abstract: "stale"}

	var buf bytes.Buffer
	Enrich(http.DefaultClient, []*types.Paper{p}, cfg, &buf)

	if p.Abstract != "fresh abstract" {
		t.Errorf("Abstract = %q, want fresh abstract", p.Abstract)
	}
}

func TestEnrichContinuesAfterFailures(t *testing.T) {
	calls := 0
	cfg := serveAtom(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch {
		case strings.Contains(r.URL.RawQuery, "2511.00001"):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.Contains(r.URL.RawQuery, "2511.00002"):
			fmt.Fprint(w, atomEmpty)
		default:
			fmt.Fprintf(w, atomEntry, "2511.00003v1", "T3", "abstract three")
		}
	})

	papers := []*types.Paper{
		{ArxivID: "2511.00001", Title: "T1"},
		{ArxivID: "2511.00002", Title: "T2"},
		{ArxivID: "2511.00003", Title: "T3"},
	}

	var buf bytes.Buffer
	Enrich(http.DefaultClient, papers, cfg, &buf)

	if calls != 3 {
		t.Errorf("calls = %d, want 3 (loop must not abort)", calls)
	}
	if papers[0].Abstract != "" || papers[1].Abstract != "" {
		t.Errorf("failed entries must stay untouched: %q, %q", papers[0].Abstract, papers[1].Abstract)
	}
	if papers[2].Abstract != "abstract three" {
		t.Errorf("papers[2].Abstract = %q", papers[2].Abstract)
	}
	if !strings.Contains(buf.String(), "warning") {
		t.Errorf("expected warnings in output, got %q", buf.String())
	}
}
