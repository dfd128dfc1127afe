// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fills paper abstracts from the arXiv metadata API.
package arxiv

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/scirate-digest/internal/httputil"
	"github.com/pdiddy/scirate-digest/pkg/types"
)

const defaultAPIBase = "https://export.arxiv.org/api/query"

// sleep is swapped out by tests to skip the politeness delay.
var sleep = time.Sleep

// Enrich looks up each paper on the arXiv API and fills in its abstract.
// Title and authors are only filled when the listing left them empty or
// placeholder. A failed lookup leaves the entry untouched and the loop
// continues; Enrich never aborts the batch. A politeness delay runs after
// every request regardless of outcome.
func Enrich(client *http.Client, papers []*types.Paper, cfg types.EnrichConfig, w io.Writer) {
	for i, p := range papers {
		fmt.Fprintf(w, "enriching [%d/%d] %s\n", i+1, len(papers), p.ArxivID)

		if err := enrichOne(client, p, cfg); err != nil {
			fmt.Fprintf(w, "  warning: arXiv lookup failed for %s: %v\n", p.ArxivID, err)
		}

		if cfg.RequestDelay > 0 {
			sleep(cfg.RequestDelay)
		}
	}
}

func enrichOne(client *http.Client, p *types.Paper, cfg types.EnrichConfig) error {
	base := cfg.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	url := fmt.Sprintf("%s?id_list=%s&max_results=1", base, p.ArxivID)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(client, req, 0)
	if err != nil {
		return fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return fmt.Errorf("parsing arXiv response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return fmt.Errorf("no entry for %s", p.ArxivID)
	}
	entry := feed.Entries[0]

	// The abstract always wins over whatever was there before.
	if abs := collapseWhitespace(entry.Summary); abs != "" {
		p.Abstract = abs
	}

	if !p.HasTitle() {
		if title := collapseWhitespace(entry.Title); title != "" {
			p.Title = title
		}
	}

	if len(p.Authors) == 0 {
		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
	}
	return nil
}

// collapseWhitespace trims the field and folds the Atom feed's hard line
// breaks into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
