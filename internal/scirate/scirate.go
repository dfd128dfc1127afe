// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scirate scrapes the SciRate category listing and returns ranked papers.
package scirate

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/scirate-digest/pkg/types"
)

// defaultBase is the public SciRate listing endpoint. Tests override it
// through ScrapeConfig.BaseURL.
const defaultBase = "https://scirate.com/arxiv"

// arxivIDPattern matches the listing's identifier text
// (e.g. "arXiv:2511.13560v1" → "2511.13560").
var arxivIDPattern = regexp.MustCompile(`arXiv:(\d{4}\.\d{4,5})`)

// TopPapers fetches the category listing page and returns at most cfg.TopN
// papers sorted by descending scites count. Ties keep document order. On any
// transport or structural failure it logs a diagnostic to w and returns an
// empty slice; the caller treats that as "nothing to do", not an error.
func TopPapers(client *http.Client, cfg types.ScrapeConfig, w io.Writer) []*types.Paper {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBase
	}
	url := fmt.Sprintf("%s/%s", base, cfg.Category)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintf(w, "warning: scirate request: %v\n", err)
		return nil
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(w, "warning: scirate fetch failed: %v\n", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(w, "warning: scirate returned HTTP %d\n", resp.StatusCode)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		fmt.Fprintf(w, "warning: parsing scirate page: %v\n", err)
		return nil
	}

	papers := parseListing(doc, w)
	if papers == nil {
		return nil
	}

	// Stable sort keeps document order for equal scites counts.
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Scites > papers[j].Scites
	})

	if cfg.TopN > 0 && len(papers) > cfg.TopN {
		papers = papers[:cfg.TopN]
	}
	return papers
}

// parseListing walks the paperlist → ul.papers → div.row structure. A missing
// top-level container fails closed; a malformed row is skipped.
func parseListing(doc *goquery.Document, w io.Writer) []*types.Paper {
	paperlist := doc.Find("div.paperlist")
	if paperlist.Length() == 0 {
		fmt.Fprintln(w, "warning: scirate page has no paperlist element")
		return nil
	}

	list := paperlist.Find("ul.papers")
	if list.Length() == 0 {
		fmt.Fprintln(w, "warning: scirate page has no ul.papers element")
		return nil
	}

	var papers []*types.Paper
	list.Find("div.row").Each(func(_ int, row *goquery.Selection) {
		p := parseRow(row)
		if p == nil {
			return
		}
		papers = append(papers, p)
	})
	return papers
}

// parseRow extracts one paper from a listing row. Rows without a matching
// arXiv identifier are dropped silently.
func parseRow(row *goquery.Selection) *types.Paper {
	uid := strings.TrimSpace(row.Find("div.uid").Text())
	m := arxivIDPattern.FindStringSubmatch(uid)
	if m == nil {
		return nil
	}
	arxivID := m[1]

	title := types.PlaceholderTitle
	titleElem := row.Find("div.title")
	if titleElem.Length() > 0 {
		if link := titleElem.Find("a"); link.Length() > 0 {
			title = strings.TrimSpace(link.First().Text())
		} else {
			title = strings.TrimSpace(titleElem.Text())
		}
		if title == "" {
			title = types.PlaceholderTitle
		}
	}

	var authors []string
	row.Find("div.authors a").Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSuffix(strings.TrimSpace(a.Text()), ",")
		if name != "" {
			authors = append(authors, name)
		}
	})

	return &types.Paper{
		ArxivID:    arxivID,
		Title:      title,
		Scites:     parseScites(row),
		Authors:    authors,
		URL:        "https://arxiv.org/abs/" + arxivID,
		SciRateURL: "https://scirate.com/arxiv/" + arxivID,
	}
}

// parseScites reads the scites counter button. Non-numeric content counts as zero.
func parseScites(row *goquery.Selection) int {
	text := strings.TrimSpace(row.Find("div.scites-count button.count").First().Text())
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FormatListing writes the ranked papers as a human-readable table to w.
// Used by the console progress output and the dry-run path.
func FormatListing(papers []*types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-6s  %-12s  %s\n", "Rank", "Scites", "arXiv ID", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for i, p := range papers {
		title := p.Title
		// Truncate on rune boundaries; titles are often non-ASCII.
		if r := []rune(title); len(r) > 60 {
			title = string(r[:57]) + "..."
		}
		fmt.Fprintf(w, "%-4d  %-6d  %-12s  %s\n", i+1, p.Scites, p.ArxivID, title)
	}
	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}
