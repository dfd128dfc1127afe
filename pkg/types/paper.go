// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PlaceholderTitle marks a paper whose title could not be read from the
// listing page. The enricher replaces it from the arXiv record.
const PlaceholderTitle = "Unknown Title"

// Paper holds one ranked listing entry. Created by the scirate scraper,
// completed by the arXiv enricher, immutable afterwards. Lives for one
// pipeline run.
type Paper struct {
	// ArxivID is the aggregator's stable identifier (e.g. "2511.13560").
	// Primary key throughout the pipeline.
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	// Title is the paper title, possibly PlaceholderTitle until enriched.
	Title string `json:"title" yaml:"title"`

	// Scites is the SciRate endorsement count. Zero when unreadable.
	Scites int `json:"scites" yaml:"scites"`

	// Authors lists author names in source order. May be empty.
	Authors []string `json:"authors" yaml:"authors"`

	// URL is the canonical arXiv abstract page.
	URL string `json:"url" yaml:"url"`

	// SciRateURL is the paper's SciRate page.
	SciRateURL string `json:"scirate_url" yaml:"scirate_url"`

	// Abstract is filled by the enricher; empty until then and when the
	// arXiv lookup fails.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// HasTitle reports whether the paper carries a real title rather than the
// listing placeholder.
func (p *Paper) HasTitle() bool {
	return p.Title != "" && p.Title != PlaceholderTitle
}
