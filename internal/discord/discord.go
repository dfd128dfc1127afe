// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discord posts the paper digest to a Discord webhook.
package discord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/scirate-digest/pkg/types"
)

// embedColor is the accent color of every paper embed.
const embedColor = 5814783

// sleep is swapped out by tests to skip the inter-message pacing.
var sleep = time.Sleep

// now is swapped out by tests to pin the digest date.
var now = time.Now

// webhookMessage is a plain-content webhook payload.
type webhookMessage struct {
	Content string `json:"content"`
}

// embedMessage is a rich-embed webhook payload.
type embedMessage struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Footer      embedFooter  `json:"footer"`
	Fields      []embedField `json:"fields"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Poster sends digest messages to one webhook, pacing itself between posts.
type Poster struct {
	client *http.Client
	cfg    types.DeliveryConfig
	out    io.Writer
}

// NewPoster builds a Poster for the configured webhook.
func NewPoster(client *http.Client, cfg types.DeliveryConfig, out io.Writer) *Poster {
	if cfg.MessageDelay <= 0 {
		cfg.MessageDelay = 2 * time.Second
	}
	return &Poster{client: client, cfg: cfg, out: out}
}

// PostDigest sends the header message followed by one embed per paper.
// A failed header aborts the whole delivery. A failed paper embed is logged
// and skipped. The returned slice holds the arXiv IDs whose embed was
// accepted by the webhook; only those should be marked as posted.
func (p *Poster) PostDigest(papers []*types.Paper, summaries map[string]string, category, language string) ([]string, error) {
	header := headerText(category, language, len(papers))
	if err := p.post(webhookMessage{Content: header}); err != nil {
		return nil, fmt.Errorf("posting digest header: %w", err)
	}

	var delivered []string
	for i, paper := range papers {
		sleep(p.cfg.MessageDelay)

		msg := embedMessage{Embeds: []embed{buildEmbed(i+1, paper, summaries[paper.ArxivID], language)}}
		if err := p.post(msg); err != nil {
			fmt.Fprintf(p.out, "warning: posting %s: %v\n", paper.ArxivID, err)
			continue
		}
		fmt.Fprintf(p.out, "posted [%d/%d] %s\n", i+1, len(papers), paper.ArxivID)
		delivered = append(delivered, paper.ArxivID)
	}
	return delivered, nil
}

// post sends one JSON payload. Discord signals success with HTTP 204.
func (p *Poster) post(payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	resp, err := p.client.Post(p.cfg.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// headerText renders the digest header with the run date and a SciRate link.
func headerText(category, language string, count int) string {
	t := now()
	if language == "ja" {
		return fmt.Sprintf("## 📊 %s の %s 人気論文 Top %d\n\n🔗 **SciRate**: https://scirate.com/?range=1\n",
			t.Format("2006年01月02日"), category, count)
	}
	return fmt.Sprintf("## 📊 Top %d %s Papers - %s\n\n🔗 **SciRate**: https://scirate.com/?range=1\n",
		count, category, t.Format("2006-01-02"))
}

// buildEmbed renders one paper as a rich embed.
func buildEmbed(rank int, paper *types.Paper, summary, language string) embed {
	labels := struct{ summary, authors, scites, links, noAuthors string }{
		summary: "📝 Summary", authors: "👥 Authors", scites: "⭐ Scites",
		links: "🔗 Links", noAuthors: "No author information",
	}
	if language == "ja" {
		labels.summary, labels.authors, labels.scites = "📝 要約", "👥 著者", "⭐ Scites"
		labels.links, labels.noAuthors = "🔗 リンク", "著者情報なし"
	}

	return embed{
		Title: fmt.Sprintf("%d. %s", rank, paper.Title),
		URL:   paper.URL,
		Description: fmt.Sprintf("**%s**\n%s\n\n**%s:** %s\n**%s:** %d",
			labels.summary, summary,
			labels.authors, formatAuthors(paper.Authors, labels.noAuthors),
			labels.scites, paper.Scites),
		Color:  embedColor,
		Footer: embedFooter{Text: "arXiv: " + paper.ArxivID},
		Fields: []embedField{{
			Name:   labels.links,
			Value:  fmt.Sprintf("[arXiv](%s) | [SciRate](%s)", paper.URL, paper.SciRateURL),
			Inline: false,
		}},
	}
}

// formatAuthors truncates the author list to three names plus an "et al." marker.
func formatAuthors(authors []string, empty string) string {
	if len(authors) == 0 {
		return empty
	}
	shown := authors
	if len(shown) > 3 {
		shown = shown[:3]
	}
	s := strings.Join(shown, ", ")
	if len(authors) > 3 {
		s += " et al."
	}
	return s
}
