// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// geminiAPIBase is the Generative Language API endpoint. Declared as a var
// so tests can substitute an httptest server.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiBackend calls the Gemini generateContent REST API.
type GeminiBackend struct {
	APIKey string
	Client *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *geminiFeedback   `json:"promptFeedback,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiFeedback struct {
	BlockReason string `json:"blockReason"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends one prompt to the named model and classifies the result.
func (g *GeminiBackend) Generate(model, prompt string) Outcome {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Outcome{Status: StatusMalformed, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiAPIBase, model, g.APIKey)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return Outcome{Status: StatusMalformed, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		// Transport errors carry no status code; substring matching is the
		// only signal left at this boundary.
		if looksLikeQuota(err.Error()) {
			return Outcome{Status: StatusQuotaExceeded, Err: err}
		}
		return Outcome{Status: StatusTransportError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyHTTPError(resp)
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return Outcome{Status: StatusMalformed, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if gResp.PromptFeedback != nil && gResp.PromptFeedback.BlockReason != "" {
		return Outcome{Status: StatusContentBlocked,
			Err: fmt.Errorf("prompt blocked: %s", gResp.PromptFeedback.BlockReason)}
	}
	if len(gResp.Candidates) == 0 {
		return Outcome{Status: StatusMalformed, Err: fmt.Errorf("no candidates in response")}
	}

	cand := gResp.Candidates[0]
	if cand.FinishReason == "SAFETY" {
		return Outcome{Status: StatusContentBlocked, Err: fmt.Errorf("candidate blocked by safety filter")}
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		text.WriteString(part.Text)
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return Outcome{Status: StatusMalformed, Err: fmt.Errorf("empty text in response")}
	}
	return Outcome{Status: StatusSuccess, Text: out}
}

// classifyHTTPError maps a non-200 response to an outcome. HTTP 429 and
// RESOURCE_EXHAUSTED are quota; 5xx is transport; anything else is malformed.
func classifyHTTPError(resp *http.Response) Outcome {
	body, _ := io.ReadAll(resp.Body)

	var gErr geminiError
	detail := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &gErr) == nil && gErr.Error.Message != "" {
		detail = gErr.Error.Message
	}
	err := fmt.Errorf("API returned HTTP %d: %s", resp.StatusCode, detail)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		gErr.Error.Status == "RESOURCE_EXHAUSTED",
		looksLikeQuota(detail):
		return Outcome{Status: StatusQuotaExceeded, Err: err}
	case resp.StatusCode >= 500:
		return Outcome{Status: StatusTransportError, Err: err}
	default:
		return Outcome{Status: StatusMalformed, Err: err}
	}
}

// looksLikeQuota is the prose fallback for boundaries that expose no typed
// signal: HTTP 429 in the text, or "quota"/"rate" case-insensitively.
func looksLikeQuota(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(s, "429") ||
		strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate")
}
