// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/scirate-digest/pkg/types"
)

// Prompts ask for 2-3 sentences, chat-readable notation instead of raw
// LaTeX, and verbatim numeric values.

var singlePromptJA = template.Must(template.New("single-ja").Parse(`以下の論文を2-3文の日本語で簡潔に要約してください。

【重要な指示】
- 専門用語は残しつつ、何を研究したかが分かるように説明してください
- 数式はLaTeXではなく、チャットで読める形式で表記してください
  例: μ_c², P₁₁(E), Δt(E), φ⁴, ⟨ψ|H|ψ⟩
- 具体的な数値（パラメータ値、精度、誤差など）があれば正確に含めてください
- ギリシャ文字はそのまま使用: α, β, γ, δ, ε, θ, λ, μ, ν, π, σ, φ, ψ, ω
- 上付き・下付き文字: ₀₁₂₃₄₅₆₇₈₉, ⁰¹²³⁴⁵⁶⁷⁸⁹

タイトル: {{.Title}}

要旨: {{.Abstract}}

要約:`))

var singlePromptEN = template.Must(template.New("single-en").Parse(`Summarize the following paper in 2-3 sentences. Keep technical terms and explain what was studied.
Write formulas in chat-readable Unicode (e.g. μ_c², φ⁴, Δt(E)) rather than raw LaTeX, and keep literal numeric values (parameters, accuracies, errors) exactly as given.

Title: {{.Title}}

Abstract: {{.Abstract}}

Summary:`))

// inc gives the templates 1-based positional markers.
var promptFuncs = template.FuncMap{"inc": func(i int) int { return i + 1 }}

var batchPromptJA = template.Must(template.New("batch-ja").Funcs(promptFuncs).Parse(`以下の{{len .Papers}}件の論文をそれぞれ2-3文の日本語で簡潔に要約してください。

【重要な指示】
- 各要約の先頭に対応する番号を [1] のように付けてください
- 専門用語は残しつつ、何を研究したかが分かるように説明してください
- 数式はLaTeXではなく、チャットで読める形式で表記してください（例: μ_c², φ⁴, Δt(E)）
- 具体的な数値があれば正確に含めてください
{{range $i, $p := .Papers}}
[{{inc $i}}] タイトル: {{$p.Title}}
要旨: {{$p.Abstract}}
{{end}}
要約:`))

var batchPromptEN = template.Must(template.New("batch-en").Funcs(promptFuncs).Parse(`Summarize each of the following {{len .Papers}} papers in 2-3 sentences. Prefix each summary with its number as [1].
Keep technical terms, write formulas in chat-readable Unicode rather than raw LaTeX, and keep literal numeric values exactly as given.
{{range $i, $p := .Papers}}
[{{inc $i}}] Title: {{$p.Title}}
Abstract: {{$p.Abstract}}
{{end}}
Summaries:`))

// singlePrompt renders the one-paper prompt for the given language.
func singlePrompt(language, title, abstract string) (string, error) {
	tmpl := singlePromptEN
	if language == "ja" {
		tmpl = singlePromptJA
	}
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct{ Title, Abstract string }{title, abstract})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// batchPrompt renders the enumerated multi-paper prompt.
func batchPrompt(language string, papers []*types.Paper) (string, error) {
	tmpl := batchPromptEN
	if language == "ja" {
		tmpl = batchPromptJA
	}
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct{ Papers []*types.Paper }{papers})
	if err != nil {
		return "", fmt.Errorf("rendering batch prompt: %w", err)
	}
	return buf.String(), nil
}
