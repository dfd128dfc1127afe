// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notation converts LaTeX-style markup in generated summaries to
// plain Unicode so the text reads naturally in a chat client.
//
// The transform is pure and idempotent: glyphs it emits contain no
// remaining markup, so applying it twice equals applying it once.
package notation

import (
	"regexp"
	"strings"
)

// greek maps LaTeX command names to Greek letters.
var greek = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ",
	"epsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ",
	"nu": "ν", "xi": "ξ", "pi": "π", "rho": "ρ",
	"sigma": "σ", "tau": "τ", "upsilon": "υ", "phi": "φ",
	"chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ",
	"Xi": "Ξ", "Pi": "Π", "Sigma": "Σ", "Phi": "Φ",
	"Psi": "Ψ", "Omega": "Ω",
}

// operators maps LaTeX operator commands to Unicode symbols.
var operators = map[string]string{
	"times": "×", "cdot": "·", "pm": "±", "mp": "∓",
	"leq": "≤", "geq": "≥", "neq": "≠", "approx": "≈",
	"sim": "∼", "propto": "∝", "infty": "∞", "partial": "∂",
	"nabla": "∇", "sqrt": "√", "hbar": "ℏ", "ell": "ℓ",
	"rightarrow": "→", "to": "→", "leftarrow": "←",
	"langle": "⟨", "rangle": "⟩",
}

// superscripts and subscripts map ASCII to the corresponding Unicode glyph.
// Characters without a glyph leave the whole group unconverted.
var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'n': 'ⁿ', 'i': 'ⁱ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎',
	'a': 'ₐ', 'e': 'ₑ', 'o': 'ₒ', 'x': 'ₓ', 'h': 'ₕ',
	'k': 'ₖ', 'l': 'ₗ', 'm': 'ₘ', 'n': 'ₙ', 'p': 'ₚ',
	's': 'ₛ', 't': 'ₜ',
}

var (
	commandRe    = regexp.MustCompile(`\\([a-zA-Z]+)`)
	supGroupRe   = regexp.MustCompile(`\^\{([^{}]+)\}`)
	subGroupRe   = regexp.MustCompile(`_\{([^{}]+)\}`)
	supSingleRe  = regexp.MustCompile(`\^([0-9a-zA-Z+\-])`)
	subSingleRe  = regexp.MustCompile(`_([0-9a-zA-Z+\-])`)
	mathDelimRe  = regexp.MustCompile(`\$+`)
	collapseWSRe = regexp.MustCompile(`[ \t]{2,}`)
)

// Format rewrites LaTeX-style notation in s to Unicode glyphs. Markup it
// cannot represent is left untouched.
func Format(s string) string {
	s = commandRe.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1:]
		if g, ok := greek[name]; ok {
			return g
		}
		if op, ok := operators[name]; ok {
			return op
		}
		return m
	})

	s = supGroupRe.ReplaceAllStringFunc(s, func(m string) string {
		return convertGroup(m, supGroupRe, superscripts)
	})
	s = subGroupRe.ReplaceAllStringFunc(s, func(m string) string {
		return convertGroup(m, subGroupRe, subscripts)
	})

	s = supSingleRe.ReplaceAllStringFunc(s, func(m string) string {
		return convertSingle(m, superscripts)
	})
	s = subSingleRe.ReplaceAllStringFunc(s, func(m string) string {
		return convertSingle(m, subscripts)
	})

	s = mathDelimRe.ReplaceAllString(s, "")
	s = collapseWSRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// convertGroup maps a braced group like "^{11}" if every rune has a glyph.
func convertGroup(match string, re *regexp.Regexp, table map[rune]rune) string {
	inner := re.FindStringSubmatch(match)[1]
	var b strings.Builder
	for _, r := range inner {
		g, ok := table[r]
		if !ok {
			return match
		}
		b.WriteRune(g)
	}
	return b.String()
}

// convertSingle maps a bare one-character script like "^2".
func convertSingle(match string, table map[rune]rune) string {
	r := rune(match[1])
	if g, ok := table[r]; ok {
		return string(g)
	}
	return match
}
