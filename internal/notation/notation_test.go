// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notation

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"greek letter", `the coupling \mu is small`, "the coupling μ is small"},
		{"uppercase greek", `\Delta t grows`, "Δ t grows"},
		{"operators", `a \times b \leq c \rightarrow d`, "a × b ≤ c → d"},
		{"superscript group", `\phi^{4} theory`, "φ⁴ theory"},
		{"subscript group", `P_{11} scattering`, "P₁₁ scattering"},
		{"bare superscript", `x^2 + y^2`, "x² + y²"},
		{"bare subscript", `E_0 level`, "E₀ level"},
		{"mixed expression", `P_{11}(E) at \lambda^{-1}`, "P₁₁(E) at λ⁻¹"},
		{"unconvertible group left alone", `f^{x+y}`, `f^{x+y}`},
		{"unconvertible single left alone", `m_c mass`, `m_c mass`},
		{"math delimiters stripped", `$\pi$ pulse`, "π pulse"},
		{"plain text untouched", "no markup here", "no markup here"},
		{"numbers preserved", `error of 0.03\%`, `error of 0.03\%`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	inputs := []string{
		`\phi^{4} with \mu_c^2 and P_{11\to 11}(E)`,
		`x^2 \times 10^{-3}`,
		"already converted: φ⁴, μ², P₁₁",
	}
	for _, in := range inputs {
		once := Format(in)
		twice := Format(once)
		if once != twice {
			t.Errorf("Format not idempotent on %q: %q != %q", in, once, twice)
		}
	}
}
