// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

// Status classifies the result of one model call. The backend decides the
// case at the API boundary; the fallback loop never inspects error prose.
type Status int

const (
	// StatusSuccess means the model returned non-empty text.
	StatusSuccess Status = iota

	// StatusContentBlocked means a content-safety policy rejected the
	// prompt or the response.
	StatusContentBlocked

	// StatusQuotaExceeded means rate or quota exhaustion; the caller backs
	// off before trying the next model.
	StatusQuotaExceeded

	// StatusTransportError covers timeouts and connection failures.
	StatusTransportError

	// StatusMalformed covers undecodable responses and empty text.
	StatusMalformed
)

// String returns the status name for log lines.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusContentBlocked:
		return "content-blocked"
	case StatusQuotaExceeded:
		return "quota-exceeded"
	case StatusTransportError:
		return "transport-error"
	default:
		return "malformed-response"
	}
}

// Outcome is the tagged result of one model call.
type Outcome struct {
	Status Status
	Text   string // set only for StatusSuccess
	Err    error  // diagnostic detail, may be nil
}

// Backend generates text from a prompt with a named model. Implementations
// classify every failure into an Outcome status so tests can supply mocks.
type Backend interface {
	Generate(model, prompt string) Outcome
}
