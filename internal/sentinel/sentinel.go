// Package sentinel gates paid itinerary generation behind a tiered input
// validation pipeline: cheap deterministic checks first, then a semantic
// LLM classifier that has the final word. It also builds the security
// instruction block prepended to every downstream generation prompt.
package sentinel

import "context"

// Request is the unit of work submitted to the pipeline. Every field is
// untrusted, arbitrary-language text.
type Request struct {
	Destination *string `json:"destination"`
	Notes       *string `json:"notes"`
	UserID      *string `json:"userId"`
}

// Verdict is the accept/reject result returned to callers.
//
// IsValid is true exactly when none of HasPromptInjection,
// HasInappropriateContent and !IsTravelRelated hold.
type Verdict struct {
	IsValid                 bool   `json:"isValid"`
	IsTravelRelated         bool   `json:"isTravelRelated"`
	HasPromptInjection      bool   `json:"hasPromptInjection"`
	HasInappropriateContent bool   `json:"hasInappropriateContent"`
	Reason                  string `json:"reason,omitempty"`
	Confidence              int    `json:"confidence"`

	// Category is the primary reason for a rejection. Never serialized.
	Category Category `json:"-"`
	// Unavailable marks a fail-closed verdict from a classifier outage.
	Unavailable bool `json:"-"`
}

// Validator is the single entry point the rest of the application calls
// before spending money on an LLM generation.
type Validator interface {
	ValidateUserInput(ctx context.Context, req Request) Verdict
}

func accept(confidence int) Verdict {
	return Verdict{IsValid: true, IsTravelRelated: true, Confidence: confidence}
}

// reject builds a rejection whose flags are derived from the category so
// the flag/valid coupling holds by construction.
func reject(c Category, reason string, confidence int) Verdict {
	v := Verdict{
		IsTravelRelated: true,
		Reason:          reason,
		Confidence:      confidence,
		Category:        c,
	}
	switch {
	case c == CategoryPromptInjection:
		v.HasPromptInjection = true
		v.IsTravelRelated = false
	case c.Inappropriate():
		v.HasInappropriateContent = true
	default:
		v.IsTravelRelated = false
	}
	if v.Reason == "" {
		v.Reason = c.userReason()
	}
	return v
}

func unavailable() Verdict {
	return Verdict{Reason: reasonUnavailable, Unavailable: true}
}

// coupled reports whether v satisfies the flag/valid invariant.
func coupled(v Verdict) bool {
	return v.IsValid == !(v.HasPromptInjection || v.HasInappropriateContent || !v.IsTravelRelated)
}
