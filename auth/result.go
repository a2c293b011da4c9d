package auth

import "fmt"

// Status discriminates the three authentication outcomes.
type Status int

const (
	// StatusFailed is the zero value so an empty Outcome never reads as
	// authenticated.
	StatusFailed Status = iota
	StatusAuthenticated
	StatusExempt
)

// Outcome is the result of one authentication attempt. Exactly one of the
// three variants applies: Principal is non-nil iff Status is
// StatusAuthenticated; Kind and Err are meaningful iff Status is
// StatusFailed.
type Outcome struct {
	Status    Status
	Principal *Principal
	Kind      FailureKind
	Err       error
}

// NewAuthenticated wraps a principal in a success outcome.
func NewAuthenticated(p *Principal) Outcome {
	return Outcome{Status: StatusAuthenticated, Principal: p}
}

// NewExempt reports that the connection was explicitly allowed through
// without any authentication attempt.
func NewExempt() Outcome {
	return Outcome{Status: StatusExempt}
}

// NewFailure wraps a classified validation error. Failures are terminal for
// the attempt; nothing in this package retries them.
func NewFailure(kind FailureKind, err error) Outcome {
	return Outcome{Status: StatusFailed, Kind: kind, Err: err}
}

// IsAuthenticated reports whether the outcome carries a principal.
func (o Outcome) IsAuthenticated() bool { return o.Status == StatusAuthenticated }

// IsExempt reports whether authentication was skipped by exemption.
func (o Outcome) IsExempt() bool { return o.Status == StatusExempt }

// Detail renders the user-visible failure message, e.g.
// "token_expired: token is expired". Empty for non-failure outcomes.
func (o Outcome) Detail() string {
	if o.Status != StatusFailed {
		return ""
	}
	return fmt.Sprintf("%s: %v", o.Kind, o.Err)
}
