package session

import "time"

// VerdictKind is the outcome class of [Evaluate].
type VerdictKind uint8

const (
	VerdictHealthy VerdictKind = iota
	VerdictWarningNeeded
	VerdictExpired
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictWarningNeeded:
		return "warning_needed"
	case VerdictExpired:
		return "expired"
	default:
		return "healthy"
	}
}

// Verdict is the decision reached for one session at one instant.
// Reason is only set for [VerdictExpired].
type Verdict struct {
	Kind   VerdictKind
	Reason ExpiryReason
}

// Expired reports whether the verdict ends the session.
func (v Verdict) Expired() bool {
	return v.Kind == VerdictExpired
}

// Evaluate decides whether s is expired, due a warning, or healthy at now.
// It has no side effects; callers decide which mutation follows.
func Evaluate(s *Session, now time.Time) Verdict {
	if s == nil || !s.Active {
		return Verdict{Kind: VerdictExpired, Reason: ReasonRevoked}
	}
	if now.After(s.HardDeadline) {
		return Verdict{Kind: VerdictExpired, Reason: ReasonHard}
	}
	if now.After(s.InactiveDeadline) {
		return Verdict{Kind: VerdictExpired, Reason: ReasonInactive}
	}
	if !s.Warned && !now.Before(s.WarnAt) {
		return Verdict{Kind: VerdictWarningNeeded}
	}
	return Verdict{Kind: VerdictHealthy}
}
