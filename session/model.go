package session

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownClass is returned when a session class outside the closed set is used.
var ErrUnknownClass = errors.New("unknown session class")

// Class is the closed set of session kinds. The class is fixed at creation and
// selects the [Policy] applied to the session.
type Class uint8

const (
	// ClassSmartAuth is a session established through the one-step smart login.
	ClassSmartAuth Class = iota
	// ClassManualLogin is a session established with explicit credentials.
	ClassManualLogin
	// ClassAdmin is an operator session with a deliberately shorter lifetime.
	ClassAdmin

	classCount
)

// Classes returns every valid class in declaration order.
func Classes() []Class {
	return []Class{ClassSmartAuth, ClassManualLogin, ClassAdmin}
}

// Valid reports whether c belongs to the closed class set.
func (c Class) Valid() bool {
	return c < classCount
}

func (c Class) String() string {
	switch c {
	case ClassSmartAuth:
		return "smart_auth"
	case ClassManualLogin:
		return "manual_login"
	case ClassAdmin:
		return "admin_session"
	default:
		return "unknown"
	}
}

// ParseClass maps the textual class name back to a [Class].
func ParseClass(name string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "smart_auth", "smartauth":
		return ClassSmartAuth, nil
	case "manual_login", "manuallogin":
		return ClassManualLogin, nil
	case "admin_session", "admin":
		return ClassAdmin, nil
	default:
		return 0, ErrUnknownClass
	}
}

// ExpiryReason records why a session stopped being valid.
type ExpiryReason uint8

const (
	ReasonNone ExpiryReason = iota
	ReasonInactive
	ReasonHard
	ReasonRevoked
	ReasonReplaced
)

func (r ExpiryReason) String() string {
	switch r {
	case ReasonInactive:
		return "inactive"
	case ReasonHard:
		return "hard"
	case ReasonRevoked:
		return "revoked"
	case ReasonReplaced:
		return "replaced"
	default:
		return "none"
	}
}

// Session is the record tracking one authenticated user's access window.
//
// Sessions are owned by [Store]; callers only ever see copies through [Info].
type Session struct {
	UserID   int64
	Class    Class
	Identity any
	Token    string

	CreatedAt      time.Time
	LastActivityAt time.Time

	InactiveDeadline time.Time
	HardDeadline     time.Time
	WarnAt           time.Time

	ActivityCount   int64
	ActivityScore   float64
	LastActivityKey string

	Warned   bool
	WarnedAt time.Time
	Active   bool

	policy Policy
}

// rearmWarning moves the warning instant so that the warning lead time
// (MaxInactive - WarningThreshold) is kept relative to the current deadline.
func (s *Session) rearmWarning() {
	s.WarnAt = s.InactiveDeadline.Add(-s.policy.warningLead())
}

func (s *Session) info(now time.Time) Info {
	return Info{
		UserID:            s.UserID,
		Class:             s.Class,
		CreatedAt:         s.CreatedAt,
		LastActivityAt:    s.LastActivityAt,
		InactiveDeadline:  s.InactiveDeadline,
		HardDeadline:      s.HardDeadline,
		WarnAt:            s.WarnAt,
		ActivityCount:     s.ActivityCount,
		ActivityScore:     s.ActivityScore,
		LastActivityKey:   s.LastActivityKey,
		Warned:            s.Warned,
		WarnedAt:          s.WarnedAt,
		TimeUntilInactive: s.InactiveDeadline.Sub(now),
		TimeUntilHard:     s.HardDeadline.Sub(now),
	}
}

// Info is a read-only snapshot of a session used for user-facing displays,
// operator listings, and warning messages. It never carries the identity
// payload or the token.
type Info struct {
	UserID int64
	Class  Class

	CreatedAt        time.Time
	LastActivityAt   time.Time
	InactiveDeadline time.Time
	HardDeadline     time.Time
	WarnAt           time.Time

	ActivityCount   int64
	ActivityScore   float64
	LastActivityKey string

	Warned   bool
	WarnedAt time.Time

	TimeUntilInactive time.Duration
	TimeUntilHard     time.Duration
}

// Expired describes a session removed by [Store.Sweep].
type Expired struct {
	UserID        int64
	Class         Class
	Reason        ExpiryReason
	ActivityCount int64
}
