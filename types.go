package goSession

import (
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/session"
)

// SessionClass is the closed set of session kinds; see [session.Class].
type SessionClass = session.Class

const (
	// SmartAuth sessions come from the one-step smart login.
	SmartAuth = session.ClassSmartAuth
	// ManualLogin sessions come from explicit credential login.
	ManualLogin = session.ClassManualLogin
	// AdminSession sessions are operator sessions with the shortest lifetime.
	AdminSession = session.ClassAdmin
)

// ParseSessionClass maps "smart_auth", "manual_login", or "admin_session" to
// a [SessionClass]. Unknown names wrap [ErrConfiguration].
func ParseSessionClass(name string) (SessionClass, error) {
	class, err := session.ParseClass(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v %q", ErrConfiguration, err, name)
	}
	return class, nil
}

// SessionInfo is the read-only snapshot returned by [Engine.GetSessionInfo].
type SessionInfo = session.Info

// Identity is the opaque payload stored with a session and handed back
// verbatim by [Engine.ValidateSession]. The engine never inspects it.
type Identity = any

// Credentials is what a user presents to [Engine.Login].
type Credentials = identity.Credentials

// ActivitySummary describes a user's recent activity, for "session status" displays.
type ActivitySummary struct {
	UserID          int64
	Authenticated   bool
	Class           SessionClass
	ActivityCount   int64
	ActivityScore   float64
	LastActivityKey string
	LastActivityAt  time.Time
	// RecentInteractions counts interactions seen inside the spam window,
	// including suppressed ones.
	RecentInteractions int
	TimeUntilInactive  time.Duration
	TimeUntilHard      time.Duration
	Warned             bool
}

// ServiceStats is the scheduler and store summary returned by [Engine.Stats].
type ServiceStats struct {
	Running         bool
	StartedAt       time.Time
	Uptime          time.Duration
	WarningInterval time.Duration
	SweepInterval   time.Duration

	ActiveSessions  int
	WarnedSessions  int
	SessionsByClass map[SessionClass]int
	TrackedUsers    int

	WarningsSent    uint64
	WarningsFailed  uint64
	SessionsCleaned uint64

	LastSweep       time.Time
	LastWarningScan time.Time
}
