package session

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidPolicy is returned by [PolicyTable.Validate] for inconsistent durations.
var ErrInvalidPolicy = errors.New("invalid session policy")

// ReprieveThreshold is the minimum deadline movement that clears a pending
// timeout warning.
const ReprieveThreshold = 2 * time.Hour

// Policy holds the timing rules of one session class.
type Policy struct {
	// MaxInactive is the initial inactivity window; the hard deadline is
	// CreatedAt + 2*MaxInactive.
	MaxInactive time.Duration `yaml:"max_inactive" toml:"max_inactive"`
	// WarningThreshold is measured from creation and must be below MaxInactive.
	WarningThreshold time.Duration `yaml:"warning_threshold" toml:"warning_threshold"`
	// ActivityExtend caps how far a single qualifying activity may push the deadline.
	ActivityExtend time.Duration `yaml:"activity_extend" toml:"activity_extend"`
}

func (p Policy) hardLifetime() time.Duration {
	return 2 * p.MaxInactive
}

func (p Policy) warningLead() time.Duration {
	return p.MaxInactive - p.WarningThreshold
}

func (p Policy) validate() error {
	if p.MaxInactive <= 0 {
		return errors.New("max inactive must be > 0")
	}
	if p.WarningThreshold <= 0 || p.WarningThreshold >= p.MaxInactive {
		return errors.New("warning threshold must be > 0 and < max inactive")
	}
	if p.ActivityExtend <= 0 || p.ActivityExtend > p.MaxInactive {
		return errors.New("activity extend must be > 0 and <= max inactive")
	}
	return nil
}

// PolicyTable is the explicit class → policy lookup.
type PolicyTable struct {
	SmartAuth   Policy `yaml:"smart_auth" toml:"smart_auth"`
	ManualLogin Policy `yaml:"manual_login" toml:"manual_login"`
	Admin       Policy `yaml:"admin_session" toml:"admin_session"`
}

// DefaultPolicies returns the stock policy table. Admin sessions are
// intentionally the shortest.
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		SmartAuth: Policy{
			MaxInactive:      24 * time.Hour,
			WarningThreshold: 20 * time.Hour,
			ActivityExtend:   12 * time.Hour,
		},
		ManualLogin: Policy{
			MaxInactive:      48 * time.Hour,
			WarningThreshold: 40 * time.Hour,
			ActivityExtend:   24 * time.Hour,
		},
		Admin: Policy{
			MaxInactive:      8 * time.Hour,
			WarningThreshold: 6 * time.Hour,
			ActivityExtend:   4 * time.Hour,
		},
	}
}

// For returns the policy for class, or [ErrUnknownClass].
func (t PolicyTable) For(class Class) (Policy, error) {
	switch class {
	case ClassSmartAuth:
		return t.SmartAuth, nil
	case ClassManualLogin:
		return t.ManualLogin, nil
	case ClassAdmin:
		return t.Admin, nil
	default:
		return Policy{}, fmt.Errorf("%w: %d", ErrUnknownClass, class)
	}
}

// Validate checks every class policy.
func (t PolicyTable) Validate() error {
	for _, class := range Classes() {
		p, _ := t.For(class)
		if err := p.validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPolicy, class, err)
		}
	}
	return nil
}

// Tier maps an activity weight to the fraction of the class extension cap
// that the activity earns.
func Tier(weight float64) float64 {
	switch {
	case weight >= 0.8:
		return 1.0
	case weight >= 0.5:
		return 0.7
	default:
		return 0.3
	}
}

func extensionFor(p Policy, weight float64) time.Duration {
	return time.Duration(math.Round(float64(p.ActivityExtend) * Tier(weight)))
}
