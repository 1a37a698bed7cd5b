package activity

import (
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/session"
	"github.com/jonboulle/clockwork"
)

// Recorder applies a weighted activity to a session. *session.Store satisfies it.
type Recorder interface {
	RecordActivity(userID int64, key string, weight float64) session.ActivityResult
}

// Outcome classifies what [Tracker.Track] did with an interaction.
type Outcome uint8

const (
	// OutcomeAccepted means the store recorded the activity.
	OutcomeAccepted Outcome = iota
	// OutcomeIgnored means the category or detail is not eligible.
	OutcomeIgnored
	// OutcomeSuppressed means the key repeated too often inside the window.
	OutcomeSuppressed
	// OutcomeNoSession means the activity passed the tracker but no live session exists.
	OutcomeNoSession
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeNoSession:
		return "no_session"
	default:
		return "unknown"
	}
}

// Result is the outcome of one [Tracker.Track] call.
type Result struct {
	Outcome Outcome
	Key     string
	Weight  float64
	// Session is only populated once the activity reached the recorder.
	Session session.ActivityResult
}

type entry struct {
	at  time.Time
	key string
}

// Tracker filters interactions before they renew a session.
//
// Gating is evaluated before spam suppression so ineligible interactions never
// occupy history slots. Suppressed calls never reach the recorder.
type Tracker struct {
	recorder Recorder
	cfg      TrackerConfig
	weights  WeightTable
	clock    clockwork.Clock

	categories    map[string]struct{}
	commands      map[string]struct{}
	passive       map[string]struct{}
	conversations map[string]struct{}

	mu      sync.Mutex
	history map[int64][]entry
}

// NewTracker creates a [Tracker] forwarding accepted activity to recorder.
// A nil clock selects the real wall clock.
func NewTracker(recorder Recorder, cfg TrackerConfig, weights WeightTable, clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cfg = cfg.Clone()
	return &Tracker{
		recorder:      recorder,
		cfg:           cfg,
		weights:       weights.Clone(),
		clock:         clock,
		categories:    toSet(cfg.Categories),
		commands:      toSet(cfg.Commands),
		passive:       toSet(cfg.PassiveCommands),
		conversations: toSet(cfg.Conversations),
		history:       make(map[int64][]entry),
	}
}

// Key builds the activity key for category and an optional detail.
func Key(category, detail string) string {
	if detail == "" {
		return category
	}
	return category + ":" + detail
}

// Track gates, de-duplicates, weighs, and forwards one interaction.
func (t *Tracker) Track(userID int64, category, detail string) Result {
	key := Key(category, detail)
	if !t.eligible(key) {
		return Result{Outcome: OutcomeIgnored, Key: key}
	}
	if t.suppress(userID, key) {
		return Result{Outcome: OutcomeSuppressed, Key: key}
	}

	weight := t.weights.Lookup(key)
	res := Result{Key: key, Weight: weight}
	res.Session = t.recorder.RecordActivity(userID, key, weight)
	if res.Session.Accepted {
		res.Outcome = OutcomeAccepted
	} else {
		res.Outcome = OutcomeNoSession
	}
	return res
}

func (t *Tracker) eligible(key string) bool {
	base, detail, _ := strings.Cut(key, ":")
	if _, ok := t.categories[base]; !ok {
		return false
	}
	switch base {
	case CategoryCommand:
		if _, passive := t.passive[detail]; passive {
			return false
		}
		_, ok := t.commands[detail]
		return ok
	case CategoryCallback:
		for _, prefix := range t.cfg.CallbackPrefixes {
			if strings.HasPrefix(detail, prefix) {
				return true
			}
		}
		return false
	case CategoryConversation:
		state, _, _ := strings.Cut(detail, ":")
		_, ok := t.conversations[state]
		return ok
	default:
		return true
	}
}

// suppress records key in userID's history unless it already repeated
// MaxRepeats times inside the window.
func (t *Tracker) suppress(userID int64, key string) bool {
	now := t.clock.Now()
	cutoff := now.Add(-t.cfg.Window)

	t.mu.Lock()
	defer t.mu.Unlock()

	hist := pruneBefore(t.history[userID], cutoff)
	same := 0
	for _, e := range hist {
		if e.key == key {
			same++
		}
	}
	if same >= t.cfg.MaxRepeats {
		t.history[userID] = hist
		return true
	}

	hist = append(hist, entry{at: now, key: key})
	if over := len(hist) - t.cfg.HistoryCap; over > 0 {
		hist = append(hist[:0:0], hist[over:]...)
	}
	t.history[userID] = hist
	return false
}

// Prune drops history older than twice the window and forgets idle users.
// It returns how many users were forgotten.
func (t *Tracker) Prune() int {
	cutoff := t.clock.Now().Add(-2 * t.cfg.Window)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for userID, hist := range t.history {
		hist = pruneBefore(hist, cutoff)
		if len(hist) == 0 {
			delete(t.history, userID)
			removed++
			continue
		}
		t.history[userID] = hist
	}
	return removed
}

// Forget drops userID's history, e.g. after logout.
func (t *Tracker) Forget(userID int64) {
	t.mu.Lock()
	delete(t.history, userID)
	t.mu.Unlock()
}

// RecentCount returns how many interactions of userID are inside the window.
func (t *Tracker) RecentCount(userID int64) int {
	cutoff := t.clock.Now().Add(-t.cfg.Window)

	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, e := range t.history[userID] {
		if e.at.After(cutoff) {
			n++
		}
	}
	return n
}

// TrackedUsers returns how many users currently have history.
func (t *Tracker) TrackedUsers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history)
}

// pruneBefore drops the leading entries not after cutoff. History is
// append-only in clock order, so the survivors are a suffix.
func pruneBefore(hist []entry, cutoff time.Time) []entry {
	i := 0
	for i < len(hist) && !hist[i].at.After(cutoff) {
		i++
	}
	if i == 0 {
		return hist
	}
	return append(hist[:0:0], hist[i:]...)
}
