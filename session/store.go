package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/internal"
	"github.com/jonboulle/clockwork"
)

// ErrTokenGeneration is returned when the random source fails while creating a session.
var ErrTokenGeneration = errors.New("session token generation failed")

const shardCount = 32

type shard struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// Store is the in-memory, concurrency-safe userID → [Session] map.
//
// All operations on one user hold that user's shard lock for the whole
// lookup-then-mutate unit. Cross-user operations ([Store.Sweep],
// [Store.ClaimWarnings], [Store.Snapshot]) visit shards one at a time and never
// hold more than one shard lock.
type Store struct {
	policies PolicyTable
	clock    clockwork.Clock
	newToken func() (string, error)

	shards [shardCount]shard
}

// Option customizes a [Store] at construction time.
type Option func(*Store)

// WithTokenSource replaces the random token generator. Intended for tests.
func WithTokenSource(fn func() (string, error)) Option {
	return func(s *Store) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

// NewStore creates an empty [Store] applying policies and reading time from
// clock. A nil clock selects the real wall clock.
func NewStore(policies PolicyTable, clock clockwork.Clock, opts ...Option) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Store{
		policies: policies,
		clock:    clock,
		newToken: internal.NewSessionToken,
	}
	for i := range s.shards {
		s.shards[i].sessions = make(map[int64]*Session)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) shardFor(userID int64) *shard {
	// Fibonacci hashing; the top 5 bits select one of 32 shards.
	return &s.shards[(uint64(userID)*0x9E3779B97F4A7C15)>>59]
}

// CreateResult describes a successful [Store.Create].
type CreateResult struct {
	Token    string
	Replaced bool
	Info     Info
}

// Create establishes a new session for userID, replacing any prior one in a
// single locked step. Only an unknown class or a failing random source error.
func (s *Store) Create(userID int64, identity any, class Class) (CreateResult, error) {
	policy, err := s.policies.For(class)
	if err != nil {
		return CreateResult{}, err
	}
	token, err := s.newToken()
	if err != nil {
		return CreateResult{}, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	now := s.clock.Now()
	sess := &Session{
		UserID:           userID,
		Class:            class,
		Identity:         identity,
		Token:            token,
		CreatedAt:        now,
		LastActivityAt:   now,
		InactiveDeadline: now.Add(policy.MaxInactive),
		HardDeadline:     now.Add(policy.hardLifetime()),
		WarnAt:           now.Add(policy.WarningThreshold),
		Active:           true,
		policy:           policy,
	}

	sh := s.shardFor(userID)
	sh.mu.Lock()
	prev, replaced := sh.sessions[userID]
	if replaced {
		prev.Active = false
	}
	sh.sessions[userID] = sess
	info := sess.info(now)
	sh.mu.Unlock()

	return CreateResult{Token: token, Replaced: replaced, Info: info}, nil
}

// ValidateResult is the detailed outcome of [Store.ValidateDetailed].
type ValidateResult struct {
	Identity any
	Class    Class
	Valid    bool
	// Found is true when an entry existed, live or expired.
	Found bool
	// Reason is set when the lookup evicted an expired session.
	Reason ExpiryReason
}

// Validate reports whether userID holds a live session and returns its
// identity. Expired sessions are evicted. Validation is never activity and
// never moves a deadline.
func (s *Store) Validate(userID int64) (any, bool) {
	res := s.ValidateDetailed(userID)
	return res.Identity, res.Valid
}

// ValidateDetailed is [Store.Validate] with the expiry reason exposed.
func (s *Store) ValidateDetailed(userID int64) ValidateResult {
	now := s.clock.Now()
	sh := s.shardFor(userID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[userID]
	if !ok {
		return ValidateResult{}
	}
	if v := Evaluate(sess, now); v.Expired() {
		evictLocked(sh, sess)
		return ValidateResult{Class: sess.Class, Found: true, Reason: v.Reason}
	}
	return ValidateResult{Identity: sess.Identity, Class: sess.Class, Valid: true, Found: true}
}

// ActivityResult is the outcome of [Store.RecordActivity].
type ActivityResult struct {
	Accepted  bool
	Extended  bool
	Reprieved bool

	Class         Class
	OldDeadline   time.Time
	NewDeadline   time.Time
	ActivityCount int64

	// Expired is set when the call found and evicted an already-expired session.
	Expired ExpiryReason
}

// RecordActivity renews userID's session for one qualifying activity.
//
// The extension is ActivityExtend scaled by [Tier](weight), measured from now
// and clamped to the hard deadline. The deadline only moves when the candidate
// is later than the current one; counters are updated either way. A warned
// session whose deadline moved by at least [ReprieveThreshold] is re-armed.
func (s *Store) RecordActivity(userID int64, key string, weight float64) ActivityResult {
	now := s.clock.Now()
	sh := s.shardFor(userID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[userID]
	if !ok {
		return ActivityResult{}
	}
	if v := Evaluate(sess, now); v.Expired() {
		evictLocked(sh, sess)
		return ActivityResult{Class: sess.Class, Expired: v.Reason}
	}

	old := sess.InactiveDeadline
	res := ActivityResult{
		Accepted:    true,
		Class:       sess.Class,
		OldDeadline: old,
		NewDeadline: old,
	}

	candidate := now.Add(extensionFor(sess.policy, weight))
	if candidate.After(sess.HardDeadline) {
		candidate = sess.HardDeadline
	}
	if candidate.After(old) {
		sess.InactiveDeadline = candidate
		sess.rearmWarning()
		res.Extended = true
		res.NewDeadline = candidate
		if sess.Warned && candidate.Sub(old) >= ReprieveThreshold {
			sess.Warned = false
			sess.WarnedAt = time.Time{}
			res.Reprieved = true
		}
	}

	sess.ActivityCount++
	sess.ActivityScore += weight
	sess.LastActivityAt = now
	sess.LastActivityKey = key
	res.ActivityCount = sess.ActivityCount
	return res
}

// Revoke removes userID's session. It returns true only when a live session
// was removed; an expired leftover is dropped silently.
func (s *Store) Revoke(userID int64) bool {
	now := s.clock.Now()
	sh := s.shardFor(userID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[userID]
	if !ok {
		return false
	}
	live := !Evaluate(sess, now).Expired()
	evictLocked(sh, sess)
	return live
}

// Token returns the token of userID's live session.
func (s *Store) Token(userID int64) (string, bool) {
	now := s.clock.Now()
	sh := s.shardFor(userID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[userID]
	if !ok || Evaluate(sess, now).Expired() {
		return "", false
	}
	return sess.Token, true
}

// RevokeToken is [Store.Revoke] restricted to the session identified by token.
// A session created for userID after token was read is left untouched.
func (s *Store) RevokeToken(userID int64, token string) bool {
	now := s.clock.Now()
	sh := s.shardFor(userID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[userID]
	if !ok || sess.Token != token {
		return false
	}
	live := !Evaluate(sess, now).Expired()
	evictLocked(sh, sess)
	return live
}

// Info returns a read-only snapshot of userID's session. It never mutates the
// store; an expired session that has not been swept yet is reported absent.
func (s *Store) Info(userID int64) (Info, bool) {
	now := s.clock.Now()
	sh := s.shardFor(userID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[userID]
	if !ok || Evaluate(sess, now).Expired() {
		return Info{}, false
	}
	return sess.info(now), true
}

// Evaluate returns the current [Verdict] for userID without mutating anything.
func (s *Store) Evaluate(userID int64) (Verdict, bool) {
	now := s.clock.Now()
	sh := s.shardFor(userID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[userID]
	if !ok {
		return Verdict{}, false
	}
	return Evaluate(sess, now), true
}

// ExtendManually pushes userID's inactivity deadline forward by d, clamped to
// the hard deadline, and clears any pending warning. It returns false for a
// non-positive d or when no live session exists.
func (s *Store) ExtendManually(userID int64, d time.Duration) bool {
	if d <= 0 {
		return false
	}
	now := s.clock.Now()
	sh := s.shardFor(userID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[userID]
	if !ok {
		return false
	}
	if Evaluate(sess, now).Expired() {
		evictLocked(sh, sess)
		return false
	}

	next := sess.InactiveDeadline.Add(d)
	if next.After(sess.HardDeadline) {
		next = sess.HardDeadline
	}
	sess.InactiveDeadline = next
	sess.rearmWarning()
	sess.Warned = false
	sess.WarnedAt = time.Time{}
	return true
}

// WarningClaim is a session that [Store.ClaimWarnings] has just marked warned.
type WarningClaim struct {
	Info
}

// ClaimWarnings marks every session whose verdict is [VerdictWarningNeeded] as
// warned and returns them ordered by user ID. A claimed session is not returned
// again until a renewal clears its warning.
func (s *Store) ClaimWarnings() []WarningClaim {
	now := s.clock.Now()
	var claims []WarningClaim
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for _, sess := range sh.sessions {
			if Evaluate(sess, now).Kind != VerdictWarningNeeded {
				continue
			}
			sess.Warned = true
			sess.WarnedAt = now
			claims = append(claims, WarningClaim{Info: sess.info(now)})
		}
		sh.mu.Unlock()
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].UserID < claims[j].UserID })
	return claims
}

// Sweep evicts every expired session and reports what was removed, ordered by user ID.
func (s *Store) Sweep() []Expired {
	now := s.clock.Now()
	var out []Expired
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for _, sess := range sh.sessions {
			v := Evaluate(sess, now)
			if !v.Expired() {
				continue
			}
			evictLocked(sh, sess)
			out = append(out, Expired{
				UserID:        sess.UserID,
				Class:         sess.Class,
				Reason:        v.Reason,
				ActivityCount: sess.ActivityCount,
			})
		}
		sh.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Snapshot returns an [Info] for every live session, ordered by user ID.
func (s *Store) Snapshot() []Info {
	now := s.clock.Now()
	var out []Info
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for _, sess := range sh.sessions {
			if Evaluate(sess, now).Expired() {
				continue
			}
			out = append(out, sess.info(now))
		}
		sh.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	now := s.clock.Now()
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for _, sess := range sh.sessions {
			if !Evaluate(sess, now).Expired() {
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}

func evictLocked(sh *shard, sess *Session) {
	sess.Active = false
	delete(sh.sessions, sess.UserID)
}
