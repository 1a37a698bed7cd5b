package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/identity"
)

// DefaultChannel is the pub/sub channel events are read from when none is configured.
const DefaultChannel = "gosession:events"

// Event types.
const (
	TypeCreate      = "create"
	TypeLogin       = "login"
	TypeActivity    = "activity"
	TypeLogout      = "logout"
	TypeExtend      = "extend"
	TypeForceExpire = "force_expire"
)

// ErrInvalidEvent is returned for payloads that cannot be applied.
var ErrInvalidEvent = errors.New("invalid inbound event")

// Event is one session event. Fields beyond Type and UserID are read
// according to Type.
type Event struct {
	ID       string             `json:"id,omitempty"`
	Type     string             `json:"type"`
	UserID   int64              `json:"user_id"`
	Class    string             `json:"class,omitempty"`
	Category string             `json:"category,omitempty"`
	Detail   string             `json:"detail,omitempty"`
	Email    string             `json:"email,omitempty"`
	Password string             `json:"password,omitempty"`
	Hours    int                `json:"hours,omitempty"`
	Reason   string             `json:"reason,omitempty"`
	Identity *identity.Identity `json:"identity,omitempty"`
}

// Sessions is the part of [goSession.Engine] the handler drives.
type Sessions interface {
	CreateSession(ctx context.Context, userID int64, identity goSession.Identity, class goSession.SessionClass) (string, error)
	Login(ctx context.Context, userID int64, creds goSession.Credentials, class goSession.SessionClass) (string, error)
	RecordActivity(ctx context.Context, userID int64, category, detail string) bool
	RevokeSession(ctx context.Context, userID int64) bool
	ExtendWithNotice(ctx context.Context, userID int64, hours int, reason string) bool
	ForceExpire(ctx context.Context, userID int64, reason string) bool
}

// Handler decodes and applies events.
type Handler struct {
	sessions Sessions
	logger   *slog.Logger
}

// NewHandler creates a [Handler]. A nil logger selects slog.Default().
func NewHandler(sessions Sessions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sessions: sessions, logger: logger}
}

// Handle applies one JSON payload. Malformed or unknown events wrap
// [ErrInvalidEvent]; engine errors (rejected logins, unknown classes) are
// returned as is. Operations that find no session are not errors.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if ev.UserID == 0 {
		return fmt.Errorf("%w: missing user_id", ErrInvalidEvent)
	}
	return h.Apply(ctx, ev)
}

// Apply applies a decoded event.
func (h *Handler) Apply(ctx context.Context, ev Event) error {
	switch strings.ToLower(ev.Type) {
	case TypeCreate:
		class, err := goSession.ParseSessionClass(ev.Class)
		if err != nil {
			return err
		}
		var payload goSession.Identity
		if ev.Identity != nil {
			id := *ev.Identity
			if id.UserID == 0 {
				id.UserID = ev.UserID
			}
			payload = id
		}
		_, err = h.sessions.CreateSession(ctx, ev.UserID, payload, class)
		return err

	case TypeLogin:
		class, err := goSession.ParseSessionClass(ev.Class)
		if err != nil {
			return err
		}
		_, err = h.sessions.Login(ctx, ev.UserID, goSession.Credentials{Email: ev.Email, Password: ev.Password}, class)
		return err

	case TypeActivity:
		if ev.Category == "" {
			return fmt.Errorf("%w: activity without category", ErrInvalidEvent)
		}
		if !h.sessions.RecordActivity(ctx, ev.UserID, ev.Category, ev.Detail) {
			h.logger.DebugContext(ctx, "activity not applied", "user_id", ev.UserID, "category", ev.Category, "detail", ev.Detail)
		}
		return nil

	case TypeLogout:
		h.sessions.RevokeSession(ctx, ev.UserID)
		return nil

	case TypeExtend:
		if ev.Hours <= 0 {
			return fmt.Errorf("%w: extend requires positive hours", ErrInvalidEvent)
		}
		h.sessions.ExtendWithNotice(ctx, ev.UserID, ev.Hours, ev.Reason)
		return nil

	case TypeForceExpire:
		h.sessions.ForceExpire(ctx, ev.UserID, ev.Reason)
		return nil

	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, ev.Type)
	}
}
