package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	goSession "github.com/MrEthical07/goSession"
)

type sessionContextKey struct{}

type sessionValue struct {
	userID   int64
	identity goSession.Identity
}

// UserIDFunc resolves the numeric user ID of a request.
type UserIDFunc func(r *http.Request) (int64, bool)

// HeaderUserID reads a positive decimal user ID from header.
func HeaderUserID(header string) UserIDFunc {
	return func(r *http.Request) (int64, bool) {
		raw := strings.TrimSpace(r.Header.Get(header))
		if raw == "" {
			return 0, false
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}
}

// IdentityFromContext returns the user ID and session identity injected by
// [RequireSession].
func IdentityFromContext(ctx context.Context) (int64, goSession.Identity, bool) {
	v, ok := ctx.Value(sessionContextKey{}).(sessionValue)
	if !ok {
		return 0, nil, false
	}
	return v.userID, v.identity, true
}

// RequireSession responds 401 unless the request's user holds a live session.
func RequireSession(engine *goSession.Engine, userID UserIDFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil || userID == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			id, ok := userID(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ident, ok := engine.ValidateSession(r.Context(), id)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sessionValue{userID: id, identity: ident})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TrackActivity records category/detail for the caller once next has
// answered with a non-error status. detail may be nil, in which case the
// request path is used.
func TrackActivity(engine *goSession.Engine, userID UserIDFunc, category string, detail func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if engine == nil || userID == nil || rec.status >= http.StatusBadRequest {
				return
			}
			id, ok := userID(r)
			if !ok {
				return
			}
			d := r.URL.Path
			if detail != nil {
				d = detail(r)
			}
			engine.RecordActivity(r.Context(), id, category, d)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
