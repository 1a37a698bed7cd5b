package test

import (
	"context"
	"net/http"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/MrEthical07/goSession/notify"
)

// Guards the public API surface consumers compile against.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goSession.New
	_ = goSession.DefaultConfig
	_ = goSession.LoadConfigFile
	_ = goSession.ParseSessionClass

	var _ *goSession.Engine
	var _ goSession.Config
	var _ goSession.SessionInfo
	var _ goSession.ActivitySummary
	var _ goSession.ServiceStats
	var _ goSession.Credentials
	var _ goSession.AuditSink
	var _ notify.Notifier = (*notify.RedisPublisher)(nil)
	var _ notify.Notifier = (*notify.Breaker)(nil)

	var _ error = goSession.ErrConfiguration
	var _ error = goSession.ErrSessionNotFound
	var _ error = goSession.ErrNotifierFailure
	var _ error = goSession.ErrInvalidCredentials
	var _ error = goSession.ErrIdentityUnavailable

	var _ func(*goSession.Engine, middleware.UserIDFunc) func(http.Handler) http.Handler = middleware.RequireSession

	var _ func(*goSession.Engine, context.Context, int64, goSession.Identity, goSession.SessionClass) (string, error) = (*goSession.Engine).CreateSession
	var _ func(*goSession.Engine, context.Context, int64) (goSession.Identity, bool) = (*goSession.Engine).ValidateSession
	var _ func(*goSession.Engine, context.Context, int64, string, string) bool = (*goSession.Engine).RecordActivity
	var _ func(*goSession.Engine, context.Context, int64, int) bool = (*goSession.Engine).ExtendSession
	var _ func(*goSession.Engine, context.Context, int64) bool = (*goSession.Engine).RevokeSession
	var _ func(*goSession.Engine, context.Context) int = (*goSession.Engine).RunWarningScan
	var _ func(*goSession.Engine, context.Context) int = (*goSession.Engine).RunSweep
}
