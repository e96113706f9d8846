package authentication

import (
	"context"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/ratelimit"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"go.uber.org/zap"
)

// LimitLogins rejects log in attempts over the per-IP or per-email limit
// with TooManyRequests. It runs before the password is checked.
func LimitLogins(limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		email, _ := hc.Data["email"].(string)
		if ok, reason := limiter.Check(hc.Params.IP, email); !ok {
			logger.Warn("login rate limited", zap.String("ip", hc.Params.IP))
			audit.LoginFailedRateLimit(ctx, hc.Params, email, reason)
			return service.TooManyRequests("%s", reason)
		}
		return nil
	})
}

// ResetLoginLimit clears the email window after a successful log in.
func ResetLoginLimit(limiter *ratelimit.LoginLimiter) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		email, _ := hc.Data["email"].(string)
		limiter.ResetEmail(email)
		return nil
	})
}
