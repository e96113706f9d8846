// internal/app/features/logout/handler.go
package logout

import (
	"errors"
	"net/http"

	"github.com/evaluation-alex/dogstack-agents/internal/app/features/authentication"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auth"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	App        *service.App
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(app *service.App, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		App:        app,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

// ServeLogout handles GET and POST /logout.
//
// The caller's session is closed through the authentication service, so
// the same hooks run as for DELETE /authentication. The cookie is cleared
// even when there was nothing to close.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if token := h.SessionMgr.Token(r); token != "" {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "logout")
		_, err := h.App.Service(authentication.Path).Remove(ctx, "", &service.Params{
			Provider:  service.ProviderREST,
			Token:     token,
			UserAgent: r.UserAgent(),
		})
		cancel()
		if err != nil && !errors.Is(err, service.ErrNotAuthenticated) {
			h.Log.Warn("logout: close session", zap.Error(err))
		}
	}

	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Error("logout: clear session cookie", zap.Error(err))
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation to "/".
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
