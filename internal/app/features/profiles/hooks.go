package profiles

import (
	"context"
	"net/url"
	"strings"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/htmlsanitize"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/normalize"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/svcutil"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 4000
)

// SanitizeProfile cleans the writable profile fields in call data. Names
// lose all markup; descriptions keep safe formatting; avatars must be
// http(s) URLs.
func SanitizeProfile() service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		data := make(map[string]any, len(hc.Data))
		for k, v := range hc.Data {
			data[k] = v
		}

		if v, ok := data["name"].(string); ok {
			name := normalize.Name(htmlsanitize.StripTags(v))
			if len(name) > maxNameLength {
				return service.BadRequest("name must be at most %d characters", maxNameLength)
			}
			data["name"] = name
		}
		if v, ok := data["description"].(string); ok {
			desc := strings.TrimSpace(htmlsanitize.Sanitize(v))
			if len(desc) > maxDescriptionLength {
				return service.BadRequest("description must be at most %d characters", maxDescriptionLength)
			}
			data["description"] = desc
		}
		if v, ok := data["avatar"].(string); ok {
			v = strings.TrimSpace(v)
			if v != "" && !isWebURL(v) {
				return service.BadRequest("avatar must be an http or https URL")
			}
			data["avatar"] = v
		}
		hc.Data = data
		return nil
	})
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// RestrictToOwner rejects changes to a profile by anyone but its agent.
func RestrictToOwner(store Store) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		p := hc.Params
		if !p.Authenticated() {
			return service.NotAuthenticated("log in to change a profile")
		}
		oid, err := svcutil.ParseID("id", hc.ID)
		if err != nil {
			return err
		}
		existing, err := store.GetByID(ctx, oid)
		if err != nil {
			return svcutil.StoreError(err, "profile")
		}
		if existing.AgentID != p.CurrentAgent.ID {
			return service.Forbidden("profile belongs to another agent")
		}
		return nil
	})
}
