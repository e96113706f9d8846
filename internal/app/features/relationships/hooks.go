package relationships

import (
	"context"
	"errors"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/svcutil"
)

// AgentsPath is the service target agents are checked against.
const AgentsPath = "agents"

// SetSource forces sourceId to the current agent on external calls.
// Internal callers may name any source.
func SetSource() service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		p := hc.Params
		if !p.External() {
			return nil
		}
		if !p.Authenticated() {
			return service.NotAuthenticated("log in to create a relationship")
		}
		data := make(map[string]any, len(hc.Data)+1)
		for k, v := range hc.Data {
			data[k] = v
		}
		data["sourceId"] = p.CurrentAgent.ID.Hex()
		hc.Data = data
		return nil
	})
}

// RequireTarget checks that targetId names an existing agent.
func RequireTarget() service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		raw, _ := hc.Data["targetId"].(string)
		if _, err := svcutil.ParseID("targetId", raw); err != nil {
			return err
		}
		_, err := hc.App.Service(AgentsPath).Get(ctx, raw, nil)
		if errors.Is(err, service.ErrNotFound) {
			return service.BadRequest("target agent does not exist")
		}
		return err
	})
}

// RestrictToSource lets only an edge's source agent remove it.
func RestrictToSource(store Store) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		p := hc.Params
		if !p.External() {
			return nil
		}
		if !p.Authenticated() {
			return service.NotAuthenticated("log in to remove a relationship")
		}
		oid, err := svcutil.ParseID("id", hc.ID)
		if err != nil {
			return err
		}
		r, err := store.GetByID(ctx, oid)
		if err != nil {
			return svcutil.StoreError(err, "relationship")
		}
		if r.SourceID != p.CurrentAgent.ID {
			return service.Forbidden("only the source agent may remove a relationship")
		}
		return nil
	})
}
