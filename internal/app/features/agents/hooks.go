package agents

import (
	"context"
	"fmt"
	"strconv"

	"github.com/evaluation-alex/dogstack-agents/internal/app/features/credentials"
	"github.com/evaluation-alex/dogstack-agents/internal/app/features/profiles"
	"github.com/evaluation-alex/dogstack-agents/internal/app/features/relationships"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/htmlsanitize"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/inputval"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/normalize"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/paging"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/svcutil"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const signupKey = "agents.signup"

type signupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// ValidateSignup checks signup data before the agent is created and keeps
// it for the after hooks. Emails already registered are rejected.
func ValidateSignup() service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		var in signupInput
		if err := service.Decode(hc.Data, &in); err != nil {
			return err
		}
		in.Email = normalize.Email(in.Email)
		if !inputval.IsValidEmail(in.Email) {
			return service.BadRequest("email is not valid")
		}
		if !inputval.IsValidPassword(in.Password) {
			return service.BadRequest("password must be %d to %d characters",
				inputval.MinPasswordLength, inputval.MaxPasswordLength)
		}
		if normalize.Name(htmlsanitize.StripTags(in.Name)) == "" {
			return service.BadRequest("name is required")
		}

		res, err := hc.App.Service(credentials.Path).Find(ctx, &service.Params{
			Query: map[string]string{"email": in.Email},
		})
		if err != nil {
			return err
		}
		if existing, _ := res.([]models.Credential); len(existing) > 0 {
			return service.Conflict("email is already registered")
		}

		hc.Params.Set(signupKey, in)
		return nil
	})
}

// CreateCredential creates the new agent's login credential.
func CreateCredential(store Store, logger *zap.Logger) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		agent, in, err := signupState(hc)
		if err != nil {
			return err
		}
		_, err = hc.App.Service(credentials.Path).Create(ctx, map[string]any{
			"agentId":  agent.ID.Hex(),
			"email":    in.Email,
			"password": in.Password,
		}, nil)
		if err != nil {
			rollbackSignup(ctx, hc.App, store, logger, agent.ID)
			return err
		}
		return nil
	})
}

// CreateProfile creates the new agent's profile.
func CreateProfile(store Store, logger *zap.Logger) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		agent, in, err := signupState(hc)
		if err != nil {
			return err
		}
		_, err = hc.App.Service(profiles.Path).Create(ctx, map[string]any{
			"agentId": agent.ID.Hex(),
			"name":    in.Name,
		}, nil)
		if err != nil {
			rollbackSignup(ctx, hc.App, store, logger, agent.ID)
			return err
		}
		return nil
	})
}

func signupState(hc *service.Context) (models.Agent, signupInput, error) {
	agent, ok := hc.Result.(models.Agent)
	if !ok {
		return models.Agent{}, signupInput{}, fmt.Errorf("unexpected agent result %T", hc.Result)
	}
	v, ok := hc.Params.Value(signupKey)
	if !ok {
		return models.Agent{}, signupInput{}, service.BadRequest("signup data missing")
	}
	return agent, v.(signupInput), nil
}

// rollbackSignup undoes a partial signup. Failures are logged, not returned,
// so the caller sees the error that triggered the rollback.
func rollbackSignup(ctx context.Context, app *service.App, store Store, logger *zap.Logger, agentID primitive.ObjectID) {
	if err := removeAll(ctx, app, credentials.Path, map[string]string{"agentId": agentID.Hex()}); err != nil {
		logger.Warn("signup rollback: remove credentials", zap.String("agent_id", agentID.Hex()), zap.Error(err))
	}
	if err := store.Delete(ctx, agentID); err != nil {
		logger.Warn("signup rollback: delete agent", zap.String("agent_id", agentID.Hex()), zap.Error(err))
	}
}

// ChangePassword forwards a password in patch data to the agent's
// credentials. Any other field is rejected.
func ChangePassword() service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		pw, hasPassword := hc.Data["password"]
		for k := range hc.Data {
			if k != "password" {
				return service.BadRequest("field %q cannot be changed", k)
			}
		}
		if !hasPassword {
			return service.BadRequest("nothing to change")
		}

		creds := hc.App.Service(credentials.Path)
		res, err := creds.Find(ctx, &service.Params{Query: map[string]string{"agentId": hc.ID}})
		if err != nil {
			return err
		}
		list, _ := res.([]models.Credential)
		if len(list) == 0 {
			return service.BadRequest("agent has no password")
		}
		for _, c := range list {
			if _, err := creds.Patch(ctx, c.ID.Hex(), map[string]any{"password": pw}, nil); err != nil {
				return err
			}
		}
		hc.Data = map[string]any{}
		return nil
	})
}

// RemoveDependents runs before an agent is removed. It deletes the agent's
// relationships in either direction, then its profiles, then its
// credentials. Any failure stops the removal with the agent still in
// place, so the call can be retried.
func RemoveDependents(store Store) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		oid, err := svcutil.ParseID("id", hc.ID)
		if err != nil {
			return err
		}
		if _, err := store.GetByID(ctx, oid); err != nil {
			return svcutil.StoreError(err, "agent")
		}
		id := oid.Hex()
		steps := []struct {
			path  string
			query map[string]string
		}{
			{relationships.Path, map[string]string{"sourceId": id}},
			{relationships.Path, map[string]string{"targetId": id}},
			{profiles.Path, map[string]string{"agentId": id}},
			{credentials.Path, map[string]string{"agentId": id}},
		}
		for _, st := range steps {
			if err := removeAll(ctx, hc.App, st.path, st.query); err != nil {
				return fmt.Errorf("remove %s of agent %s: %w", st.path, id, err)
			}
		}
		return nil
	})
}

// Audit records signups, password changes and removals in the audit trail.
func Audit(audit *auditlog.Logger) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		agent, ok := hc.Result.(models.Agent)
		if !ok {
			return nil
		}
		switch hc.Method {
		case service.MethodCreate:
			audit.AgentCreated(ctx, hc.Params, agent.ID)
		case service.MethodPatch:
			audit.PasswordChanged(ctx, hc.Params, agent.ID)
		case service.MethodRemove:
			audit.AgentRemoved(ctx, hc.Params, agent.ID)
		}
		return nil
	})
}

// removeAll removes every record of path matching query, a page at a time.
func removeAll(ctx context.Context, app *service.App, path string, query map[string]string) error {
	svc := app.Service(path)
	q := map[string]string{paging.LimitKey: strconv.Itoa(paging.MaxPageSize)}
	for k, v := range query {
		q[k] = v
	}
	for {
		res, err := svc.Find(ctx, &service.Params{Query: q})
		if err != nil {
			return err
		}
		ids := idsOf(res)
		if len(ids) == 0 {
			return nil
		}
		for _, id := range ids {
			if _, err := svc.Remove(ctx, id, nil); err != nil {
				return err
			}
		}
	}
}

func idsOf(res any) []string {
	var ids []string
	switch rows := res.(type) {
	case []models.Credential:
		for _, r := range rows {
			ids = append(ids, r.ID.Hex())
		}
	case []models.Profile:
		for _, r := range rows {
			ids = append(ids, r.ID.Hex())
		}
	case []models.Relationship:
		for _, r := range rows {
			ids = append(ids, r.ID.Hex())
		}
	}
	return ids
}
