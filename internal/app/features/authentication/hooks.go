package authentication

import (
	"context"
	"errors"

	"github.com/evaluation-alex/dogstack-agents/internal/app/features/credentials"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/auditlog"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/inputval"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/svcutil"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	verifiedAgentKey = "authentication.agent"
	strategyKey      = "authentication.strategy"
)

// CredentialLookup finds a credential by email.
type CredentialLookup interface {
	GetByEmail(ctx context.Context, email string) (models.Credential, error)
}

type loginInput struct {
	Strategy string `json:"strategy"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DummyHash returns a hash at the given bcrypt cost (0 means
// bcrypt.DefaultCost). Unknown-email logins compare against it so they take
// as long as wrong-password logins against stored hashes of that cost.
func DummyHash(cost int) ([]byte, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte("dogstack-dummy-password"), cost)
}

// VerifyCredentials checks email and password and records the agent for
// the handler. Every failure reads the same to the caller. dummyHash should
// come from DummyHash with the cost credentials are stored at.
func VerifyCredentials(creds CredentialLookup, dummyHash []byte, audit *auditlog.Logger) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		var in loginInput
		if err := service.Decode(hc.Data, &in); err != nil {
			return err
		}
		if in.Strategy == "" {
			in.Strategy = inputval.StrategyLocal
		}
		if !inputval.IsValidStrategy(in.Strategy) {
			return service.BadRequest("unsupported strategy %q", in.Strategy)
		}
		if in.Email == "" || in.Password == "" {
			return service.BadRequest("email and password are required")
		}

		c, err := creds.GetByEmail(ctx, in.Email)
		if errors.Is(err, mongo.ErrNoDocuments) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
			audit.LoginFailedUnknownEmail(ctx, hc.Params, in.Email)
			return service.NotAuthenticated("invalid login")
		}
		if err != nil {
			return svcutil.StoreError(err, "credential")
		}
		if !credentials.CheckPassword(c, in.Password) {
			audit.LoginFailedWrongPassword(ctx, hc.Params, c.AgentID, in.Email)
			return service.NotAuthenticated("invalid login")
		}

		hc.Params.Set(verifiedAgentKey, c.AgentID)
		hc.Params.Set(strategyKey, in.Strategy)
		return nil
	})
}
