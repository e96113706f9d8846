package credentials

import (
	"context"
	"fmt"

	"github.com/evaluation-alex/dogstack-agents/internal/app/system/inputval"
	"github.com/evaluation-alex/dogstack-agents/internal/app/system/service"
	"github.com/evaluation-alex/dogstack-agents/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword replaces data["password"] with a bcrypt hash under
// data["passwordHash"]. A caller-supplied passwordHash is discarded.
func HashPassword(cost int) service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		data := make(map[string]any, len(hc.Data))
		for k, v := range hc.Data {
			data[k] = v
		}
		delete(data, "passwordHash")

		raw, ok := data["password"]
		if ok {
			pw, isString := raw.(string)
			if !isString || !inputval.IsValidPassword(pw) {
				return service.BadRequest("password must be %d to %d characters",
					inputval.MinPasswordLength, inputval.MaxPasswordLength)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			data["passwordHash"] = string(hash)
			delete(data, "password")
		}
		hc.Data = data
		return nil
	})
}

// ProtectPassword clears password hashes from the result.
func ProtectPassword() service.Hook {
	return service.HookFunc(func(ctx context.Context, hc *service.Context) error {
		switch r := hc.Result.(type) {
		case models.Credential:
			r.PasswordHash = ""
			hc.Result = r
		case *models.Credential:
			c := *r
			c.PasswordHash = ""
			hc.Result = &c
		case []models.Credential:
			out := make([]models.Credential, len(r))
			for i, c := range r {
				c.PasswordHash = ""
				out[i] = c
			}
			hc.Result = out
		}
		return nil
	})
}

// CheckPassword reports whether pw matches the credential's hash.
func CheckPassword(c models.Credential, pw string) bool {
	if c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(pw)) == nil
}
