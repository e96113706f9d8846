package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
)

const tokenName = "dogstack-access-token"

// ErrInvalidToken is returned for tokens that fail verification or expired.
var ErrInvalidToken = errors.New("invalid access token")

// Claims is the signed payload of an access token.
type Claims struct {
	SessionID string `json:"sid"`
	AgentID   string `json:"aid"`
	IssuedAt  int64  `json:"iat"`
}

// TokenCodec signs and verifies access tokens.
type TokenCodec struct {
	sc *securecookie.SecureCookie
}

// NewTokenCodec returns a codec whose tokens are valid for maxAge.
func NewTokenCodec(hashKey []byte, maxAge time.Duration) *TokenCodec {
	sc := securecookie.New(hashKey, nil)
	sc.MaxAge(int(maxAge.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &TokenCodec{sc: sc}
}

// Encode signs c.
func (tc *TokenCodec) Encode(c Claims) (string, error) {
	if c.IssuedAt == 0 {
		c.IssuedAt = time.Now().Unix()
	}
	tok, err := tc.sc.Encode(tokenName, c)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return tok, nil
}

// Decode verifies token and returns its claims.
func (tc *TokenCodec) Decode(token string) (Claims, error) {
	var c Claims
	if token == "" {
		return c, ErrInvalidToken
	}
	if err := tc.sc.Decode(tokenName, token, &c); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return c, nil
}
