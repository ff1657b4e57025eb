// Package token implements the password-reset token service. Tokens
// are stateless HS256 JWTs carrying the user id and an issue time; no
// server-side table of outstanding tokens exists. Validity is purely a
// function of the signature, the token's age against a caller-supplied
// window, and the user's password_changed_at watermark.
package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkortel/goblog/internal/model"
	"github.com/mkortel/goblog/internal/repository"
)

// purposeReset distinguishes reset tokens from any other JWT signed
// with the same secret.
const purposeReset = "password_reset"

// Issuer mints and verifies password-reset tokens. The secret is
// injected at startup and read-only thereafter. Users is consulted
// during verification so tokens for deleted accounts are invalid.
type Issuer struct {
	Secret string
	Users  repository.UserStore
}

func NewIssuer(secret string, users repository.UserStore) *Issuer {
	return &Issuer{Secret: secret, Users: users}
}

// Issue produces an opaque signed token encoding the user's identity
// and the current time. It cannot be forged or altered without the
// secret.
func (i *Issuer) Issue(userID uint64) (string, error) {
	claims := jwt.MapClaims{
		"sub":     userID,
		"purpose": purposeReset,
		"iat":     time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(i.Secret))
}

// Verify decodes a token and checks signature, purpose and age in one
// step. It returns the identified user only when every check passes:
// the signature is valid, the purpose claim matches, the token is no
// older than maxAge, the token was not issued before the user's
// password_changed_at watermark, and the user still exists. Any
// failure reports ok=false; verification is never fatal to the caller.
func (i *Issuer) Verify(ctx context.Context, raw string, maxAge time.Duration) (model.User, bool) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(i.Secret), nil
	})
	if err != nil || !tok.Valid {
		return model.User{}, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.User{}, false
	}
	if purpose, _ := claims["purpose"].(string); purpose != purposeReset {
		return model.User{}, false
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return model.User{}, false
	}
	if time.Since(iat.Time) > maxAge {
		return model.User{}, false
	}
	userID, ok := subjectID(claims)
	if !ok {
		return model.User{}, false
	}
	u, err := i.Users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, false
	}
	// iat is truncated to seconds by the JWT codec, so compare against
	// a watermark truncated the same way.
	if iat.Time.Before(u.PasswordChangedAt.Truncate(time.Second)) {
		return model.User{}, false
	}
	return u, true
}

// subjectID extracts the numeric sub claim. JWT numbers decode as
// float64.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["sub"].(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}
