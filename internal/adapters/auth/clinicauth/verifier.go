package clinicauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vet-appointments/internal/ports/auth"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenClaims son los claims que firma el servicio de autenticación.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	ClientID int64  `json:"client_id,omitempty"`
}

// Verifier implementa auth.AuthVerifier validando JWT HS256 localmente.
type Verifier struct {
	secret []byte
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrNotConfigured
	}
	return &Verifier{secret: []byte(secret)}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", ErrTokenInvalid)
	}

	out := auth.Claims{
		UserID: sub,
		Email:  strings.TrimSpace(claims.Email),
		Role:   auth.Role(strings.ToLower(strings.TrimSpace(claims.Role))),
	}
	if claims.ClientID > 0 {
		id := claims.ClientID
		out.ClientID = &id
		if out.Role == "" {
			out.Role = auth.RoleClient
		}
	}
	if out.Role == "" {
		out.Role = auth.RoleStaff
	}
	return out, nil
}

// Sign emite un token con los mismos claims (dev y tests).
func (v *Verifier) Sign(c auth.Claims, ttl time.Duration) (string, error) {
	tc := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Email: c.Email,
		Role:  string(c.Role),
	}
	if c.ClientID != nil {
		tc.ClientID = *c.ClientID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(v.secret)
}
