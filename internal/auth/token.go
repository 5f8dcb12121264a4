package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bloghq/blog-backend/internal/storage"
)

var (
	// ErrInvalidToken covers every verification failure: bad signature,
	// wrong algorithm, issuer or audience mismatch, expiry. Callers get no
	// partial trust and no detail.
	ErrInvalidToken = errors.New("token is invalid")

	// ErrUnauthenticated is returned when no usable identity can be
	// resolved from a request.
	ErrUnauthenticated = errors.New("authentication required")
)

// Claims carries the verified identity attributes of a token. It is produced
// once by Verify and consumed everywhere else; nothing downstream re-parses
// the token.
type Claims struct {
	Subject   string
	NameID    string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// tokenClaims is the internal claims type used for JWT signing and parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	NameID string `json:"nameid,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Tokens issues and verifies signed identity tokens with a symmetric key.
type Tokens struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokens builds a token issuer/verifier. The key must be non-empty; the
// config layer enforces that before this is reached. A nil now defaults to
// time.Now.
func NewTokens(key []byte, issuer, audience string, ttl time.Duration, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}
	return &Tokens{
		key:      key,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      now,
	}
}

// Issue mints a signed token for the user and returns it with its lifetime
// in seconds.
func (t *Tokens) Issue(user *storage.User) (string, int, error) {
	issuedAt := t.now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
		Email: user.Email,
		Name:  user.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, int(t.ttl.Seconds()), nil
}

// Verify checks signature, issuer, audience and expiration. Any mismatch
// yields ErrInvalidToken.
func (t *Tokens) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	if parsed.Issuer == "" || parsed.Issuer != t.issuer {
		return Claims{}, ErrInvalidToken
	}
	if !audienceContains(parsed.Audience, t.audience) {
		return Claims{}, ErrInvalidToken
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	if !parsed.ExpiresAt.Time.After(t.now()) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		Subject:   parsed.Subject,
		NameID:    parsed.NameID,
		Email:     parsed.Email,
		Name:      parsed.Name,
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
	}, nil
}

// ResolveUserID extracts the numeric user id from verified claims. The
// name-identifier claim takes precedence over the registered subject.
// Endpoints never trust a client-supplied user id outside the token.
func ResolveUserID(claims Claims) (int64, error) {
	subject := claims.NameID
	if subject == "" {
		subject = claims.Subject
	}
	if subject == "" {
		return 0, ErrUnauthenticated
	}
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}
