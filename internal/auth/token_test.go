package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloghq/blog-backend/internal/storage"
)

var testKey = []byte("unit-test-signing-key")

func testUser() *storage.User {
	return &storage.User{
		ID:    42,
		Name:  "Ada",
		Email: "ada@example.com",
	}
}

func TestTokens_IssueVerify_RoundTrip(t *testing.T) {
	tokens := NewTokens(testKey, "blog-api", "blog-clients", time.Hour, nil)

	token, expiresIn, err := tokens.Issue(testUser())
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestTokens_Verify_Expired(t *testing.T) {
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokens(testKey, "blog-api", "blog-clients", time.Hour, func() time.Time {
		return current
	})

	token, _, err := tokens.Issue(testUser())
	require.NoError(t, err)

	_, err = tokens.Verify(token)
	require.NoError(t, err)

	// Advance past the TTL and the same token must stop verifying.
	current = current.Add(time.Hour + time.Second)
	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Verify_WrongKey(t *testing.T) {
	issuer := NewTokens(testKey, "blog-api", "blog-clients", time.Hour, nil)
	verifier := NewTokens([]byte("a-different-key"), "blog-api", "blog-clients", time.Hour, nil)

	token, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Verify_IssuerAudienceMismatch(t *testing.T) {
	issuer := NewTokens(testKey, "blog-api", "blog-clients", time.Hour, nil)
	token, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	wrongIssuer := NewTokens(testKey, "other-api", "blog-clients", time.Hour, nil)
	_, err = wrongIssuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongAudience := NewTokens(testKey, "blog-api", "other-clients", time.Hour, nil)
	_, err = wrongAudience.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Verify_UnsignedAlgorithmRejected(t *testing.T) {
	tokens := NewTokens(testKey, "blog-api", "blog-clients", time.Hour, nil)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "42",
		Issuer:    "blog-api",
		Audience:  jwt.ClaimStrings{"blog-clients"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Verify_Garbage(t *testing.T) {
	tokens := NewTokens(testKey, "blog-api", "blog-clients", time.Hour, nil)

	_, err := tokens.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tokens.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveUserID(t *testing.T) {
	tests := []struct {
		name    string
		claims  Claims
		want    int64
		wantErr bool
	}{
		{name: "subject claim", claims: Claims{Subject: "7"}, want: 7},
		{name: "name identifier wins over subject", claims: Claims{NameID: "9", Subject: "7"}, want: 9},
		{name: "non-numeric subject", claims: Claims{Subject: "abc"}, wantErr: true},
		{name: "non-numeric name identifier", claims: Claims{NameID: "abc", Subject: "7"}, wantErr: true},
		{name: "absent", claims: Claims{}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ResolveUserID(tc.claims)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnauthenticated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}
