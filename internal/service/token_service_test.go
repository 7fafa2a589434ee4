package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-api/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService("   ", time.Hour, time.Minute)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	svc, err := NewTokenService("secret", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, svc.ttl)
	assert.Equal(t, DefaultClockTolerance, svc.leeway)
}

func TestTokenService_IssueVerify(t *testing.T) {
	user := model.User{ID: "user-1", Email: "a@x.com", Role: model.RoleAdmin}
	issuedAt := time.Unix(1_700_000_000, 0).UTC()

	newService := func(t *testing.T) *TokenService {
		svc, err := NewTokenService("test-secret", time.Hour, 60*time.Second)
		require.NoError(t, err)
		svc.now = fixedClock(issuedAt)
		return svc
	}

	t.Run("round trip returns embedded claims", func(t *testing.T) {
		svc := newService(t)
		token, err := svc.Issue(user)
		require.NoError(t, err)

		claims, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "a@x.com", claims.Email)
		assert.Equal(t, model.RoleAdmin, claims.Role)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.IssuedAt.Equal(issuedAt))
		assert.True(t, claims.ExpiresAt.Equal(issuedAt.Add(time.Hour)))
	})

	t.Run("each token has its own id", func(t *testing.T) {
		svc := newService(t)
		first, err := svc.Issue(user)
		require.NoError(t, err)
		second, err := svc.Issue(user)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("expiry honours clock tolerance", func(t *testing.T) {
		svc := newService(t)
		token, err := svc.Issue(user)
		require.NoError(t, err)
		expiry := issuedAt.Add(time.Hour)

		svc.now = fixedClock(expiry.Add(30 * time.Second))
		_, err = svc.Verify(token)
		assert.NoError(t, err)

		svc.now = fixedClock(expiry.Add(59 * time.Second))
		_, err = svc.Verify(token)
		assert.NoError(t, err)

		svc.now = fixedClock(expiry.Add(61 * time.Second))
		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, model.ErrTokenExpired)
	})

	t.Run("tampered token is invalid", func(t *testing.T) {
		svc := newService(t)
		token, err := svc.Issue(user)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		forged := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

		_, err = svc.Verify(forged)
		assert.ErrorIs(t, err, model.ErrTokenInvalid)
	})

	t.Run("token signed with another secret is invalid", func(t *testing.T) {
		other, err := NewTokenService("other-secret", time.Hour, time.Minute)
		require.NoError(t, err)
		other.now = fixedClock(issuedAt)
		token, err := other.Issue(user)
		require.NoError(t, err)

		_, err = newService(t).Verify(token)
		assert.ErrorIs(t, err, model.ErrTokenInvalid)
	})

	t.Run("unsigned token is invalid", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "user-1",
			"exp": issuedAt.Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = newService(t).Verify(unsigned)
		assert.ErrorIs(t, err, model.ErrTokenInvalid)
	})

	t.Run("token without subject or expiry is invalid", func(t *testing.T) {
		svc := newService(t)
		for _, claims := range []jwt.MapClaims{
			{"exp": issuedAt.Add(time.Hour).Unix()},
			{"sub": "user-1"},
		} {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
			require.NoError(t, err)
			_, err = svc.Verify(token)
			assert.ErrorIs(t, err, model.ErrTokenInvalid)
		}
	})

	t.Run("garbage is invalid", func(t *testing.T) {
		_, err := newService(t).Verify("not.a.token")
		assert.ErrorIs(t, err, model.ErrTokenInvalid)
	})
}
