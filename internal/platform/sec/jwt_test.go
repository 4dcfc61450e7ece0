// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/sec"
)

var testIdentity = sec.Identity{
	AccountID: "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b",
	Username:  "alice",
	Email:     "alice@example.com",
}

func newTestService(t *testing.T, opts ...sec.Option) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(sec.TokenConfig{
		Issuer:        "vidora.test",
		AccessSecret:  []byte("access-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshSecret: []byte("refresh-secret"),
		RefreshTTL:    240 * time.Hour,
	}, opts...)
	require.NoError(t, err)
	return service
}

/*
TestNewTokenService_RejectsBadConfig covers constructor validation.
*/
func TestNewTokenService_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  sec.TokenConfig
	}{
		{"missing_secret", sec.TokenConfig{AccessSecret: []byte("a"), AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"same_secret", sec.TokenConfig{AccessSecret: []byte("s"), RefreshSecret: []byte("s"), AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"zero_ttl", sec.TokenConfig{AccessSecret: []byte("a"), RefreshSecret: []byte("r"), RefreshTTL: time.Hour}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenService(tt.cfg)
			assert.Error(t, err)
		})
	}
}

/*
TestAccessToken_RoundTrip verifies that issued claims survive verification.
*/
func TestAccessToken_RoundTrip(t *testing.T) {
	service := newTestService(t)

	token, err := service.IssueAccessToken(testIdentity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

	claims, err := service.VerifyAccessToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, testIdentity.AccountID, claims.AccountID)
	assert.Equal(t, testIdentity.Username, claims.Username)
	assert.Equal(t, testIdentity.Email, claims.Email)
	assert.Equal(t, sec.TokenKindAccess, claims.Kind)
	assert.Equal(t, "vidora.test", claims.Issuer)
}

/*
TestRefreshToken_CarriesOnlyAccountID ensures no identity or secret material leaks
into the refresh payload.
*/
func TestRefreshToken_CarriesOnlyAccountID(t *testing.T) {
	service := newTestService(t)

	token, err := service.IssueRefreshToken(testIdentity.AccountID)
	require.NoError(t, err)

	mapClaims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token.Value, mapClaims)
	require.NoError(t, err)

	assert.Equal(t, testIdentity.AccountID, mapClaims["aid"])
	assert.NotContains(t, mapClaims, "unm")
	assert.NotContains(t, mapClaims, "eml")

	claims, err := service.VerifyRefreshToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, testIdentity.AccountID, claims.AccountID)
}

/*
TestRefreshToken_Unique checks that back-to-back tokens for one account differ.
*/
func TestRefreshToken_Unique(t *testing.T) {
	fixed := time.Now()
	service := newTestService(t, sec.WithClock(func() time.Time { return fixed }))

	first, err := service.IssueRefreshToken(testIdentity.AccountID)
	require.NoError(t, err)
	second, err := service.IssueRefreshToken(testIdentity.AccountID)
	require.NoError(t, err)

	assert.NotEqual(t, first.Value, second.Value)
}

/*
TestVerify_Failures covers every rejection path of both verifiers.
*/
func TestVerify_Failures(t *testing.T) {
	service := newTestService(t)
	past := newTestService(t, sec.WithClock(func() time.Time { return time.Now().Add(-500 * time.Hour) }))

	foreign, err := sec.NewTokenService(sec.TokenConfig{
		Issuer:        "vidora.test",
		AccessSecret:  []byte("other-access"),
		AccessTTL:     time.Minute,
		RefreshSecret: []byte("other-refresh"),
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	access, err := service.IssueAccessToken(testIdentity)
	require.NoError(t, err)
	refresh, err := service.IssueRefreshToken(testIdentity.AccountID)
	require.NoError(t, err)
	expiredRefresh, err := past.IssueRefreshToken(testIdentity.AccountID)
	require.NoError(t, err)
	expiredAccess, err := past.IssueAccessToken(testIdentity)
	require.NoError(t, err)
	foreignRefresh, err := foreign.IssueRefreshToken(testIdentity.AccountID)
	require.NoError(t, err)
	foreignAccess, err := foreign.IssueAccessToken(testIdentity)
	require.NoError(t, err)

	t.Run("refresh_expired", func(t *testing.T) {
		_, err := service.VerifyRefreshToken(expiredRefresh.Value)
		assert.ErrorIs(t, err, sec.ErrTokenExpired)
	})

	t.Run("access_expired", func(t *testing.T) {
		_, err := service.VerifyAccessToken(expiredAccess.Value)
		assert.ErrorIs(t, err, sec.ErrTokenExpired)
	})

	t.Run("refresh_foreign_secret", func(t *testing.T) {
		_, err := service.VerifyRefreshToken(foreignRefresh.Value)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})

	t.Run("access_foreign_secret", func(t *testing.T) {
		_, err := service.VerifyAccessToken(foreignAccess.Value)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})

	t.Run("access_used_as_refresh", func(t *testing.T) {
		_, err := service.VerifyRefreshToken(access.Value)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})

	t.Run("refresh_used_as_access", func(t *testing.T) {
		_, err := service.VerifyAccessToken(refresh.Value)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := service.VerifyRefreshToken("not.a.jwt")
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})

	t.Run("tampered_payload", func(t *testing.T) {
		parts := strings.Split(refresh.Value, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]
		_, err := service.VerifyRefreshToken(tampered)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})

	t.Run("none_algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"aid": testIdentity.AccountID,
			"typ": "refresh",
			"iss": "vidora.test",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		value, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.VerifyRefreshToken(value)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	})
}

/*
TestVerifyToken_MatchesAccessVerifier ensures the middleware entry point uses the access secret.
*/
func TestVerifyToken_MatchesAccessVerifier(t *testing.T) {
	service := newTestService(t)

	access, err := service.IssueAccessToken(testIdentity)
	require.NoError(t, err)

	claims, err := service.VerifyToken(access.Value)
	require.NoError(t, err)
	assert.Equal(t, testIdentity.AccountID, claims.AccountID)
}
