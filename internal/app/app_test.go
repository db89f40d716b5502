package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abduss/filevault/internal/auth"
	"github.com/abduss/filevault/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolverHonorsMode(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "mallory"}).SignedString([]byte("not-the-secret-not-the-secret-xx"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	req.Header.Set("Authorization", "Bearer "+forged)

	id, err := identityResolver(config.AuthConfig{Mode: config.AuthModeUnverified}).Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "mallory", id.Subject)

	_, err = identityResolver(config.AuthConfig{Mode: config.AuthModeHMAC, JWTSecret: secret}).Resolve(req)
	assert.Error(t, err)

	upstream := req.WithContext(auth.WithUpstreamSubject(req.Context(), "user-a"))
	id, err = identityResolver(config.AuthConfig{Mode: config.AuthModeHMAC, JWTSecret: secret}).Resolve(upstream)
	require.NoError(t, err)
	assert.Equal(t, "user-a", id.Subject)
}
