package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quality-scanner/internal/pkg/config"
	pkgErrors "quality-scanner/pkg/errors"
)

func TestGenerateAndValidate(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret", AccessTokenExpire: 60}

	token, err := GenerateAccessToken(cfg, "ci-runner", "scanner")
	require.NoError(t, err)

	claims, err := ValidateToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "ci-runner", claims.Client)
	assert.Equal(t, "scanner", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
}

func TestNoExpiry(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret"}

	token, err := GenerateAccessToken(cfg, "dashboard", "viewer")
	require.NoError(t, err)

	claims, err := ValidateToken(cfg, token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(config.JWTConfig{Secret: "a"}, "x", "viewer")
	require.NoError(t, err)

	_, err = ValidateToken(config.JWTConfig{Secret: "b"}, token)
	require.Error(t, err)
	assert.Equal(t, pkgErrors.CodeUnauthorized, pkgErrors.CodeOf(err))
}

func TestExpiredToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret"}
	claims := ClientClaims{
		Client: "x",
		Type:   "access",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = ValidateToken(cfg, token)
	assert.Equal(t, pkgErrors.ErrTokenExpired, err)
}

func TestWrongTokenType(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret"}
	claims := ClientClaims{Client: "x", Type: "refresh"}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = ValidateToken(cfg, token)
	require.Error(t, err)
	assert.Equal(t, pkgErrors.CodeUnauthorized, pkgErrors.CodeOf(err))
}
