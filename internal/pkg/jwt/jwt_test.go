//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "unit-secret", Issuer: "idp", Duration: time.Hour}
}

func TestService_RoundTrip(t *testing.T) {
	svc := jwt.NewService(testConfig())
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, identity.RoleProvider)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, identity.Actor{ID: userID, Role: identity.RoleProvider}, actor)
}

func TestService_ValidateToken_Rejects(t *testing.T) {
	cfg := testConfig()
	userID := uuid.New()

	sign := func(t *testing.T, method gojwt.SigningMethod, key any, claims gojwt.Claims) string {
		t.Helper()
		s, err := gojwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() jwt.Claims {
		return jwt.Claims{
			UserID: userID,
			Role:   "consumer",
			RegisteredClaims: gojwt.RegisteredClaims{
				Issuer:    cfg.Issuer,
				ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				c := valid()
				c.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(-time.Hour))
				return sign(t, gojwt.SigningMethodHS256, []byte(cfg.Secret), c)
			},
			wantErr: jwt.ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, gojwt.SigningMethodHS256, []byte("other"), valid())
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name: "other HMAC size",
			token: func(t *testing.T) string {
				return sign(t, gojwt.SigningMethodHS512, []byte(cfg.Secret), valid())
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name: "foreign issuer",
			token: func(t *testing.T) string {
				c := valid()
				c.Issuer = "elsewhere"
				return sign(t, gojwt.SigningMethodHS256, []byte(cfg.Secret), c)
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				c := valid()
				c.ExpiresAt = nil
				return sign(t, gojwt.SigningMethodHS256, []byte(cfg.Secret), c)
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name: "no user id",
			token: func(t *testing.T) string {
				c := valid()
				c.UserID = uuid.Nil
				return sign(t, gojwt.SigningMethodHS256, []byte(cfg.Secret), c)
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "garbage",
			token:   func(*testing.T) string { return "not.a.token" },
			wantErr: jwt.ErrInvalidToken,
		},
	}

	svc := jwt.NewService(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClaims_Actor_UnknownRole(t *testing.T) {
	c := jwt.Claims{UserID: uuid.New(), Role: "superuser"}

	_, err := c.Actor()

	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
