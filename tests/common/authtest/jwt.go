//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/pkg/config"
	"courier-escrow/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// JWTHelper mints tokens the way the identity provider would.
type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, actor identity.Actor) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg).GenerateToken(actor.ID, actor.Role)
	require.NoError(t, err)
	return token
}

// NewActor returns a fresh caller with role and a token for it.
func (h *JWTHelper) NewActor(t *testing.T, role identity.Role) (identity.Actor, string) {
	t.Helper()
	actor := identity.Actor{ID: uuid.New(), Role: role}
	return actor, h.GenerateToken(t, actor)
}

// CreateExpiredToken returns a token that expired well outside the validation leeway.
func (h *JWTHelper) CreateExpiredToken(t *testing.T, actor identity.Actor) string {
	t.Helper()
	cfg := h.cfg
	cfg.Duration = -(time.Hour + cfg.Leeway)
	token, err := jwt.NewService(cfg).GenerateToken(actor.ID, actor.Role)
	require.NoError(t, err)
	return token
}
