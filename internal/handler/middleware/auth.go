package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/handler/httperr"
	"courier-escrow/internal/pkg/errs"
	"courier-escrow/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const ctxActorKey = "actor"

var (
	errTokenRequired = errs.Unauthorized("access token required")
	errTokenInvalid  = errs.Unauthorized("invalid or expired token")
	errRoleDenied    = errs.Forbidden("insufficient permissions")
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithCode(c, http.StatusUnauthorized, errTokenRequired, "Unauthorized", "Access token required", nil)
			return
		}

		actor, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithCode(c, http.StatusUnauthorized, errs.WithCause(errTokenInvalid, err), "Unauthorized", "Invalid or expired token", nil)
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// RequireRole admits only the listed roles. Use after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			httperr.AbortWithCode(c, http.StatusUnauthorized, errTokenRequired, "Unauthorized", "Access token required", nil)
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				return
			}
		}
		httperr.AbortWithCode(c, http.StatusForbidden, errRoleDenied, "Forbidden", "Insufficient permissions", nil)
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

// SetActor stores the authenticated caller on the request context.
func SetActor(c *gin.Context, actor identity.Actor) {
	c.Set(ctxActorKey, actor)
	c.Set("jwt_claims", map[string]any{
		"user_id": actor.ID.String(),
		"role":    actor.Role.String(),
	})
}

func GetActor(c *gin.Context) (identity.Actor, bool) {
	v, exists := c.Get(ctxActorKey)
	if !exists {
		return identity.Actor{}, false
	}
	actor, ok := v.(identity.Actor)
	return actor, ok
}
