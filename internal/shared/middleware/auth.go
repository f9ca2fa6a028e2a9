package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/shared/policy"
	"library-backend/internal/shared/response"
	"library-backend/pkg/jwt"
)

const actorKey = "actor"

// Auth validates the Bearer token and stores the caller as a policy.Actor
// in the gin context. Handlers pass that actor explicitly into services.
func Auth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid user ID in token")
			c.Abort()
			return
		}

		role, ok := policy.ParseRole(claims.Role)
		if !ok {
			// Unknown role in a signed token: fail closed.
			response.Forbidden(c, "unknown role")
			c.Abort()
			return
		}

		c.Set(actorKey, policy.Actor{ID: userID, Role: role})
		c.Next()
	}
}

// ActorFrom returns the authenticated caller stored by Auth.
func ActorFrom(c *gin.Context) (policy.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	return actor, ok
}

// RequireStaff aborts unless the caller is a librarian or admin. Must run
// after Auth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || !policy.IsStaff(actor.Role) {
			response.Forbidden(c, "staff role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts unless the caller is an admin. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || actor.Role != policy.RoleAdmin {
			response.Forbidden(c, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}
