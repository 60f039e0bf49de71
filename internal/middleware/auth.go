package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hospital-appointment-server/internal/config"
	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/services"
	"hospital-appointment-server/internal/utils"
)

// AuthMiddleware creates a middleware for JWT authentication. The resolved
// identity (id + role) is stored once in the context and passed explicitly
// into every service call as the acting identity.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		c.Set("actor", services.Actor{UserID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			utils.InternalServerError(c, "Acting identity not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		for _, role := range allowedRoles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// GetActor returns the acting identity resolved by AuthMiddleware.
func GetActor(c *gin.Context) (services.Actor, bool) {
	value, exists := c.Get("actor")
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := value.(services.Actor)
	return actor, ok
}
