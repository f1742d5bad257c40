package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medik/hospital-api/internal/handler"
	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/service/auth"
)

const ContextActor = "actor"

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and stores the actor in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		actor, err := m.authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextActor, actor)
		c.Next()
	}
}

// RequireRoles gates a view on role membership. A failed check is a
// navigation outcome, not an error: the client is sent back home.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor == nil || !actor.HasAnyRole(roles...) {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFromContext returns the authenticated actor, or nil.
func ActorFromContext(c *gin.Context) *model.User {
	v, exists := c.Get(ContextActor)
	if !exists {
		return nil
	}
	actor, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return actor
}
