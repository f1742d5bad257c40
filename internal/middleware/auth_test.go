package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/repository/memory"
	"github.com/medik/hospital-api/internal/service/auth"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter(t *testing.T, gateRoles ...model.Role) (*gin.Engine, *memory.UserRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserRepository()
	authSvc := auth.NewService(users, auth.Config{Secret: testSecret})
	m := NewAuthMiddleware(authSvc)

	r := gin.New()
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	group := r.Group("/protected", m.Authenticate())
	if len(gateRoles) > 0 {
		group.Use(m.RequireRoles(gateRoles...))
	}
	group.GET("", func(c *gin.Context) {
		actor := ActorFromContext(c)
		require.NotNil(t, actor)
		c.JSON(http.StatusOK, gin.H{"email": actor.Email})
	})

	return r, users
}

func addUser(users *memory.UserRepository, roles ...model.Role) *model.User {
	u := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "user@example.com",
		Roles: roles,
	}
	users.Add(u)
	return u
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r, _ := newAuthRouter(t)
	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	r, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateBadSignature(t *testing.T) {
	r, users := newAuthRouter(t)
	u := addUser(users, model.RolePatient)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{UserID: u.ID.String()})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	w := get(r, signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateValidToken(t *testing.T) {
	r, users := newAuthRouter(t)
	u := addUser(users, model.RolePatient)

	w := get(r, signToken(t, u.ID))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@example.com")
}

func TestRequireRolesRedirectsHome(t *testing.T) {
	r, users := newAuthRouter(t, model.RoleDoctor)
	u := addUser(users, model.RolePatient)

	w := get(r, signToken(t, u.ID))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRequireRolesAdmitsAnyMatch(t *testing.T) {
	r, users := newAuthRouter(t, model.RoleDoctor, model.RoleStaff)
	u := addUser(users, model.RoleStaff)

	w := get(r, signToken(t, u.ID))
	assert.Equal(t, http.StatusOK, w.Code)
}
