package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "middleware-secret"

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, id string) (bool, error) {
	return r[id], nil
}

func token(t *testing.T, role model.UserRole, key string) (string, *util.Claims) {
	t.Helper()
	u := &model.User{Email: "x@example.com", Role: role}
	u.ID = 5
	tok, err := util.GenerateJWT(u, key, time.Hour)
	require.NoError(t, err)
	claims, err := util.ParseJWT(tok, key)
	require.NoError(t, err)
	return tok, claims
}

type userTable map[uint]model.UserRole

func (u userTable) FindByID(_ context.Context, id uint) (*model.User, error) {
	role, ok := u[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	user := &model.User{Role: role}
	user.ID = id
	return user, nil
}

func router(revoked RevocationChecker) *gin.Engine {
	return routerWithUsers(revoked, nil)
}

func routerWithUsers(revoked RevocationChecker, users UserFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	api := r.Group("/api", AuthMiddleware(secret, revoked, users))
	api.GET("/teacher", RoleMiddleware(model.Teacher), func(c *gin.Context) {
		util.Success(c, util.GetPrincipal(c))
	})
	api.GET("/student", RoleMiddleware(model.Student), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoleGates(t *testing.T) {
	r := router(nil)
	teacher, _ := token(t, model.Teacher, secret)
	student, _ := token(t, model.Student, secret)
	admin, _ := token(t, model.Admin, secret)
	forged, _ := token(t, model.Admin, "another-secret")

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"no token", "/api/teacher", "", http.StatusUnauthorized},
		{"not bearer", "/api/teacher", "Basic abc", http.StatusUnauthorized},
		{"forged", "/api/teacher", "Bearer " + forged, http.StatusUnauthorized},
		{"teacher on teacher route", "/api/teacher", "Bearer " + teacher, http.StatusOK},
		{"student on teacher route", "/api/teacher", "Bearer " + student, http.StatusForbidden},
		{"teacher on student route", "/api/student", "Bearer " + teacher, http.StatusForbidden},
		{"admin passes every gate", "/api/student", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.path, tt.auth)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}

func TestRevokedToken(t *testing.T) {
	tok, claims := token(t, model.Teacher, secret)
	r := router(revokedSet{claims.ID: true})

	w := do(r, "/api/teacher", "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), util.ErrTokenRevoked.Error())
}

func TestTokenOfInactiveAccount(t *testing.T) {
	tok, _ := token(t, model.Teacher, secret)

	tests := []struct {
		name  string
		users userTable
		want  int
	}{
		{"live user", userTable{5: model.Teacher}, http.StatusOK},
		{"deleted user", userTable{}, http.StatusUnauthorized},
		{"role changed", userTable{5: model.Student}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(routerWithUsers(nil, tt.users), "/api/teacher", "Bearer "+tok)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), util.ErrAccountInactive.Error())
			}
		})
	}
}

func TestRequestIDIsKept(t *testing.T) {
	r := router(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/teacher", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
