package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"food-rescue-api/apperr"
	"food-rescue-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", AuthRequired(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "role": GetRole(c), "username": GetUsername(c)})
	})
	r.GET("/ngo", AuthRequired(testSecret), RoleRequired(models.RoleNGO, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 7, Username: "ngo", Role: models.RoleNGO}
	token, err := GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleNGO, claims.Role)

	_, err = ParseToken(token, []byte("other-secret"))
	assert.Error(t, err)

	expired, err := GenerateToken(user, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, testSecret)
	assert.Error(t, err)
}

func TestAuthRequired(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)

	token, err := GenerateToken(&models.User{ID: 3, Username: "vol", Role: models.RoleVolunteer}, testSecret, time.Hour)
	require.NoError(t, err)
	w := get(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3,"role":"VOLUNTEER","username":"vol"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRoleRequired(t *testing.T) {
	r := newRouter()

	vol, err := GenerateToken(&models.User{ID: 3, Role: models.RoleVolunteer}, testSecret, time.Hour)
	require.NoError(t, err)
	w := get(r, "/ngo", vol)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "NGO, ADMIN")

	admin, err := GenerateToken(&models.User{ID: 1, Role: models.RoleAdmin}, testSecret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, get(r, "/ngo", admin).Code)
}

func TestRequestIDEchoesClientID(t *testing.T) {
	r := newRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

type stubAccounts map[uint]*models.User

func (s stubAccounts) FindWithRole(_ context.Context, id uint, role models.Role) (*models.User, error) {
	if id == 99 {
		return nil, errors.New("connection refused")
	}
	u, ok := s[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if u.Role != role {
		return nil, apperr.ErrInvalidRole
	}
	return u, nil
}

func TestActiveAccount(t *testing.T) {
	accounts := stubAccounts{
		1: {ID: 1, Role: models.RoleNGO, Enabled: true},
		2: {ID: 2, Role: models.RoleNGO, Enabled: false},
		3: {ID: 3, Role: models.RoleDonor, Enabled: true},
	}
	r := gin.New()
	r.GET("/active", AuthRequired(testSecret), ActiveAccount(accounts), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	cases := []struct {
		name string
		user models.User
		want int
	}{
		{"enabled", models.User{ID: 1, Role: models.RoleNGO}, http.StatusNoContent},
		{"disabled", models.User{ID: 2, Role: models.RoleNGO}, http.StatusUnauthorized},
		{"role changed", models.User{ID: 3, Role: models.RoleNGO}, http.StatusUnauthorized},
		{"deleted", models.User{ID: 4, Role: models.RoleNGO}, http.StatusUnauthorized},
		{"lookup failure", models.User{ID: 99, Role: models.RoleNGO}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := GenerateToken(&tc.user, testSecret, time.Hour)
			require.NoError(t, err)
			assert.Equal(t, tc.want, get(r, "/active", token).Code)
		})
	}
}
