package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"food-rescue-api/config"
	"food-rescue-api/handlers"
	"food-rescue-api/routes"
	"food-rescue-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var secret = []byte("test-secret")

type api struct {
	t      *testing.T
	router *gin.Engine
	svc    *services.Services
	sqlDB  *sql.DB
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB(config.Database{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "api.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	svc := services.New(db, services.WithHasher(services.BcryptHasher{Cost: bcrypt.MinCost}))
	h := handlers.New(svc, secret, time.Hour)
	return &api{t: t, router: routes.NewRouter(h, secret), svc: svc, sqlDB: sqlDB}
}

func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "image/png" {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

// signup registers through the API and returns the token and user id.
func (a *api) signup(username, role string) (string, uint) {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     username,
		"username": username,
		"email":    username + "@example.org",
		"password": "secret123",
		"role":     role,
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	user := body["user"].(map[string]any)
	return body["token"].(string), uint(user["id"].(float64))
}

func (a *api) admin() string {
	a.t.Helper()
	_, err := a.svc.Identity.Register(context.Background(), services.RegisterInput{
		Name:     "Root",
		Username: "root",
		Email:    "root@example.org",
		Password: "secret123",
		Role:     "ADMIN",
	}, services.SystemGrantor)
	require.NoError(a.t, err)
	code, body := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "root", "password": "secret123"})
	require.Equal(a.t, http.StatusOK, code)
	return body["token"].(string)
}

func (a *api) donate(token string) uint {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/donations", token, gin.H{
		"food_type":       "Rice",
		"quantity":        5,
		"unit":            "kg",
		"expiry_time":     "2099-01-01T10:00:00",
		"pickup_location": "Main St",
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	return uint(body["donation"].(map[string]any)["id"].(float64))
}

func TestRegisterAndLogin(t *testing.T) {
	a := newAPI(t)
	token, _ := a.signup("alice", "donor")

	code, body := a.do(http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "DONOR", body["user"].(map[string]any)["role"])

	code, _ = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret123"})
	assert.Equal(t, http.StatusOK, code)

	code, body = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password", body["error"])

	code, _ = a.do(http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLoginReportsStorageFailure(t *testing.T) {
	a := newAPI(t)
	a.signup("alice", "DONOR")
	require.NoError(t, a.sqlDB.Close())

	code, body := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret123"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["error"])

	code, _ = a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestDisabledAccountTokenRejected(t *testing.T) {
	a := newAPI(t)
	adminToken := a.admin()
	token, id := a.signup("vol", "VOLUNTEER")

	code, _ := a.do(http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, body := a.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/enabled", id), adminToken, gin.H{"enabled": false})
	require.Equal(t, http.StatusOK, code, body)

	code, body = a.do(http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Account disabled", body["error"])

	code, _ = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "vol", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterErrorMapping(t *testing.T) {
	a := newAPI(t)
	a.signup("alice", "DONOR")

	code, _ := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Alice", "username": "alice", "email": "other@example.org", "password": "secret123", "role": "DONOR",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Eve", "username": "eve", "email": "eve@example.org", "password": "secret123", "role": "ADMIN",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Bob", "username": "bob", "email": "bob@example.org", "password": "secret123", "role": "CHEF",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Carl", "username": "carl", "email": "carl@example.org", "password": strings.Repeat("x", 80), "role": "DONOR",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDonationFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	donorToken, donorID := a.signup("donor", "DONOR")
	ngoToken, ngoID := a.signup("ngo", "NGO")
	id := a.donate(donorToken)

	// donors cannot accept donations
	code, _ := a.do(http.MethodPut, fmt.Sprintf("/api/donations/%d/assign-ngo/%d", id, ngoID), donorToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := a.do(http.MethodPut, fmt.Sprintf("/api/donations/%d/assign-ngo/%d", id, ngoID), ngoToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "ACCEPTED", body["donation"].(map[string]any)["status"])

	code, _ = a.do(http.MethodPut, fmt.Sprintf("/api/donations/%d/pickup", id), ngoToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = a.do(http.MethodPut, fmt.Sprintf("/api/donations/%d/deliver", id), ngoToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "DELIVERED", body["donation"].(map[string]any)["status"])

	code, _ = a.do(http.MethodPut, fmt.Sprintf("/api/donations/%d/deliver", id), ngoToken, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = a.do(http.MethodGet, "/api/profile", donorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 30, body["user"].(map[string]any)["points"])

	code, body = a.do(http.MethodGet, fmt.Sprintf("/api/donations/%d/history", id), ngoToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 4, body["count"])

	code, body = a.do(http.MethodGet, fmt.Sprintf("/api/donations/donor/%d", donorID), ngoToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, _ = a.do(http.MethodGet, "/api/donations/999", ngoToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(http.MethodGet, "/api/donations/abc", ngoToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPlaceOrderAndQRCode(t *testing.T) {
	a := newAPI(t)
	donorToken, _ := a.signup("donor", "DONOR")
	ngoToken, _ := a.signup("ngo", "NGO")
	adminToken := a.admin()
	id := a.donate(donorToken)

	code, body := a.do(http.MethodPost, "/api/orders", ngoToken, gin.H{
		"items": []gin.H{
			{"donation_id": id, "requested_quantity": 2},
			{"donation_id": 999, "requested_quantity": 1},
		},
		"delivery_details": gin.H{
			"delivery_location": "Shelter 4",
			"delivery_date":     "2099-01-02",
			"delivery_time":     "10:30",
		},
	})
	require.Equal(t, http.StatusCreated, code, body)
	trackingID := body["order_id"].(string)
	assert.Regexp(t, `^ORD-\d+$`, trackingID)
	assert.EqualValues(t, 2, body["requested"])
	assert.Len(t, body["order"].(map[string]any)["items"], 1)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body["qr_code"].(string)), &payload))
	assert.Equal(t, trackingID, payload["orderId"])
	assert.EqualValues(t, 1, payload["items"])

	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+trackingID+"/qrcode", nil)
	req.Header.Set("Authorization", "Bearer "+ngoToken)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	// only admins confirm
	code, _ = a.do(http.MethodPut, "/api/orders/"+trackingID+"/status", ngoToken, gin.H{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.do(http.MethodPut, "/api/orders/"+trackingID+"/status", adminToken, gin.H{"status": "DELIVERED"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "PENDING", body["current_status"])

	code, body = a.do(http.MethodPut, "/api/orders/"+trackingID+"/status", adminToken, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "CONFIRMED", body["current_status"])

	code, _ = a.do(http.MethodGet, "/api/orders", ngoToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodGet, "/api/orders/ORD-0", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthAndStateMachine(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])

	code, body = a.do(http.MethodGet, "/api/state-machine", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "donation")
}
