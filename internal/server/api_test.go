package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/scentswap/tradepost/internal/config"
	"github.com/scentswap/tradepost/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret-key-for-jwt-testing"

func testServer() *APIServer {
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:             testSecret,
			Issuer:             "tradepost",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	// No database pool: these tests exercise routing, auth gating and
	// parameter validation only
	return NewAPIServer(cfg, nil, nil)
}

func accessToken(userID uuid.UUID) string {
	now := time.Now()
	claims := &middleware.Claims{
		UserID:   userID.String(),
		Username: "rosewater",
		Email:    "rosewater@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "access",
			Issuer:    "tradepost",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(testSecret))
	return signed
}

func TestHealthCheck(t *testing.T) {
	srv := testServer()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %q", body["status"])
	}
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	srv := testServer()

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/trades"},
		{"GET", "/api/v1/trades/" + uuid.New().String()},
		{"POST", "/api/v1/trades/" + uuid.New().String() + "/offers"},
		{"POST", "/api/v1/offers/" + uuid.New().String() + "/accept"},
		{"DELETE", "/api/v1/offers/" + uuid.New().String()},
		{"POST", "/api/v1/trades/" + uuid.New().String() + "/evaluations"},
	}

	for _, r := range routes {
		req := httptest.NewRequest(r.method, r.path, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected status 401, got %d", r.method, r.path, w.Code)
		}
	}
}

func TestInvalidUUIDParam(t *testing.T) {
	srv := testServer()

	req := httptest.NewRequest("POST", "/api/v1/offers/not-a-uuid/accept", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(uuid.New()))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestErrorResponse_CarriesRequestID(t *testing.T) {
	srv := testServer()

	req := httptest.NewRequest("POST", "/api/v1/trades", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var body struct {
		RequestID string `json:"request_id"`
		Error     struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.RequestID != "abc-123" {
		t.Errorf("Expected request ID abc-123, got %q", body.RequestID)
	}
	if body.Error.Code == "" {
		t.Error("Expected an error code in the response")
	}
}

func TestRegister_InvalidPayload(t *testing.T) {
	srv := testServer()

	req := httptest.NewRequest("POST", "/api/v1/auth/register", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}
