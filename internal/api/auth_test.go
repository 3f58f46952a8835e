package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
)

var testAuth = config.AuthConfig{
	JWTSecret:      "0123456789abcdef0123456789abcdef",
	AdminUser:      "admin",
	AdminPassword:  "swordfish",
	AccessTokenTTL: 5,
}

func TestAuth_LoginAndProtectedRoute(t *testing.T) {
	srv := newTestServer(t, testAuth)
	router := srv.buildRouter()

	// Protected route without a token is rejected.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/notes", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /notes without token status = %d, want 401", rec.Code)
	}

	// Wrong credentials are rejected, whichever half is wrong.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		loginRequest{Username: "admin", Password: "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login with bad password status = %d, want 401", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		loginRequest{Username: "root", Password: "swordfish"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login with bad username status = %d, want 401", rec.Code)
	}

	// Login with correct credentials.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		loginRequest{Username: "admin", Password: "swordfish"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("login returned empty access token")
	}

	// Token unlocks the protected route.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/notes", nil, map[string]string{
		"Authorization": "Bearer " + resp.AccessToken,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("GET /notes with token status = %d, want 200", rec.Code)
	}

	// Garbage tokens are rejected.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/notes", nil, map[string]string{
		"Authorization": "Bearer not-a-jwt",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /notes with garbage token status = %d, want 401", rec.Code)
	}
}

func TestAuth_OpenModeWhenUnconfigured(t *testing.T) {
	srv := newTestServer(t, config.AuthConfig{})
	router := srv.buildRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/v1/notes", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /notes in open mode status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		loginRequest{Username: "admin", Password: "admin"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("login in open mode status = %d, want 404", rec.Code)
	}
}
