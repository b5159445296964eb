package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnhub/internal/models"
	"learnhub/internal/service"
)

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("user id missing from context")
		}
		if userID != 7 {
			t.Errorf("user id = %d, want 7", userID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	token, err := tokens.GenerateToken(7, models.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	handler := Auth(tokens)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/checkout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthAcceptsQueryTokenFallback(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	token, err := tokens.GenerateToken(7, models.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	handler := Auth(tokens)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/ws/dashboard?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthRejects(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	handler := Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a valid token")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"malformed", "Token abc"},
		{"garbage", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/checkout", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)

	adminToken, _ := tokens.GenerateToken(1, models.RoleAdmin)
	studentToken, _ := tokens.GenerateToken(2, models.RoleStudent)

	var reached bool
	handler := Auth(tokens)(RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/transactions/export", nil)
	req.Header.Set("Authorization", "Bearer "+studentToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden || reached {
		t.Fatalf("student: status = %d, reached = %v, want 403 and unreached", rec.Code, reached)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/transactions/export", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !reached {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}
}
