package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"evcharge/internal/service"
)

// stubValidator implements TokenValidator.
type stubValidator struct {
	claims *service.Claims
	err    error
}

func (s *stubValidator) ValidateToken(token string) (*service.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func claimsEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("claims missing from context in protected handler")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": claims.UserID})
	})
}

func TestAuthHeaderShapes(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		validator   *stubValidator
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "missing header",
			header:      "",
			validator:   &stubValidator{},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "not bearer",
			header:      "Basic dXNlcjpwdw==",
			validator:   &stubValidator{},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "bearer with empty token",
			header:      "Bearer ",
			validator:   &stubValidator{},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "token only",
			header:      "sometoken",
			validator:   &stubValidator{},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "invalid token",
			header:      "Bearer garbage",
			validator:   &stubValidator{err: service.ErrInvalidToken},
			wantStatus:  http.StatusForbidden,
			wantMessage: "Invalid token",
		},
		{
			name:       "valid token",
			header:     "Bearer good",
			validator:  &stubValidator{claims: &service.Claims{UserID: "user-1", Role: "admin"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "case-insensitive bearer",
			header:     "bearer good",
			validator:  &stubValidator{claims: &service.Claims{UserID: "user-1", Role: "admin"}},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(tt.validator, zap.NewNop())(claimsEcho(t))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantMessage != "" {
				var body map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("invalid JSON body: %v", err)
				}
				if body["error"] != tt.wantMessage {
					t.Errorf("error = %q, want %q", body["error"], tt.wantMessage)
				}
			}
		})
	}
}

func TestAuthShortCircuitsBeforeHandler(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	handler := Auth(&stubValidator{err: errors.New("bad")}, zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if called {
		t.Error("protected handler ran despite rejected token")
	}
}

func TestClaimsFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ClaimsFromContext(req.Context()); ok {
		t.Error("ClaimsFromContext() reported claims on a bare context")
	}
}
