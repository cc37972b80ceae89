package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"evcharge/internal/models"
	"evcharge/internal/password"
	"evcharge/internal/repository"
	"evcharge/internal/service"
)

// fakeUserRepo implements service.UserRepository and service.UserStore in
// memory.
type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func newTestAuthHandlers(repo *fakeUserRepo) *AuthHandlers {
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	tokens := service.NewTokenService("test-secret", time.Hour)
	return NewAuthHandlers(service.NewAuthService(repo, hasher, tokens, zap.NewNop()))
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRegisterHandler(t *testing.T) {
	handlers := newTestAuthHandlers(newFakeUserRepo())

	rec := postJSON(t, handlers.Register, "/auth/register", `{"email":"a@x.com","password":"pw1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	body := decodeBody(t, rec)
	if body["email"] != "a@x.com" || body["role"] != models.RoleStationManager || body["id"] == "" {
		t.Errorf("body = %v, want created user summary", body)
	}
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	handlers := newTestAuthHandlers(newFakeUserRepo())

	if rec := postJSON(t, handlers.Register, "/auth/register", `{"email":"a@x.com","password":"pw1"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	rec := postJSON(t, handlers.Register, "/auth/register", `{"email":"a@x.com","password":"pw2"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if body := decodeBody(t, rec); body["error"] != "User already exists" {
		t.Errorf("error = %q, want %q", body["error"], "User already exists")
	}
}

func TestRegisterHandlerBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing password", body: `{"email":"a@x.com"}`},
		{name: "missing email", body: `{"password":"pw"}`},
		{name: "empty body", body: `{}`},
		{name: "invalid json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := newTestAuthHandlers(newFakeUserRepo())
			rec := postJSON(t, handlers.Register, "/auth/register", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	repo := newFakeUserRepo()
	handlers := newTestAuthHandlers(repo)

	if rec := postJSON(t, handlers.Register, "/auth/register", `{"email":"a@x.com","password":"correct-pw"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	rec := postJSON(t, handlers.Login, "/auth/login", `{"email":"a@x.com","password":"correct-pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := decodeBody(t, rec); body["token"] == "" {
		t.Error("token missing from login response")
	}
}

func TestLoginHandlerFailures(t *testing.T) {
	repo := newFakeUserRepo()
	handlers := newTestAuthHandlers(repo)

	if rec := postJSON(t, handlers.Register, "/auth/register", `{"email":"a@x.com","password":"correct-pw"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{name: "unknown email", body: `{"email":"nobody@x.com","password":"correct-pw"}`, wantStatus: http.StatusNotFound, wantMessage: "User not found"},
		{name: "wrong password", body: `{"email":"a@x.com","password":"wrong"}`, wantStatus: http.StatusUnauthorized, wantMessage: "Invalid credentials"},
		{name: "missing fields", body: `{"email":"a@x.com"}`, wantStatus: http.StatusBadRequest, wantMessage: "Email and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handlers.Login, "/auth/login", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if body := decodeBody(t, rec); body["error"] != tt.wantMessage {
				t.Errorf("error = %q, want %q", body["error"], tt.wantMessage)
			}
		})
	}
}
