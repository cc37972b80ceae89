package httpserver

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

	"evcharge/internal/http/handlers"
	"evcharge/internal/http/middleware"
	"evcharge/internal/models"
	"evcharge/internal/password"
	"evcharge/internal/repository"
	"evcharge/internal/service"
)

// memStore backs every repository interface the router needs.
type memStore struct {
	users    map[string]*models.User
	stations map[string]*models.Station
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*models.User),
		stations: make(map[string]*models.Station),
	}
}

func (m *memStore) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrEmailExists
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	user.CreatedAt = time.Now().UTC()
	copied := *user
	m.users[user.Email] = &copied
	return nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range m.users {
		out = append(out, *user)
	}
	return out, nil
}

type memStationStore struct{ stations map[string]*models.Station }

func (m *memStationStore) Create(ctx context.Context, station *models.Station) error {
	if station.ID == "" {
		station.ID = "station-" + station.Name
	}
	copied := *station
	m.stations[station.ID] = &copied
	return nil
}

func (m *memStationStore) List(ctx context.Context) ([]models.Station, error) {
	var out []models.Station
	for _, st := range m.stations {
		out = append(out, *st)
	}
	return out, nil
}

func (m *memStationStore) UpdateStatus(ctx context.Context, id, status string) (*models.Station, error) {
	st, ok := m.stations[id]
	if !ok {
		return nil, repository.ErrStationNotFound
	}
	st.Status = status
	copied := *st
	return &copied, nil
}

func (m *memStationStore) Metrics(ctx context.Context, filter repository.MetricsFilter) (*models.Metrics, error) {
	return &models.Metrics{TotalStations: len(m.stations)}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *service.TokenService, *memStore) {
	t.Helper()

	logger := zap.NewNop()
	store := newMemStore()
	stationStore := &memStationStore{stations: store.stations}

	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	tokens := service.NewTokenService("router-test-secret", time.Hour)

	deps := RouterDeps{
		Auth:     handlers.NewAuthHandlers(service.NewAuthService(store, hasher, tokens, logger)),
		Users:    handlers.NewUserHandlers(service.NewUserService(store)),
		Stations: handlers.NewStationHandlers(service.NewStationService(stationStore, nil, logger)),
		Metrics:  handlers.NewMetricsHandler(service.NewMetricsService(stationStore, nil, logger)),
		Health:   handlers.NewHealthHandler(),
	}

	return NewRouter(deps, middleware.Auth(tokens, logger)), tokens, store
}

func bearerFor(t *testing.T, tokens *service.TokenService, id, email, role string) string {
	t.Helper()
	token, err := tokens.GenerateToken(id, email, role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return "Bearer " + token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users/profile"},
		{http.MethodGet, "/users"},
		{http.MethodGet, "/stations"},
		{http.MethodPost, "/stations"},
		{http.MethodPatch, "/stations/st-1/status"},
		{http.MethodGet, "/metrics"},
	}

	for _, tt := range paths {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d without Authorization header", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestProtectedRoutesRejectBadToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/stations", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d for invalid token", rec.Code, http.StatusForbidden)
	}
}

func TestUsersListRequiresAdmin(t *testing.T) {
	router, tokens, store := newTestRouter(t)
	store.users["a@x.com"] = &models.User{ID: "user-1", Email: "a@x.com", Role: models.RoleStationManager}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, "user-1", "a@x.com", models.RoleStationManager))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d for non-admin", rec.Code, http.StatusForbidden)
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, "user-2", "admin@x.com", models.RoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d for admin", rec.Code, http.StatusOK)
	}
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	router, _, _ := newTestRouter(t)

	register := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"a@x.com","password":"pw1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, register)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want %d", rec.Code, http.StatusCreated)
	}

	login := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"a@x.com","password":"pw1"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, login)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	token := body["token"]
	if token == "" {
		t.Fatal("login response carries no token")
	}

	profile := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	profile.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, profile)
	if rec.Code != http.StatusOK {
		t.Errorf("profile status = %d, want %d with issued token", rec.Code, http.StatusOK)
	}
}

func TestHealthIsPublic(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
