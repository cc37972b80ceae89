package httpserver

import (
	"net/http"

	"evcharge/internal/http/handlers"
	"evcharge/internal/http/middleware"
	"evcharge/internal/models"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Auth     *handlers.AuthHandlers
	Users    *handlers.UserHandlers
	Stations *handlers.StationHandlers
	Metrics  http.HandlerFunc
	Health   http.HandlerFunc
	WS       http.HandlerFunc
}

// NewRouter wires HTTP routes with the auth pipeline. authMiddleware runs on
// every protected route; role checks compose on top of it so they can never
// execute against an unauthenticated request.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	authenticated := func(handler http.HandlerFunc, extra ...func(http.Handler) http.Handler) http.Handler {
		chain := append([]func(http.Handler) http.Handler{authMiddleware}, extra...)
		return middleware.Chain(handler, chain...)
	}

	mux.Handle("GET /health", deps.Health)

	mux.Handle("POST /auth/register", http.HandlerFunc(deps.Auth.Register))
	mux.Handle("POST /auth/login", http.HandlerFunc(deps.Auth.Login))

	mux.Handle("GET /users/profile", authenticated(deps.Users.Profile))
	mux.Handle("GET /users", authenticated(deps.Users.List, middleware.RequireRole(models.RoleAdmin)))

	mux.Handle("GET /stations", authenticated(deps.Stations.List))
	mux.Handle("POST /stations", authenticated(deps.Stations.Create))
	mux.Handle("PATCH /stations/{id}/status", authenticated(deps.Stations.UpdateStatus))

	mux.Handle("GET /metrics", authenticated(deps.Metrics))

	if deps.WS != nil {
		mux.Handle("GET /ws/stations", authenticated(deps.WS))
	}

	return mux
}
