// Package api provides the HTTP server for Racha AI: group and member
// management, expense tracking and the balance, transfer and breakdown views.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Arthurk12/racha-ai/internal/auth"
	"github.com/Arthurk12/racha-ai/internal/middleware"
	"github.com/Arthurk12/racha-ai/internal/service"
)

// Server is the Racha AI HTTP API server.
type Server struct {
	groups         *service.GroupService
	expenses       *service.ExpenseService
	jwt            *auth.JWTManager
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(groups *service.GroupService, expenses *service.ExpenseService, jwt *auth.JWTManager) *Server {
	return &Server{groups: groups, expenses: expenses, jwt: jwt}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/groups", func(r chi.Router) {
		// Public: the group ID is the invite token, so creating, inspecting,
		// joining and logging in need no session yet.
		r.Post("/", s.handleCreateGroup)
		r.Get("/{groupID}", s.handleGetGroup)
		r.Post("/{groupID}/join", s.handleJoinGroup)
		r.Post("/{groupID}/login", s.handleLogin)

		// Everything else requires a session token scoped to the group.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwt, unauthorized))
			r.Use(requireGroupMatch)

			r.Delete("/{groupID}", s.handleDeleteGroup)

			r.Delete("/{groupID}/users/{userID}", s.handleRemoveUser)
			r.Put("/{groupID}/users/{userID}/pin", s.handleUpdatePIN)
			r.Post("/{groupID}/users/{userID}/reset-pin", s.handleResetPIN)
			r.Post("/{groupID}/users/{userID}/toggle-finished", s.handleToggleFinished)

			r.Post("/{groupID}/expenses", s.handleAddExpense)
			r.Get("/{groupID}/expenses", s.handleListExpenses)
			r.Put("/{groupID}/expenses/{expenseID}", s.handleUpdateExpense)
			r.Delete("/{groupID}/expenses/{expenseID}", s.handleRemoveExpense)

			r.Get("/{groupID}/balances", s.handleBalances)
			r.Get("/{groupID}/breakdown", s.handleBreakdown)
			r.Post("/{groupID}/settle", s.handleSettle)
		})
	})

	return r
}

// requireGroupMatch rejects requests whose session token was issued for a
// different group than the one in the URL.
func requireGroupMatch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "groupID") != middleware.GetGroupID(r.Context()) {
			writeError(w, service.ErrPermissionDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, err error) {
	writeJSONError(w, http.StatusUnauthorized, err.Error())
}

// corsMiddleware adds CORS headers so browser frontends on other origins can
// call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
