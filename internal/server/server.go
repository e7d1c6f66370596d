// Package server exposes the JSON HTTP API.
package server

import (
	"net/http"

	"github.com/expenso-app/expenso-backend/internal/service"
)

// Server wires the finance, advisory, and notification services to HTTP
// routes. All routes under /v1 require an authenticated user in the
// request context.
type Server struct {
	finance       *service.FinanceService
	advisory      *service.AdvisoryService
	notifications *service.NotificationService
	trigger       *service.NotificationTrigger

	// defaultWeeklyBudget applies when a request omits the budget.
	defaultWeeklyBudget float64
}

func New(finance *service.FinanceService, advisory *service.AdvisoryService, notifications *service.NotificationService, trigger *service.NotificationTrigger, defaultWeeklyBudget float64) *Server {
	return &Server{
		finance:             finance,
		advisory:            advisory,
		notifications:       notifications,
		trigger:             trigger,
		defaultWeeklyBudget: defaultWeeklyBudget,
	}
}

// Routes registers all API endpoints on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/transactions", s.handleAddTransaction)
	mux.HandleFunc("GET /v1/transactions", s.handleListTransactions)
	mux.HandleFunc("DELETE /v1/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /v1/dashboard", s.handleDashboard)

	mux.HandleFunc("POST /v1/advice", s.handleAdvice)
	mux.HandleFunc("GET /v1/insight", s.handleInsight)
	mux.HandleFunc("GET /v1/forecast", s.handleForecast)

	mux.HandleFunc("GET /v1/notifications", s.handleListNotifications)
	mux.HandleFunc("POST /v1/notifications/read", s.handleMarkNotificationsRead)
	mux.HandleFunc("GET /v1/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /v1/preferences", s.handleUpdatePreferences)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
