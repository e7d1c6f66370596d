package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/expenso-app/expenso-backend/internal/auth"
	"github.com/expenso-app/expenso-backend/internal/model"
	"github.com/expenso-app/expenso-backend/internal/service"
	"github.com/expenso-app/expenso-backend/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidBudget), errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		log.Printf("[Server] internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
		return "", false
	}
	return claims.UID, true
}

// budgetParam reads weeklyBudget from the query, applying the server
// default when absent. A present-but-unparseable value is a caller error.
func (s *Server) budgetParam(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("weeklyBudget")
	if raw == "" {
		return s.defaultWeeklyBudget, nil
	}
	budget, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, service.ErrInvalidBudget
	}
	return budget, nil
}

func settingsFromQuery(r *http.Request) model.AdvisorSettings {
	settings := model.AdvisorSettings{
		Personality: model.Personality(r.URL.Query().Get("personality")),
		Currency:    model.Currency(r.URL.Query().Get("currency")),
	}
	if settings.Personality == "" {
		settings.Personality = model.PersonalityNeutral
	}
	if settings.Currency == "" {
		settings.Currency = model.CurrencyUSD
	}
	return settings
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var input model.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	txn, err := s.finance.AddTransaction(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	txns, err := s.finance.ListTransactions(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	if err := s.finance.DeleteTransaction(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	summary, err := s.finance.GetDashboard(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Evening reminder check rides on dashboard loads so no separate
	// scheduler is needed.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.trigger.DailyReminder(ctx, userID); err != nil {
			log.Printf("[Server] daily reminder trigger: %v", err)
		}
	}()

	writeJSON(w, http.StatusOK, summary)
}

type adviceRequest struct {
	Message      string  `json:"message"`
	WeeklyBudget float64 `json:"weeklyBudget"`
	Personality  string  `json:"personality"`
	Currency     string  `json:"currency"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req adviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}
	if req.WeeklyBudget == 0 {
		req.WeeklyBudget = s.defaultWeeklyBudget
	}
	settings := model.AdvisorSettings{
		Personality: model.Personality(req.Personality),
		Currency:    model.Currency(req.Currency),
	}
	if settings.Personality == "" {
		settings.Personality = model.PersonalityNeutral
	}
	if settings.Currency == "" {
		settings.Currency = model.CurrencyUSD
	}

	advice, err := s.advisory.GetAdvice(r.Context(), userID, req.Message, req.WeeklyBudget, settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	budget, err := s.budgetParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	insight, err := s.advisory.GetPacingInsight(r.Context(), userID, budget, settingsFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	if insight != "" {
		if err := s.trigger.PacingAlert(r.Context(), userID, insight); err != nil {
			log.Printf("[Server] pacing alert trigger: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"insight": insight})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	budget, err := s.budgetParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	currency := model.Currency(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = model.CurrencyUSD
	}

	forecast, err := s.advisory.GetForecast(r.Context(), userID, budget, currency)
	if err != nil {
		writeError(w, err)
		return
	}
	// A nil forecast is a valid "unavailable" answer, not an error.
	writeJSON(w, http.StatusOK, map[string]any{"forecast": forecast})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifs, err := s.notifications.List(r.Context(), userID, unreadOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifs})
}

type markReadRequest struct {
	ID string `json:"id"`
}

// handleMarkNotificationsRead marks one notification read when an id is
// given, otherwise all of them.
func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req markReadRequest
	if r.Body != nil {
		// An empty body means "mark all".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var err error
	if req.ID != "" {
		err = s.notifications.MarkRead(r.Context(), userID, req.ID)
	} else {
		err = s.notifications.MarkAllRead(r.Context(), userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	prefs, err := s.notifications.GetPreferences(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var prefs model.NotificationPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := s.notifications.UpdatePreferences(r.Context(), userID, &prefs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
