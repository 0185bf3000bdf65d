package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	currency, err := s.preferences.Currency(r.Context(), user.UserID)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load preferences", "error", err, "user_id", user.UserID)
		InternalServerError("Something went wrong, please try again.").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"currency": currency})
}

func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	currency, err := s.preferences.SetCurrency(r.Context(), user.UserID, p.Get("currency"))
	if errors.Is(err, core.ErrInvalidCurrency) {
		UnprocessableEntityError("Currency must be a three-letter code").Write(w)
		return
	}
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to save preferences", "error", err, "user_id", user.UserID)
		InternalServerError("Something went wrong, please try again.").Write(w)
		return
	}

	SuccessResponse("Changes saved successfully.").
		Data(map[string]string{"currency": currency}).
		Write(w)
}
