package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"expensetracker/internal/auth"
	applog "expensetracker/internal/log"
)

const sessionCookieName = "sessionid"

type contextKey int

const claimsKey contextKey = iota

// requireAuth resolves the session token from the cookie or an
// "Authorization: Bearer" header and rejects anonymous requests with 401.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			UnauthorizedError("Authentication required").Write(w)
			return
		}

		claims, err := s.accounts.Authenticate(r.Context(), token)
		if errors.Is(err, auth.ErrInvalidToken) {
			UnauthorizedError("Session expired, please log in again.").Write(w)
			return
		}
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Session lookup failed", "error", err)
			InternalServerError("Something went wrong, please try again.").Write(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

func sessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// currentUser returns the claims stored by requireAuth.
func currentUser(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.accounts.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
