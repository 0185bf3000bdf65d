package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
)

func (s *Server) handleValidateUsername(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	err := s.accounts.CheckUsername(r.Context(), p.Get("username"))
	switch {
	case errors.Is(err, core.ErrUsernameInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"username_error": "username should only contain alphanumeric characters",
		})
	case errors.Is(err, core.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, map[string]string{
			"username_error": "Sorry this username is already taken, please choose another.",
		})
	case err != nil:
		s.accountError(w, r, err, "validate-username")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"username_valid": true})
	}
}

func (s *Server) handleValidateEmail(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	err := s.accounts.CheckEmail(r.Context(), p.Get("email"))
	switch {
	case errors.Is(err, core.ErrEmailInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"email_error": "Email is invalid"})
	case errors.Is(err, core.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"email_error": "Email already registered."})
	case err != nil:
		s.accountError(w, r, err, "validate-email")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"email_valid": true})
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	user, err := s.accounts.Register(r.Context(), services.RegisterInput{
		Username: p.Get("username"),
		Email:    p.Get("email"),
		Password: p.Get("password"),
	})
	if err != nil {
		s.accountError(w, r, err, "register")
		return
	}

	CreatedResponse("Account created successfully", map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}).Write(w)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	result, err := s.accounts.Activate(r.Context(), r.PathValue("uid"), r.PathValue("token"))
	if err != nil {
		s.accountError(w, r, err, "activate")
		return
	}

	if result == services.AlreadyActive {
		SuccessResponse("User already activated.").Write(w)
		return
	}
	SuccessResponse("Account activated successfully").Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	user, token, err := s.accounts.Login(r.Context(), p.Get("username"), p.Get("password"))
	if err != nil {
		s.accountError(w, r, err, "login")
		return
	}

	s.setSessionCookie(w, token)
	SuccessResponse("Welcome "+user.Username+", You are now logged in.").
		Data(map[string]any{"token": token, "user_id": user.ID}).
		Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	SuccessResponse("You have been logged out.").Write(w)
}

func (s *Server) handleRequestResetLink(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	if err := s.accounts.RequestPasswordReset(r.Context(), p.Get("email")); err != nil {
		s.accountError(w, r, err, "request-reset-link")
		return
	}
	SuccessResponse("We have sent you an email to reset your password.").Write(w)
}

func (s *Server) handleCheckResetLink(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.CheckResetLink(r.Context(), r.PathValue("uid"), r.PathValue("token")); err != nil {
		s.accountError(w, r, err, "check-reset-link")
		return
	}
	SuccessResponse("Reset link is valid.").Write(w)
}

func (s *Server) handleSetNewPassword(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	err := s.accounts.ResetPassword(r.Context(),
		r.PathValue("uid"), r.PathValue("token"),
		p.Get("password1"), p.Get("password2"))
	if err != nil {
		s.accountError(w, r, err, "set-new-password")
		return
	}
	SuccessResponse("Password changed succesfully, you can login with your new password now.").Write(w)
}

// accountError maps account failures onto the messages shown by the forms.
func (s *Server) accountError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, core.ErrUsernameInvalid):
		BadRequestError("username should only contain alphanumeric characters").Write(w)
	case errors.Is(err, core.ErrUsernameTaken):
		ConflictError("Sorry this username is already taken, please choose another.").Write(w)
	case errors.Is(err, core.ErrEmailInvalid):
		if op == "request-reset-link" {
			BadRequestError("Please enter a valid Email.").Write(w)
			return
		}
		BadRequestError("Email is invalid").Write(w)
	case errors.Is(err, core.ErrEmailTaken):
		ConflictError("Email already registered.").Write(w)
	case errors.Is(err, core.ErrEmailNotRegistered):
		NotFoundError("Email provided is not registered in our database.").Write(w)
	case errors.Is(err, core.ErrPasswordTooShort):
		if op == "register" {
			BadRequestError("Password too short").Write(w)
			return
		}
		BadRequestError("Password is too short.").Write(w)
	case errors.Is(err, core.ErrPasswordMismatch):
		BadRequestError("Password does not match.").Write(w)
	case errors.Is(err, core.ErrMissingCredentials):
		BadRequestError("Please fill all fields.").Write(w)
	case errors.Is(err, core.ErrInvalidCredentials):
		UnauthorizedError("Invalid Credentials, try again.").Write(w)
	case errors.Is(err, core.ErrAccountInactive):
		UnauthorizedError("Account is not active, please check your email.").Write(w)
	case errors.Is(err, core.ErrInvalidToken):
		if op == "activate" {
			BadRequestError("Activation link is invalid.").Write(w)
			return
		}
		BadRequestError("Reset link has expired, please request another link.").Write(w)
	default:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Account operation failed", err, applog.ComponentAccounts, op, applog.NewFields())
		InternalServerError("Something went wrong, please try again.").Write(w)
	}
}
