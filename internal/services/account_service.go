package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/mail"
	"expensetracker/internal/storage"
)

// EmailQueue accepts fire-and-forget deliveries.
type EmailQueue interface {
	Enqueue(ctx context.Context, to, subject, body string)
}

// AccountServiceConfig holds configuration for the account service
type AccountServiceConfig struct {
	// BaseURL prefixes the links sent by email.
	BaseURL string

	// DefaultCurrency is stored as the preference of every new user.
	DefaultCurrency string

	Now func() time.Time
}

// AccountService handles registration, activation, login and password reset.
type AccountService struct {
	storage  *storage.SQLiteRepository
	sessions *auth.JWTManager
	tokens   *auth.ActionTokens
	emails   EmailQueue
	config   AccountServiceConfig
}

func NewAccountService(storage *storage.SQLiteRepository, sessions *auth.JWTManager, tokens *auth.ActionTokens, emails EmailQueue, config AccountServiceConfig) *AccountService {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = core.DefaultCurrency
	}
	return &AccountService{
		storage:  storage,
		sessions: sessions,
		tokens:   tokens,
		emails:   emails,
		config:   config,
	}
}

// ActivationResult tells a fresh activation from a replayed link.
type ActivationResult int

const (
	Activated ActivationResult = iota + 1
	AlreadyActive
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// CheckUsername reports core.ErrUsernameInvalid or core.ErrUsernameTaken.
func (s *AccountService) CheckUsername(ctx context.Context, username string) error {
	if err := core.ValidateUsername(username); err != nil {
		return err
	}
	taken, err := s.storage.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return core.ErrUsernameTaken
	}
	return nil
}

// CheckEmail reports core.ErrEmailInvalid or core.ErrEmailTaken.
func (s *AccountService) CheckEmail(ctx context.Context, email string) error {
	if err := core.ValidateEmail(email); err != nil {
		return err
	}
	taken, err := s.storage.EmailExists(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if taken {
		return core.ErrEmailTaken
	}
	return nil
}

// Register creates an inactive user together with its default preference and
// queues the activation email.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.CheckUsername(ctx, in.Username); err != nil {
		return core.User{}, err
	}
	if err := s.CheckEmail(ctx, in.Email); err != nil {
		return core.User{}, err
	}
	if err := core.ValidatePassword(in.Password); err != nil {
		return core.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, err
	}

	var user core.User
	err = s.storage.InTx(ctx, func(tx *storage.Tx) error {
		var err error
		user, err = tx.CreateUser(ctx, in.Username, in.Email, hash, s.config.Now())
		if err != nil {
			return err
		}
		return tx.CreatePreference(ctx, user.ID, s.config.DefaultCurrency)
	})
	if errors.Is(err, storage.ErrUniqueViolation) {
		// Lost a race with a concurrent registration.
		if taken, _ := s.storage.UsernameExists(ctx, in.Username); taken {
			return core.User{}, core.ErrUsernameTaken
		}
		return core.User{}, core.ErrEmailTaken
	}
	if err != nil {
		return core.User{}, fmt.Errorf("register %s: %w", in.Username, err)
	}

	token, err := s.tokens.Issue(auth.PurposeActivate, user.ID, "")
	if err != nil {
		return core.User{}, err
	}
	link := mail.Link(s.config.BaseURL, "authentication", "activate", auth.EncodeUID(user.ID), token)
	s.emails.Enqueue(ctx, user.Email, mail.ActivationSubject, mail.ActivationBody(user.Username, link))

	slog.InfoContext(ctx, "User registered", applog.FieldUserID, user.ID, "username", user.Username)
	return user, nil
}

// Activate consumes an activation link. Replaying a valid link for an active
// account yields AlreadyActive without error.
func (s *AccountService) Activate(ctx context.Context, uid, token string) (ActivationResult, error) {
	user, err := s.userFromUID(ctx, uid)
	if err != nil {
		return 0, err
	}
	if err := s.tokens.Verify(auth.PurposeActivate, user.ID, "", token); err != nil {
		return 0, core.ErrInvalidToken
	}
	if user.Active {
		return AlreadyActive, nil
	}

	activated, err := s.storage.ActivateUser(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	if !activated {
		return AlreadyActive, nil
	}
	slog.InfoContext(ctx, "User activated", applog.FieldUserID, user.ID)
	return Activated, nil
}

// Login checks credentials and returns a signed session token.
func (s *AccountService) Login(ctx context.Context, username, password string) (core.User, string, error) {
	if username == "" || password == "" {
		return core.User{}, "", core.ErrMissingCredentials
	}

	user, err := s.storage.GetUserByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, "", core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, "", err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return core.User{}, "", core.ErrInvalidCredentials
	}
	if !user.Active {
		return core.User{}, "", core.ErrAccountInactive
	}

	token, err := s.sessions.Generate(user.ID, user.Username)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}

// Authenticate resolves a session token to an active user. Tokens of users
// that were removed or deactivated since login fail with auth.ErrInvalidToken.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.sessions.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.storage.GetUser(ctx, claims.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

// SessionTTL is the lifetime of tokens returned by Login.
func (s *AccountService) SessionTTL() time.Duration {
	return s.sessions.TTL()
}

// RequestPasswordReset queues a reset link for a registered email.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := core.ValidateEmail(email); err != nil {
		return err
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrEmailNotRegistered
	}
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(auth.PurposeReset, user.ID, user.PasswordHash)
	if err != nil {
		return err
	}
	link := mail.Link(s.config.BaseURL, "authentication", "set-new-password", auth.EncodeUID(user.ID), token)
	s.emails.Enqueue(ctx, user.Email, mail.ResetSubject, mail.ResetBody(link))

	slog.InfoContext(ctx, "Password reset requested", applog.FieldUserID, user.ID)
	return nil
}

// CheckResetLink reports core.ErrInvalidToken for an expired or used link.
func (s *AccountService) CheckResetLink(ctx context.Context, uid, token string) error {
	user, err := s.userFromUID(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.tokens.Verify(auth.PurposeReset, user.ID, user.PasswordHash, token); err != nil {
		return core.ErrInvalidToken
	}
	return nil
}

// ResetPassword sets a new password through a reset link. The link stops
// working once the password changed.
func (s *AccountService) ResetPassword(ctx context.Context, uid, token, password, confirm string) error {
	if password != confirm {
		return core.ErrPasswordMismatch
	}
	if err := core.ValidatePassword(password); err != nil {
		return err
	}

	user, err := s.userFromUID(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.tokens.Verify(auth.PurposeReset, user.ID, user.PasswordHash, token); err != nil {
		return core.ErrInvalidToken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.storage.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Password reset", applog.FieldUserID, user.ID)
	return nil
}

func (s *AccountService) userFromUID(ctx context.Context, uid string) (core.User, error) {
	id, err := auth.DecodeUID(uid)
	if err != nil {
		return core.User{}, core.ErrInvalidToken
	}
	user, err := s.storage.GetUser(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.ErrInvalidToken
	}
	return user, err
}
