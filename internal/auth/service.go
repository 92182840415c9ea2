// Package auth composes the credential, token, lockout, and reset services
// into the login, refresh, logout, and password-reset flows. It is the only
// package with cross-cutting auth policy; everything below it is mechanism.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"campus-control-plane/backend/internal/audit"
	"campus-control-plane/backend/internal/loginattempt"
	"campus-control-plane/backend/internal/passwordreset"
	"campus-control-plane/backend/internal/refreshtoken"
	"campus-control-plane/backend/internal/security"
	userdomain "campus-control-plane/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the boundary maps them to failure
// codes. ErrInvalidCredentials deliberately covers both unknown-user and
// wrong-password so responses cannot be used to enumerate usernames.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrEntityNotFound     = errors.New("entity not found")
)

// TokenPair holds the outcome of Login or Refresh. RefreshToken is empty on
// Refresh unless rotation is enabled.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

// Service implements login, refresh, logout, and the password-reset cycle.
type Service struct {
	users         UserRepo
	hasher        *security.Hasher
	tokens        *security.TokenProvider
	refreshTokens *refreshtoken.Service
	resets        *passwordreset.Service
	guard         loginattempt.Guard
	audit         audit.Logger
	rotateRefresh bool
}

// NewService returns an auth service with the given dependencies. When
// rotateRefresh is true, Refresh supersedes the presented refresh token with
// a new one; otherwise the presented token stays valid until its own expiry.
func NewService(
	users UserRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	refreshTokens *refreshtoken.Service,
	resets *passwordreset.Service,
	guard loginattempt.Guard,
	auditLog audit.Logger,
	rotateRefresh bool,
) *Service {
	if auditLog == nil {
		auditLog = audit.Nop{}
	}
	return &Service{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		refreshTokens: refreshTokens,
		resets:        resets,
		guard:         guard,
		audit:         auditLog,
		rotateRefresh: rotateRefresh,
	}
}

// Login authenticates username/password and returns a fresh access token plus
// a fresh refresh token, superseding any prior refresh token for the user.
// The lockout check runs before any credential work; a locked account fails
// with ErrAccountLocked without touching the stored hash.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	blocked, err := s.guard.IsBlocked(ctx, username)
	if err != nil {
		return nil, err
	}
	if blocked {
		s.audit.LogEvent(ctx, username, "login_locked", "session", "")
		return nil, ErrAccountLocked
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return nil, s.loginFailed(ctx, username)
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, s.loginFailed(ctx, username)
	}

	if err := s.guard.LoginSucceeded(ctx, username); err != nil {
		return nil, err
	}

	access, expiresAt, err := s.tokens.Generate(user.Username, user.ID)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.refreshTokens.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, username, "login", "session", "")
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

func (s *Service) loginFailed(ctx context.Context, username string) error {
	if err := s.guard.LoginFailed(ctx, username); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, username, "login_failure", "session", "")
	return ErrInvalidCredentials
}

// Refresh validates the presented refresh token and issues a new access token
// for its owner. Propagates refreshtoken.ErrTokenNotFound and ErrTokenExpired
// unchanged. With rotation enabled the presented token is superseded and the
// replacement returned; otherwise RefreshToken is left empty and the presented
// token stays live.
func (s *Service) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	if token == "" {
		return nil, refreshtoken.ErrTokenNotFound
	}
	user, _, err := s.refreshTokens.ValidateAndGetUser(ctx, token)
	if err != nil {
		return nil, err
	}

	access, expiresAt, err := s.tokens.Generate(user.Username, user.ID)
	if err != nil {
		return nil, err
	}
	pair := &TokenPair{AccessToken: access, ExpiresAt: expiresAt}
	if s.rotateRefresh {
		rotated, _, err := s.refreshTokens.Create(ctx, user)
		if err != nil {
			return nil, err
		}
		pair.RefreshToken = rotated
	}

	s.audit.LogEvent(ctx, user.Username, "refresh", "session", "")
	return pair, nil
}

// Logout deletes the presented refresh token unconditionally. Unknown tokens
// are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.refreshTokens.DeleteByToken(ctx, token); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, "", "logout", "session", "")
	return nil
}

// RequestPasswordReset creates a one-time reset code for the user identified
// by email and dispatches it. Fails with ErrEntityNotFound for an unknown
// email. Dispatch failure does not fail the request; it is surfaced on the
// returned outcome.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*passwordreset.CreateOutcome, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	outcome, err := s.resets.CreateAndSend(ctx, user)
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, user.Username, "password_reset_request", "credential", "")
	return outcome, nil
}

// ConfirmPasswordReset validates the one-time code for the user identified by
// email and, on success, replaces the stored credential hash and consumes the
// code. Propagates passwordreset.ErrOTPNotFound, ErrOTPExpired, and
// ErrOTPMismatch unchanged; a mismatch leaves the code live for retry.
func (s *Service) ConfirmPasswordReset(ctx context.Context, email, otp, newPassword string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	rec, err := s.resets.ValidateOTP(ctx, user, otp)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.resets.Consume(ctx, rec); err != nil {
		return err
	}
	if err := s.refreshTokens.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}

	s.audit.LogEvent(ctx, user.Username, "password_reset_confirm", "credential", "")
	return nil
}

// ChangePassword replaces the credential hash for an authenticated user after
// re-verifying the current password. The user's refresh token is revoked so
// old sessions must log in again.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrEntityNotFound
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.refreshTokens.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}

	s.audit.LogEvent(ctx, user.Username, "password_change", "credential", "")
	return nil
}

func (s *Service) userByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrEntityNotFound
	}
	return user, nil
}
