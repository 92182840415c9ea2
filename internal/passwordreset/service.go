// Package passwordreset issues and validates the one-time numeric codes that
// authorize a password reset.
package passwordreset

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"campus-control-plane/backend/internal/devotp"
	"campus-control-plane/backend/internal/notify"
	"campus-control-plane/backend/internal/passwordreset/domain"
	"campus-control-plane/backend/internal/passwordreset/repository"
	userdomain "campus-control-plane/backend/internal/user/domain"
)

// Sentinel errors; callers map them to their boundary's failure codes.
var (
	ErrOTPNotFound = errors.New("reset code not found")
	ErrOTPExpired  = errors.New("reset code expired")
	ErrOTPMismatch = errors.New("reset code mismatch")
)

// CreateOutcome holds the created token and a non-fatal dispatch warning.
// DispatchErr set means the code was persisted but delivery failed; the
// caller decides how to surface that (warning log, retry hint) without
// failing the request.
type CreateOutcome struct {
	Token       *domain.ResetToken
	DispatchErr error
}

// Service manages the password-reset OTP lifecycle. Expired codes are
// garbage-collected lazily on lookup, not by a background sweep.
type Service struct {
	repo     repository.Repository
	sender   notify.Sender
	devStore devotp.Store // non-nil only in dev OTP mode
	ttl      time.Duration
	nowF     func() time.Time
}

// NewService returns a password-reset service with the given code TTL.
// devStore may be nil; when set, created codes are also kept in memory for
// dev retrieval instead of relying on the dispatch channel.
func NewService(repo repository.Repository, sender notify.Sender, devStore devotp.Store, ttl time.Duration) *Service {
	if sender == nil {
		sender = notify.Noop{}
	}
	return &Service{
		repo:     repo,
		sender:   sender,
		devStore: devStore,
		ttl:      ttl,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateAndSend supersedes any existing reset token for the user, persists a
// new 6-digit code (hashed), and dispatches the plain code to the user's
// email. Dispatch failure does not fail creation; it is returned on the
// outcome and logged.
func (s *Service) CreateAndSend(ctx context.Context, user *userdomain.User) (*CreateOutcome, error) {
	otp, err := GenerateOTP()
	if err != nil {
		return nil, err
	}
	now := s.nowF()
	rec := &domain.ResetToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		OTPHash:   HashOTP(otp),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Replace(ctx, rec); err != nil {
		return nil, err
	}

	if s.devStore != nil {
		s.devStore.Put(ctx, user.Username, otp, rec.ExpiresAt)
	}

	outcome := &CreateOutcome{Token: rec}
	if err := s.sender.SendOTP(user.Email, otp); err != nil {
		log.Printf("passwordreset: otp dispatch to user %d failed: %v", user.ID, err)
		outcome.DispatchErr = err
	}
	return outcome, nil
}

// ValidateOTP fetches the live token for the user and checks the supplied
// code. Fails with ErrOTPNotFound if none exists, ErrOTPExpired if past
// expiry (deleting the row as a side effect), or ErrOTPMismatch if the code
// does not match. On success it returns the token; the caller is responsible
// for consuming it and updating the credential hash.
func (s *Service) ValidateOTP(ctx context.Context, user *userdomain.User, otp string) (*domain.ResetToken, error) {
	rec, err := s.repo.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrOTPNotFound
	}
	if rec.Expired(s.nowF()) {
		if err := s.repo.DeleteByID(ctx, rec.ID); err != nil {
			return nil, err
		}
		return nil, ErrOTPExpired
	}
	if !OTPEqual(otp, rec.OTPHash) {
		return nil, ErrOTPMismatch
	}
	return rec, nil
}

// Consume deletes the token after a successful reset. Idempotent.
func (s *Service) Consume(ctx context.Context, rec *domain.ResetToken) error {
	if rec == nil {
		return nil
	}
	return s.repo.DeleteByID(ctx, rec.ID)
}
