package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/oakmontlabs/gatehouse/internal/auth/domain"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/pkg/cryptox"
	"github.com/oakmontlabs/gatehouse/pkg/idx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrAlreadyVerified    = errors.New("already_verified")
)

// Mailer delivers one-time codes out of band. The default implementation
// just logs; a real deployment plugs in an email or SMS gateway.
type Mailer interface {
	SendPasswordReset(ctx context.Context, recipient, code string) error
	SendVerification(ctx context.Context, recipient, code string) error
}

// LogMailer writes codes to the log instead of delivering them. Useful for
// development and tests.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, recipient, code string) error {
	m.Logger.Info("password reset code issued", slog.String("recipient", recipient), slog.String("code", code))
	return nil
}

func (m *LogMailer) SendVerification(ctx context.Context, recipient, code string) error {
	m.Logger.Info("verification code issued", slog.String("recipient", recipient), slog.String("code", code))
	return nil
}

// AccountService implements the authentication flows: login, refresh with
// rotation, logout, password reset, and contact verification.
type AccountService struct {
	Store  store.Store
	Tokens *TokenService
	Mailer Mailer
}

// Login authenticates by email or contact number plus password and issues a
// token pair. The device session describes the client performing the login
// and is recorded for audit.
func (s *AccountService) Login(ctx context.Context, identifier, password string, session domain.DeviceSession) (domain.TokenPair, error) {
	p, err := s.findPrincipal(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, p.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	role, err := s.Store.Roles().GetByID(ctx, p.RoleID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair, err := s.Tokens.IssuePair(ctx, p, role.Name)
	if err != nil {
		return domain.TokenPair{}, err
	}

	s.recordSession(ctx, p.ID, domain.ActivityLogin, session)
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is validated, revoked,
// and a brand-new pair is issued from the principal's current state. A
// refresh token therefore works exactly once.
func (s *AccountService) Refresh(ctx context.Context, rawRefresh string, session domain.DeviceSession) (domain.TokenPair, error) {
	_, rec, err := s.Tokens.Validate(ctx, rawRefresh, domain.TokenKindRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.Tokens.Revoke(ctx, rawRefresh); err != nil {
		return domain.TokenPair{}, err
	}

	// Re-read the principal so role changes since login take effect on the
	// new pair.
	p, err := s.Store.Principals().GetByID(ctx, rec.PrincipalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUnauthorized
		}
		return domain.TokenPair{}, err
	}

	role, err := s.Store.Roles().GetByID(ctx, p.RoleID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair, err := s.Tokens.IssuePair(ctx, p, role.Name)
	if err != nil {
		return domain.TokenPair{}, err
	}

	s.recordSession(ctx, p.ID, domain.ActivityRefresh, session)
	return pair, nil
}

// Logout revokes every live credential the principal holds.
func (s *AccountService) Logout(ctx context.Context, principalID string, session domain.DeviceSession) error {
	if err := s.Tokens.RevokeAllForPrincipal(ctx, principalID); err != nil {
		return err
	}
	s.recordSession(ctx, principalID, domain.ActivityLogout, session)
	return nil
}

// ForgotPassword starts the reset flow. The one-time code is delivered out
// of band while the reset token is handed back to the caller; completing the
// reset requires both. An unknown identifier yields an empty token and no
// error so the endpoint cannot be used to enumerate accounts.
func (s *AccountService) ForgotPassword(ctx context.Context, identifier string) (string, error) {
	l := slogx.FromContext(ctx)

	p, err := s.findPrincipal(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("password reset requested for unknown identifier")
			return "", nil
		}
		return "", err
	}

	code, err := cryptox.OneTimeCode()
	if err != nil {
		return "", err
	}

	raw, _, err := s.Tokens.IssueOneTime(ctx, p, domain.TokenKindReset, code)
	if err != nil {
		return "", err
	}

	if err := s.Mailer.SendPasswordReset(ctx, recipient(p), code); err != nil {
		return "", err
	}
	return raw, nil
}

// ResetPassword completes the reset flow. On success every credential the
// principal holds is revoked, forcing a fresh login everywhere.
func (s *AccountService) ResetPassword(ctx context.Context, rawReset, code, newPassword string, session domain.DeviceSession) error {
	claims, rec, err := s.Tokens.Validate(ctx, rawReset, domain.TokenKindReset)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(claims.Code), []byte(code)) != 1 {
		return ErrInvalidCode
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.Store.Principals().UpdatePasswordHash(ctx, rec.PrincipalID, hash); err != nil {
		return err
	}
	if err := s.Tokens.RevokeAllForPrincipal(ctx, rec.PrincipalID); err != nil {
		return err
	}

	s.recordSession(ctx, rec.PrincipalID, domain.ActivityPasswordReset, session)
	return nil
}

// RequestVerification issues a verify token for the authenticated principal
// and delivers its one-time code out of band.
func (s *AccountService) RequestVerification(ctx context.Context, p domain.Principal) (string, error) {
	if p.VerifiedAt != nil {
		return "", ErrAlreadyVerified
	}

	code, err := cryptox.OneTimeCode()
	if err != nil {
		return "", err
	}

	raw, _, err := s.Tokens.IssueOneTime(ctx, p, domain.TokenKindVerify, code)
	if err != nil {
		return "", err
	}

	if err := s.Mailer.SendVerification(ctx, recipient(p), code); err != nil {
		return "", err
	}
	return raw, nil
}

// ConfirmVerification completes the verify flow and marks the principal
// verified. The verify token is consumed on success.
func (s *AccountService) ConfirmVerification(ctx context.Context, rawVerify, code string, session domain.DeviceSession) error {
	claims, rec, err := s.Tokens.Validate(ctx, rawVerify, domain.TokenKindVerify)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(claims.Code), []byte(code)) != 1 {
		return ErrInvalidCode
	}

	if err := s.Store.Principals().MarkVerified(ctx, rec.PrincipalID); err != nil {
		return err
	}
	if err := s.Tokens.Revoke(ctx, rawVerify); err != nil {
		return err
	}

	s.recordSession(ctx, rec.PrincipalID, domain.ActivityVerify, session)
	return nil
}

// Sessions lists the recorded device sessions for a principal, newest first.
func (s *AccountService) Sessions(ctx context.Context, principalID string) ([]domain.DeviceSession, error) {
	return s.Store.DeviceSessions().ListByPrincipal(ctx, principalID)
}

func (s *AccountService) findPrincipal(ctx context.Context, identifier string) (domain.Principal, error) {
	p, err := s.Store.Principals().GetByEmail(ctx, identifier)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Principal{}, err
	}
	return s.Store.Principals().GetByContactNumber(ctx, identifier)
}

// recordSession persists the audit row. Failures are logged rather than
// surfaced; the authentication itself already succeeded.
func (s *AccountService) recordSession(ctx context.Context, principalID, activity string, session domain.DeviceSession) {
	session.ID = idx.New().String()
	session.PrincipalID = principalID
	session.Activity = activity

	if err := s.Store.DeviceSessions().Create(ctx, session); err != nil {
		slogx.FromContext(ctx).Error("failed to record device session",
			slog.Any("error", err),
			slog.String("principal_id", principalID),
			slog.String("activity", activity),
		)
	}
}

func recipient(p domain.Principal) string {
	if p.Email != "" {
		return p.Email
	}
	return p.ContactNumber
}
