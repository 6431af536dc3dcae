package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/romay-erp/romay/internal/platform/httpx"
	"github.com/romay-erp/romay/internal/session"
	"github.com/romay-erp/romay/internal/users"
)

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service wraps authentication business rules.
type Service struct {
	repo    users.Repository
	manager *session.Manager
	audit   *session.AuditTrail
	logger  *slog.Logger
}

// NewService constructs a new Service. The audit trail may be nil.
func NewService(repo users.Repository, manager *session.Manager, audit *session.AuditTrail, logger *slog.Logger) *Service {
	return &Service{repo: repo, manager: manager, audit: audit, logger: logger}
}

// Login validates phone/password credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, phone, password, ip, ua string) (session.TokenPair, error) {
	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return session.TokenPair{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return session.TokenPair{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return session.TokenPair{}, ErrInvalidCredentials
	}
	return s.issue(ctx, user, ip, ua)
}

// Refresh consumes a refresh token and issues a fresh pair. The old token
// is invalidated even when the user lookup fails. Store or database outages
// surface as-is; only a bad or consumed token is a credential failure.
func (s *Service) Refresh(ctx context.Context, refreshToken, ip, ua string) (session.TokenPair, error) {
	userID, err := s.manager.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrNoToken) || errors.Is(err, session.ErrTokenInvalid) {
			return session.TokenPair{}, ErrInvalidCredentials
		}
		return session.TokenPair{}, err
	}
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return session.TokenPair{}, ErrInvalidCredentials
		}
		return session.TokenPair{}, err
	}
	if !user.IsActive {
		return session.TokenPair{}, ErrInvalidCredentials
	}
	return s.issue(ctx, user, ip, ua)
}

// Logout revokes the session and its refresh token.
func (s *Service) Logout(ctx context.Context, sess *session.Session, refreshToken string) error {
	sessionID := ""
	if sess != nil {
		sessionID = sess.ID
	}
	if err := s.manager.Revoke(ctx, sessionID, refreshToken); err != nil {
		return err
	}
	if sessionID != "" {
		if err := s.audit.Remove(ctx, sessionID); err != nil {
			s.warn("remove session audit", err)
		}
	}
	return nil
}

// AccessTTL exposes the access token lifetime, used for cookie expiry.
func (s *Service) AccessTTL() time.Duration {
	return s.manager.AccessTTL()
}

// Identity returns the account behind a resolved session.
func (s *Service) Identity(ctx context.Context, sess *session.Session) (*users.User, error) {
	if sess == nil || !sess.Authenticated {
		return nil, ErrInvalidCredentials
	}
	return s.repo.Get(ctx, sess.UserID)
}

func (s *Service) issue(ctx context.Context, user *users.User, ip, ua string) (session.TokenPair, error) {
	sessionID, pair, err := s.manager.Issue(ctx, user.ID, user.Role)
	if err != nil {
		return session.TokenPair{}, err
	}
	expiresAt := time.Now().Add(s.manager.AccessTTL())
	if err := s.audit.Record(ctx, sessionID, user.ID, user.Role.String(), expiresAt, ip, ua); err != nil {
		s.warn("record session audit", err)
	}
	return pair, nil
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Any("error", err))
	}
}
