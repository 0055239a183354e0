// Package auth signs users in with an identity provider access token and
// issues stateless session tokens
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/domain/user"
	"github.com/nutrismart/planner/internal/infrastructure/security"
	"github.com/nutrismart/planner/internal/ports/inbound"
	"github.com/nutrismart/planner/internal/ports/outbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// TokenManager issues and validates session tokens
type TokenManager interface {
	Issue(u *user.User) (string, time.Time, error)
	Validate(token string) (*security.Claims, error)
}

// Service implements sign-in, session lookup and sign-out
type Service struct {
	provider outbound.IdentityProvider
	tokens   TokenManager
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates an auth service
func NewService(provider outbound.IdentityProvider, tokens TokenManager, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		tokens:   tokens,
		logger:   logger.Named("auth-service"),
		now:      time.Now,
	}
}

// SignIn exchanges a provider access token for a session
func (s *Service) SignIn(ctx context.Context, accessToken string) (*inbound.Session, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, apperrors.NewValidationError(user.ErrInvalidToken.Error())
	}

	info, err := s.provider.UserInfo(ctx, accessToken)
	if err != nil {
		s.logger.Warn("Identity lookup failed", zap.Error(err))
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.NewExternalServiceError("identity provider", err)
	}

	u, err := user.NewUser(info.Email, info.Name, info.Picture, s.now())
	if err != nil {
		return nil, apperrors.NewInvalidCredentialsError().WithCause(err)
	}

	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue session token")
	}

	s.logger.Info("User signed in",
		zap.String("email", u.Email()),
		zap.Time("expires_at", expiresAt),
	)
	return &inbound.Session{Token: token, User: u.Info()}, nil
}

// Authenticate resolves the user behind a session token
func (s *Service) Authenticate(ctx context.Context, sessionToken string) (*user.User, error) {
	claims, err := s.tokens.Validate(sessionToken)
	if errors.Is(err, security.ErrTokenExpired) {
		return nil, apperrors.NewUnauthorizedError("session expired")
	}
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid session token")
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	u, err := user.NewUser(claims.Email, claims.Name, claims.Picture, issuedAt)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid session token").WithCause(err)
	}
	return u, nil
}

// SignOut revokes the provider access token. Revocation failures are logged
// and do not fail the sign-out.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil
	}
	if err := s.provider.Revoke(ctx, accessToken); err != nil {
		s.logger.Warn("Failed to revoke access token", zap.Error(err))
	}
	s.logger.Info("User signed out")
	return nil
}
