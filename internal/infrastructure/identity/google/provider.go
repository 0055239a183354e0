// Package google resolves Google OAuth2 access tokens into user details
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/nutrismart/planner/internal/domain/user"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// Google endpoints
const (
	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	DefaultRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

// Config holds the provider endpoints
type Config struct {
	UserInfoURL string
	RevokeURL   string
	Timeout     time.Duration
}

// Provider implements outbound.IdentityProvider against Google
type Provider struct {
	userInfoURL string
	revokeURL   string
	base        *http.Client
	logger      *zap.Logger
}

// NewProvider creates a Google identity provider
func NewProvider(cfg Config, logger *zap.Logger) *Provider {
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	if cfg.RevokeURL == "" {
		cfg.RevokeURL = DefaultRevokeURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Provider{
		userInfoURL: cfg.UserInfoURL,
		revokeURL:   cfg.RevokeURL,
		base: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("google-identity"),
	}
}

type userInfoResponse struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// UserInfo fetches the profile behind accessToken
func (p *Provider) UserInfo(ctx context.Context, accessToken string) (*user.Info, error) {
	// oauth2 attaches the bearer token; the base client carries timeout and tracing
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		p.logger.Info("Access token rejected", zap.Int("status", resp.StatusCode))
		return nil, apperrors.NewInvalidCredentialsError()
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("userinfo returned status %d: %s", resp.StatusCode, string(body))
	}

	var info userInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	return &user.Info{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

// Revoke invalidates accessToken at Google
func (p *Provider) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.base.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke returned status %d", resp.StatusCode)
	}
	return nil
}
