package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/nutrismart/planner/internal/domain/user"
)

// TokenManagerTestSuite covers session token issuing and validation
type TokenManagerTestSuite struct {
	suite.Suite
	manager *TokenManager
	user    *user.User
	now     time.Time
}

func (s *TokenManagerTestSuite) SetupTest() {
	manager, err := NewTokenManager("test-secret-key-for-testing-only", time.Hour)
	s.Require().NoError(err)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return s.now }
	s.manager = manager

	u, err := user.NewUser("Asha@Example.com", "Asha", "https://example.com/a.png", s.now)
	s.Require().NoError(err)
	s.user = u
}

func (s *TokenManagerTestSuite) TestIssueAndValidate() {
	token, expiresAt, err := s.manager.Issue(s.user)
	s.Require().NoError(err)
	s.Equal(s.now.Add(time.Hour), expiresAt)

	claims, err := s.manager.Validate(token)

	s.Require().NoError(err)
	s.Equal("asha@example.com", claims.Email)
	s.Equal("Asha", claims.Name)
	s.Equal("https://example.com/a.png", claims.Picture)
	s.Equal("asha@example.com", claims.Subject)
	s.NotEmpty(claims.ID)
}

func (s *TokenManagerTestSuite) TestValidate_Expired() {
	token, _, err := s.manager.Issue(s.user)
	s.Require().NoError(err)

	s.now = s.now.Add(2 * time.Hour)
	_, err = s.manager.Validate(token)

	s.ErrorIs(err, ErrTokenExpired)
}

func (s *TokenManagerTestSuite) TestValidate_WrongSecret() {
	other, err := NewTokenManager("another-secret", time.Hour)
	s.Require().NoError(err)
	other.now = s.manager.now
	token, _, err := other.Issue(s.user)
	s.Require().NoError(err)

	_, err = s.manager.Validate(token)

	s.ErrorIs(err, ErrTokenInvalid)
}

func (s *TokenManagerTestSuite) TestValidate_RejectsOtherAlgorithms() {
	claims := &Claims{
		Email: "asha@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  []string{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(s.now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.manager.Validate(token)

	s.ErrorIs(err, ErrTokenInvalid)
}

func (s *TokenManagerTestSuite) TestValidate_Garbage() {
	_, err := s.manager.Validate("not-a-token")
	s.ErrorIs(err, ErrTokenInvalid)
}

func TestTokenManagerTestSuite(t *testing.T) {
	suite.Run(t, new(TokenManagerTestSuite))
}

func TestNewTokenManager_RequiresSecretAndTTL(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	require.Error(t, err)

	_, err = NewTokenManager("secret", 0)
	assert.Error(t, err)
}
