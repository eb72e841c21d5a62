package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snakeladder/internal/dependencies/mocks"
	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/storage/memory"
	"github.com/mcoot/snakeladder/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.Secret = "test-secret"
	s.service = New(s.storage, s.clock, mocks.NewSequenceIDs("u"), cfg, testutil.NopLogger())
	s.ctx = context.Background()
}

// Signup tests

func (s *ServiceSuite) TestSignupSucceeds() {
	session, err := s.service.Signup(s.ctx, "alice", "alice@example.com", "password123")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(model.UserID("u-1"), session.User.ID)
	s.Equal("alice", session.User.Username)
	s.Empty(session.User.PasswordHash)
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestSignupHashesPassword() {
	_, _ = s.service.Signup(s.ctx, "alice", "alice@example.com", "password123")

	u, err := s.storage.GetUser(s.ctx, "u-1")
	s.Require().NoError(err)
	s.NotEmpty(u.PasswordHash)
	s.NotEqual("password123", u.PasswordHash)
}

func (s *ServiceSuite) TestSignupNormalisesEmail() {
	session, err := s.service.Signup(s.ctx, "alice", "  Alice@Example.COM ", "password123")
	s.Require().NoError(err)
	s.Equal("alice@example.com", session.User.Email)
}

func (s *ServiceSuite) TestSignupRejectsMissingFields() {
	_, err := s.service.Signup(s.ctx, "", "alice@example.com", "pw")
	s.ErrorIs(err, ErrMissingFields)

	_, err = s.service.Signup(s.ctx, "alice", " ", "pw")
	s.ErrorIs(err, ErrMissingFields)

	_, err = s.service.Signup(s.ctx, "alice", "alice@example.com", "")
	s.ErrorIs(err, ErrMissingFields)
}

func (s *ServiceSuite) TestSignupFailsIfEmailExists() {
	_, _ = s.service.Signup(s.ctx, "alice", "alice@example.com", "password123")

	_, err := s.service.Signup(s.ctx, "alice2", "ALICE@example.com", "password123")
	s.ErrorIs(err, model.ErrEmailTaken)
}

func (s *ServiceSuite) TestSignupFailsIfUsernameExists() {
	_, _ = s.service.Signup(s.ctx, "alice", "alice@example.com", "password123")

	_, err := s.service.Signup(s.ctx, "alice", "other@example.com", "password123")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	_, _ = s.service.Signup(s.ctx, "alice", "alice@example.com", "password123")

	session, err := s.service.Login(s.ctx, "Alice@example.com", "password123")
	s.Require().NoError(err)
	s.NotEmpty(session.Token)
	s.Equal("alice", session.User.Username)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, _ = s.service.Signup(s.ctx, "alice", "alice@example.com", "password123")

	_, err := s.service.Login(s.ctx, "alice@example.com", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody@example.com", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Token tests

func (s *ServiceSuite) TestValidateTokenRoundTrip() {
	session, _ := s.service.Signup(s.ctx, "alice", "alice@example.com", "password123")

	claims, err := s.service.ValidateToken(session.Token)
	s.Require().NoError(err)
	s.Equal("u-1", claims.Subject)
	s.Equal("alice", claims.Username)
}

func (s *ServiceSuite) TestValidateTokenFailsWhenExpired() {
	session, _ := s.service.Signup(s.ctx, "alice", "alice@example.com", "password123")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateToken(session.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateTokenFailsWithGarbage() {
	_, err := s.service.ValidateToken("not-a-token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateTokenFailsWithOtherSecret() {
	other := New(s.storage, s.clock, mocks.NewSequenceIDs("x"), Config{Secret: "other"}, testutil.NopLogger())
	session, err := other.Signup(s.ctx, "bob", "bob@example.com", "pw")
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(session.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateTokenRejectsNoneAlgorithm() {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

// GetUser tests

func (s *ServiceSuite) TestGetUserSucceeds() {
	session, _ := s.service.Signup(s.ctx, "alice", "alice@example.com", "password123")

	u, err := s.service.GetUser(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Equal("alice", u.Username)
}

func (s *ServiceSuite) TestGetUserFailsWithInvalidToken() {
	_, err := s.service.GetUser(s.ctx, "invalid_token")
	s.ErrorIs(err, ErrInvalidToken)
}
