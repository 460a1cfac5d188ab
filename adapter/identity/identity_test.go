package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/porolink/porobase/domain"
)

type recordingMailer struct {
	emails []string
	links  []string
	err    error
}

func (m *recordingMailer) SendVerification(_ context.Context, email, link string) error {
	if m.err != nil {
		return m.err
	}
	m.emails = append(m.emails, email)
	m.links = append(m.links, link)
	return nil
}

type IdentityTestSuite struct {
	suite.Suite
	ctx context.Context
	i   *Identity
}

func (s *IdentityTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.i = NewIdentity()
}

func (s *IdentityTestSuite) TestCreateUser() {
	p, err := s.i.CreateUser(s.ctx, "Aino@Example.com", "hunter22")
	s.Require().NoError(err)
	s.NotEmpty(p.ID)
	s.Equal("aino@example.com", p.Email)
	s.False(p.EmailVerified)

	current := s.i.Current()
	s.Require().NotNil(current)
	s.Equal(p.ID, current.ID)
}

func (s *IdentityTestSuite) TestCreateUserWeakPassword() {
	p, err := s.i.CreateUser(s.ctx, "aino@example.com", "short")
	s.Nil(p)
	var se *domain.StatusError
	s.Require().ErrorAs(err, &se)
	s.Equal("auth/weak-password", se.Status)
	s.Nil(s.i.Current())
}

func (s *IdentityTestSuite) TestCreateUserDuplicate() {
	_, err := s.i.CreateUser(s.ctx, "aino@example.com", "hunter22")
	s.Require().NoError(err)

	p, err := s.i.CreateUser(s.ctx, "AINO@example.com", "hunter22")
	s.Nil(p)
	s.ErrorIs(err, ErrEmailInUse)
}

func (s *IdentityTestSuite) TestSignIn() {
	_, err := s.i.CreateUser(s.ctx, "aino@example.com", "hunter22")
	s.Require().NoError(err)
	s.Require().NoError(s.i.SignOut(s.ctx))

	p, err := s.i.SignIn(s.ctx, "aino@example.com", "hunter22")
	s.Require().NoError(err)
	s.Equal("aino@example.com", p.Email)
	s.NotNil(s.i.Current())
}

// Wrong password and absent account yield the same opaque failure.
func (s *IdentityTestSuite) TestSignInOpaqueFailure() {
	_, err := s.i.CreateUser(s.ctx, "aino@example.com", "hunter22")
	s.Require().NoError(err)

	_, wrongPassword := s.i.SignIn(s.ctx, "aino@example.com", "nope22")
	_, noAccount := s.i.SignIn(s.ctx, "absent@example.com", "hunter22")
	s.ErrorIs(wrongPassword, ErrInvalidCredential)
	s.True(errors.Is(noAccount, wrongPassword))
}

func (s *IdentityTestSuite) TestOnStateChange() {
	var states []*domain.Principal
	detach := s.i.OnStateChange(func(p *domain.Principal) {
		states = append(states, p)
	})
	s.Require().Len(states, 1)
	s.Nil(states[0])

	_, err := s.i.CreateUser(s.ctx, "aino@example.com", "hunter22")
	s.Require().NoError(err)
	s.Require().Len(states, 2)
	s.NotNil(states[1])

	s.Require().NoError(s.i.SignOut(s.ctx))
	s.Require().Len(states, 3)
	s.Nil(states[2])

	detach()
	_, err = s.i.SignIn(s.ctx, "aino@example.com", "hunter22")
	s.Require().NoError(err)
	s.Len(states, 3)
}

func (s *IdentityTestSuite) TestToken() {
	secret := []byte("test-secret")
	s.i = NewIdentity(WithSecret(secret))
	p, err := s.i.CreateUser(s.ctx, "aino@example.com", "hunter22")
	s.Require().NoError(err)

	token, err := s.i.Token(s.ctx, p)
	s.Require().NoError(err)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{"HS256"}))
	s.Require().NoError(err)
	claims := parsed.Claims.(jwt.MapClaims)
	s.Equal(p.ID, claims["sub"])
	s.Equal("aino@example.com", claims["email"])
	s.Equal(false, claims["email_verified"])
	s.NotEmpty(claims["jti"])
}

func (s *IdentityTestSuite) TestSendVerification() {
	mailer := &recordingMailer{}
	s.i = NewIdentity(WithMailer(mailer))
	p, err := s.i.CreateUser(s.ctx, "aino@example.com", "hunter22")
	s.Require().NoError(err)

	s.Require().NoError(s.i.SendVerification(s.ctx, p, "https://porolink.app/verified"))
	s.Equal([]string{"aino@example.com"}, mailer.emails)
	s.Equal([]string{"https://porolink.app/verified"}, mailer.links)
}

func (s *IdentityTestSuite) TestMarkVerified() {
	p, err := s.i.CreateUser(s.ctx, "aino@example.com", "hunter22")
	s.Require().NoError(err)
	s.False(p.EmailVerified)

	s.True(s.i.MarkVerified("aino@example.com"))
	s.False(s.i.MarkVerified("absent@example.com"))

	current := s.i.Current()
	s.Require().NotNil(current)
	s.True(current.EmailVerified)
}

func TestIdentityTestSuite(t *testing.T) {
	suite.Run(t, new(IdentityTestSuite))
}
