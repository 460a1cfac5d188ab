// Package auth contains the session adapter wrapping the identity
// provider into the uniform surface page code consumes.
package auth

import (
	"context"
	"log/slog"

	"github.com/porolink/porobase/domain"
)

// profileCollection is where sign-up writes the caller-supplied profile
// fields, keyed by the new principal's identifier.
const profileCollection = "profiles"

// SignUpParams carries the credential pair plus optional profile fields
// and the link target for the verification email.
type SignUpParams struct {
	domain.Credentials
	Data            domain.M
	EmailRedirectTo string
}

// StateHandler receives an auth state transition: [domain.EventSignedIn]
// with a session or [domain.EventSignedOut] with nil.
type StateHandler func(event string, session *domain.Session)

// Service adapts the identity provider. Every operation resolves to a
// value-or-error pair; nothing panics across this boundary.
type Service struct {
	identity domain.Identity
	store    domain.Store
	logger   *slog.Logger
}

// New returns a session adapter over the given provider and store.
func New(identity domain.Identity, store domain.Store, opts ...Option) *Service {
	s := Service{
		identity: identity,
		store:    store,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

// GetSession reflects the cached signed-in principal with a freshly
// minted access token, or nil when signed out. Token minting failures
// degrade to the signed-out shape rather than erroring.
func (s *Service) GetSession(ctx context.Context) (*domain.Session, error) {
	p := s.identity.Current()
	if p == nil {
		return nil, nil
	}
	token, err := s.identity.Token(ctx, p)
	if err != nil {
		s.logger.Warn("access token mint failed", "user", p.ID, "err", err)
		return nil, nil
	}
	return &domain.Session{User: p, AccessToken: token}, nil
}

// SignInWithPassword authenticates the credential pair. Provider failures
// come back as they are, carrying the provider's message and status.
func (s *Service) SignInWithPassword(ctx context.Context, creds domain.Credentials) (domain.AuthData, error) {
	p, err := s.identity.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return domain.AuthData{}, err
	}
	return s.sessionData(ctx, p)
}

// SignUp registers a new principal, dispatches a best-effort verification
// email, and, only when profile fields were supplied, writes a profile
// document keyed by the new identifier. A failed email dispatch is logged
// and swallowed; it never fails the sign-up.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (domain.AuthData, error) {
	p, err := s.identity.CreateUser(ctx, params.Email, params.Password)
	if err != nil {
		return domain.AuthData{}, err
	}

	if err := s.identity.SendVerification(ctx, p, params.EmailRedirectTo); err != nil {
		s.logger.Warn("verification email dispatch failed", "user", p.ID, "err", err)
	}

	if len(params.Data) > 0 {
		profile := params.Data.Clone()
		profile["user_id"] = p.ID
		profile["email"] = p.Email
		profile["created_at"] = s.store.Now()
		if err := s.store.Put(ctx, profileCollection, p.ID, profile); err != nil {
			return domain.AuthData{}, err
		}
	}
	return s.sessionData(ctx, p)
}

// SignOut clears the provider session.
func (s *Service) SignOut(ctx context.Context) error {
	return s.identity.SignOut(ctx)
}

// OnAuthStateChange registers a listener for identity transitions. It
// fires immediately with the current state and returns a detach handle.
func (s *Service) OnAuthStateChange(fn StateHandler) func() {
	return s.identity.OnStateChange(func(p *domain.Principal) {
		if p == nil {
			fn(domain.EventSignedOut, nil)
			return
		}
		session := &domain.Session{User: p}
		token, err := s.identity.Token(context.Background(), p)
		if err != nil {
			s.logger.Warn("access token mint failed", "user", p.ID, "err", err)
		} else {
			session.AccessToken = token
		}
		fn(domain.EventSignedIn, session)
	})
}

// ResendVerificationEmail re-dispatches the verification email for the
// signed-in principal. It fails distinctly when nobody is signed in and
// when the email is already verified.
func (s *Service) ResendVerificationEmail(ctx context.Context, redirectURL string) error {
	p := s.identity.Current()
	if p == nil {
		return domain.ErrNoSession
	}
	if p.EmailVerified {
		return domain.ErrAlreadyVerified
	}
	return s.identity.SendVerification(ctx, p, redirectURL)
}

func (s *Service) sessionData(ctx context.Context, p *domain.Principal) (domain.AuthData, error) {
	token, err := s.identity.Token(ctx, p)
	if err != nil {
		return domain.AuthData{}, err
	}
	session := &domain.Session{User: p, AccessToken: token}
	return domain.AuthData{User: p, Session: session}, nil
}
