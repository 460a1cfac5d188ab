// Package identity contains an in-memory [domain.Identity]
// implementation backed by bcrypt credential hashes and HS256 access
// tokens.
package identity

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/porolink/porobase/adapter/timegetter"
	"github.com/porolink/porobase/domain"
)

// minPasswordLength is the provider's password policy floor.
const minPasswordLength = 6

// defaultTokenTTL bounds minted access tokens.
const defaultTokenTTL = time.Hour

// Provider-shaped errors. Sign-in failure is deliberately opaque: a wrong
// password and an absent account are indistinguishable to the caller.
var (
	ErrInvalidCredential = &domain.StatusError{
		Message: "Invalid login credentials",
		Status:  "auth/invalid-credential",
	}
	ErrWeakPassword = &domain.StatusError{
		Message: "Password should be at least 6 characters",
		Status:  "auth/weak-password",
	}
	ErrEmailInUse = &domain.StatusError{
		Message: "User already registered",
		Status:  "auth/email-already-in-use",
	}
)

type account struct {
	id       string
	email    string
	hash     []byte
	verified bool
}

// Identity implements [domain.Identity].
type Identity struct {
	mu        sync.Mutex
	accounts  map[string]*account
	current   *account
	listeners map[int]func(*domain.Principal)
	nextID    int

	tg     domain.TimeGetter
	mailer domain.Mailer
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewIdentity returns a new implementation of [domain.Identity].
func NewIdentity(opts ...Option) *Identity {
	i := Identity{
		accounts:  make(map[string]*account),
		listeners: make(map[int]func(*domain.Principal)),
		tg:        timegetter.NewTimeGetter(),
		secret:    []byte("porobase-dev-secret"),
		ttl:       defaultTokenTTL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&i)
	}
	if i.mailer == nil {
		i.mailer = &logMailer{logger: i.logger}
	}
	return &i
}

// SignIn implements [domain.Identity].
func (i *Identity) SignIn(ctx context.Context, email, password string) (*domain.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i.mu.Lock()
	acc, ok := i.accounts[normalizeEmail(email)]
	i.mu.Unlock()
	if !ok {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	i.mu.Lock()
	i.current = acc
	p := acc.principal()
	fns := i.snapshotListeners()
	i.mu.Unlock()

	notify(fns, p)
	return p, nil
}

// CreateUser implements [domain.Identity].
func (i *Identity) CreateUser(ctx context.Context, email, password string) (*domain.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	key := normalizeEmail(email)
	i.mu.Lock()
	if _, exists := i.accounts[key]; exists {
		i.mu.Unlock()
		return nil, ErrEmailInUse
	}
	acc := &account{id: uuid.NewString(), email: key, hash: hash}
	i.accounts[key] = acc
	i.current = acc
	p := acc.principal()
	fns := i.snapshotListeners()
	i.mu.Unlock()

	notify(fns, p)
	return p, nil
}

// SignOut implements [domain.Identity].
func (i *Identity) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.mu.Lock()
	i.current = nil
	fns := i.snapshotListeners()
	i.mu.Unlock()

	notify(fns, nil)
	return nil
}

// SendVerification implements [domain.Identity].
func (i *Identity) SendVerification(ctx context.Context, p *domain.Principal, redirectURL string) error {
	return i.mailer.SendVerification(ctx, p.Email, redirectURL)
}

// OnStateChange implements [domain.Identity]. The listener fires
// immediately with the current principal, then on every transition.
func (i *Identity) OnStateChange(fn func(*domain.Principal)) func() {
	i.mu.Lock()
	id := i.nextID
	i.nextID++
	i.listeners[id] = fn
	current := i.currentPrincipalLocked()
	i.mu.Unlock()

	fn(current)

	return func() {
		i.mu.Lock()
		delete(i.listeners, id)
		i.mu.Unlock()
	}
}

// Current implements [domain.Identity].
func (i *Identity) Current() *domain.Principal {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.currentPrincipalLocked()
}

// Token implements [domain.Identity].
func (i *Identity) Token(ctx context.Context, p *domain.Principal) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := i.tg.GetTime()
	claims := jwt.MapClaims{
		"sub":            p.ID,
		"email":          p.Email,
		"email_verified": p.EmailVerified,
		"iat":            now.Unix(),
		"exp":            now.Add(i.ttl).Unix(),
		"jti":            uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// MarkVerified flags an account's email as verified, standing in for the
// user clicking the emailed link.
func (i *Identity) MarkVerified(email string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	acc, ok := i.accounts[normalizeEmail(email)]
	if !ok {
		return false
	}
	acc.verified = true
	return true
}

func (i *Identity) currentPrincipalLocked() *domain.Principal {
	if i.current == nil {
		return nil
	}
	return i.current.principal()
}

func (i *Identity) snapshotListeners() []func(*domain.Principal) {
	fns := make([]func(*domain.Principal), 0, len(i.listeners))
	for _, fn := range i.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(*domain.Principal), p *domain.Principal) {
	for _, fn := range fns {
		fn(p)
	}
}

func (a *account) principal() *domain.Principal {
	return &domain.Principal{ID: a.id, Email: a.email, EmailVerified: a.verified}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// logMailer is the default [domain.Mailer]. It records the dispatch
// instead of sending anything, which is what local development wants.
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) SendVerification(ctx context.Context, email, link string) error {
	m.logger.Info("verification email dispatched", "email", email, "link", link)
	return nil
}
