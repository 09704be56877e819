// Package auth provides the session manager and request authentication for
// the clinic server. Sessions are HS256 JWTs issued against the local account
// store; sign-out revokes the token id until it expires.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrManagerClosed      = errors.New("auth manager is closed")
)

// Account is the manager's view of a user record.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
}

// AccountStore abstracts the user directory behind the manager.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, a *Account) error
}

// Claims is the JWT payload for issued sessions.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Session is returned by SignIn and SignUp.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Account   `json:"user"`
}

// Auth state change events delivered to listeners.
const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
)

// Listener receives auth state changes. The session is nil for sign-out.
type Listener func(event string, session *Session)

// Manager owns the session lifecycle: credential verification, token
// issuance and revocation, and auth state change notification. Construct it
// with NewManager and tear it down with Close.
type Manager struct {
	store  AccountStore
	secret []byte
	ttl    time.Duration

	mu        sync.Mutex
	revoked   map[string]time.Time // jti -> token expiry
	listeners map[int]Listener
	nextID    int
	closed    bool
}

// NewManager creates a session manager signing tokens with secret, valid for ttl.
func NewManager(store AccountStore, secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		store:     store,
		secret:    secret,
		ttl:       ttl,
		revoked:   make(map[string]time.Time),
		listeners: make(map[int]Listener),
	}
}

// OnAuthChange registers a listener and returns a function that removes it.
func (m *Manager) OnAuthChange(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) notify(event string, session *Session) {
	m.mu.Lock()
	fns := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(event, session)
	}
}

// SignIn verifies the credentials and issues a session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if m.isClosed() {
		return nil, ErrManagerClosed
	}
	account, err := m.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := m.issue(account)
	if err != nil {
		return nil, err
	}
	m.notify(EventSignedIn, session)
	return session, nil
}

// SignUp registers a new account with the dentista role and immediately
// issues a session for it.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	if m.isClosed() {
		return nil, ErrManagerClosed
	}
	if existing, err := m.store.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Role:         "dentista",
		PasswordHash: string(hash),
	}
	if err := m.store.Create(ctx, account); err != nil {
		return nil, err
	}

	session, err := m.issue(account)
	if err != nil {
		return nil, err
	}
	m.notify(EventSignedIn, session)
	return session, nil
}

// SignOut revokes the token and notifies listeners. Revoking an already
// revoked or malformed token is not an error.
func (m *Manager) SignOut(token string) {
	claims, err := m.parse(token)
	if err == nil {
		m.mu.Lock()
		if !m.closed {
			m.revoked[claims.ID] = claims.ExpiresAt.Time
		}
		m.mu.Unlock()
	}
	m.notify(EventSignedOut, nil)
}

// Verify parses and validates a token, rejecting revoked ones.
func (m *Manager) Verify(token string) (*Claims, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	_, revoked := m.revoked[claims.ID]
	m.mu.Unlock()
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Close removes all listeners and stops accepting sign-ins. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.listeners = make(map[int]Listener)
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Manager) issue(account *Account) (*Session, error) {
	now := time.Now()
	expires := now.Add(m.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email: account.Email,
		Name:  account.Name,
		Role:  account.Role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	user := *account
	user.PasswordHash = ""
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

func (m *Manager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// PruneRevoked drops revocation entries for tokens that have expired anyway.
func (m *Manager) PruneRevoked(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for jti, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, jti)
		}
	}
}
