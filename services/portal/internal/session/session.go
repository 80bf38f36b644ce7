package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"fieldbook/services/portal/internal/clients"
	"fieldbook/services/portal/internal/models"
	"fieldbook/services/portal/internal/storage"
)

// Persisted keys.
const (
	TokenKey = "auth_token"
	UserKey  = "user_data"
)

// Fallback messages when an error carries no text.
const (
	msgLoginFailed          = "Error al iniciar sesión"
	msgSignupFailed         = "Error al crear la cuenta"
	msgRecoveryFailed       = "Error al enviar email de recuperación"
	msgChangePasswordFailed = "Error al cambiar la contraseña"
	msgNoSession            = "No hay una sesión activa"
)

// ErrNoSession is returned by operations that need an authenticated session.
var ErrNoSession = errors.New("session: not authenticated")

// RestorePolicy decides how much a persisted session is trusted at startup.
type RestorePolicy string

const (
	// RestoreOptimistic trusts token presence alone.
	RestoreOptimistic RestorePolicy = "optimistic"
	// RestoreExpiry also drops sessions whose JWT exp claim is in the past.
	RestoreExpiry RestorePolicy = "expiry"
	// RestoreRevalidate asks the auth service for the current user.
	RestoreRevalidate RestorePolicy = "revalidate"
)

// ParseRestorePolicy maps configuration values to a policy; empty means optimistic.
func ParseRestorePolicy(value string) (RestorePolicy, error) {
	switch RestorePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", RestoreOptimistic:
		return RestoreOptimistic, nil
	case RestoreExpiry:
		return RestoreExpiry, nil
	case RestoreRevalidate:
		return RestoreRevalidate, nil
	}
	return "", fmt.Errorf("session: unknown restore policy %q", value)
}

// AuthAPI is the subset of the auth service the store depends on.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, req models.UserUpdateRequest, token string) (*models.User, error)
	RecoverPassword(ctx context.Context, email string) (*models.Message, error)
}

// UserPatch is a partial user record; nil fields are left as they are.
type UserPatch struct {
	Username *string
	Email    *string
	IsActive *bool
	IsAdmin  *bool
}

func (p UserPatch) apply(u models.User) models.User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
	return u
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	User          *models.User
	Token         string
	Authenticated bool
	Error         string
}

// Option configures a Store.
type Option func(*Store)

// WithRestorePolicy sets the policy used by Restore.
func WithRestorePolicy(policy RestorePolicy) Option {
	return func(s *Store) { s.policy = policy }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store holds the authenticated identity and persists it. Token and user are set and cleared
// together. Safe for concurrent use; API calls run outside the lock.
type Store struct {
	auth    AuthAPI
	storage storage.Storage
	logger  *zap.Logger
	policy  RestorePolicy
	now     func() time.Time

	mu         sync.RWMutex
	user       *models.User
	token      string
	lastErr    string
	registered *models.User

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// NewStore builds a store; call Restore before use to load a persisted session.
func NewStore(auth AuthAPI, st storage.Storage, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		auth:        auth,
		storage:     st,
		logger:      logger,
		policy:      RestoreOptimistic,
		now:         time.Now,
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted session once at startup. Only storage failures are returned;
// a corrupt or rejected session is cleared.
func (s *Store) Restore(ctx context.Context) error {
	token, hasToken, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		return fmt.Errorf("session: read token: %w", err)
	}
	raw, hasUser, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		return fmt.Errorf("session: read user: %w", err)
	}
	if !hasToken || !hasUser || token == "" {
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding corrupt persisted user", zap.Error(err))
		return s.clearPersisted(ctx)
	}

	switch s.policy {
	case RestoreExpiry:
		if exp, ok := TokenExpiry(token); ok && !exp.After(s.now()) {
			s.logger.Info("persisted token expired, discarding session", zap.Time("expired_at", exp))
			return s.clearPersisted(ctx)
		}
	case RestoreRevalidate:
		current, err := s.auth.CurrentUser(ctx, token)
		switch {
		case err == nil:
			user = *current
			if err := s.persistUser(ctx, user); err != nil {
				return err
			}
		case clients.IsAPIError(err):
			s.logger.Info("persisted token rejected, discarding session", zap.String("detail", clients.Message(err)))
			return s.clearPersisted(ctx)
		default:
			s.logger.Warn("could not revalidate session, keeping it", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()
	s.notify()
	return nil
}

// Login authenticates, fetches the current user and persists both. On failure the message is
// kept in Err and the existing session is untouched.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	s.setError("")

	resp, err := s.auth.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return s.fail("login failed", err, msgLoginFailed)
	}
	user, err := s.auth.CurrentUser(ctx, resp.AccessToken)
	if err != nil {
		return s.fail("fetch current user failed", err, msgLoginFailed)
	}

	previousToken := s.Token()
	if err := s.storage.Set(ctx, TokenKey, resp.AccessToken); err != nil {
		return s.fail("persist token failed", err, msgLoginFailed)
	}
	if err := s.persistUser(ctx, *user); err != nil {
		if previousToken != "" {
			_ = s.storage.Set(ctx, TokenKey, previousToken)
		} else {
			_ = s.storage.Remove(ctx, TokenKey)
		}
		return s.fail("persist user failed", err, msgLoginFailed)
	}

	s.mu.Lock()
	s.user = user
	s.token = resp.AccessToken
	s.mu.Unlock()
	s.logger.Info("logged in", zap.Int64("user_id", user.ID))
	s.notify()
	return true
}

// Signup registers an account. It does not log in: the server issues no token on
// registration, so the session stays as it was and the new account is exposed by Registered.
func (s *Store) Signup(ctx context.Context, email, password, username string) bool {
	s.setError("")

	user, err := s.auth.Register(ctx, models.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return s.fail("signup failed", err, msgSignupFailed)
	}

	s.mu.Lock()
	s.registered = user
	s.mu.Unlock()
	s.logger.Info("account registered", zap.Int64("user_id", user.ID))
	s.notify()
	return true
}

// Logout clears the session in memory and in storage. Storage errors are logged only.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.lastErr = ""
	s.mu.Unlock()

	if err := s.clearPersisted(ctx); err != nil {
		s.logger.Warn("failed to clear persisted session", zap.Error(err))
	}
	s.notify()
}

// UpdateUser merges patch into the current user and persists it without contacting the server.
func (s *Store) UpdateUser(ctx context.Context, patch UserPatch) bool {
	s.mu.RLock()
	current := s.user
	s.mu.RUnlock()
	if current == nil {
		return false
	}

	updated := patch.apply(*current)
	if err := s.persistUser(ctx, updated); err != nil {
		s.setError(err.Error())
		s.logger.Warn("persist user failed", zap.Error(err))
		return false
	}

	s.mu.Lock()
	if s.user != nil {
		s.user = &updated
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// ResetPassword requests a recovery e-mail.
func (s *Store) ResetPassword(ctx context.Context, email string) bool {
	s.setError("")
	if _, err := s.auth.RecoverPassword(ctx, email); err != nil {
		return s.fail("password recovery failed", err, msgRecoveryFailed)
	}
	return true
}

// ChangePassword sets a new password for the logged-in user through the profile endpoint.
func (s *Store) ChangePassword(ctx context.Context, currentPassword, newPassword string) bool {
	s.setError("")
	token := s.Token()
	if token == "" {
		return s.fail("change password failed", ErrNoSession, msgNoSession)
	}
	if strings.TrimSpace(newPassword) == "" {
		return s.fail("change password failed", errors.New("la nueva contraseña no puede estar vacía"), msgChangePasswordFailed)
	}
	if newPassword == currentPassword {
		return s.fail("change password failed", errors.New("la nueva contraseña debe ser distinta de la actual"), msgChangePasswordFailed)
	}
	if _, err := s.auth.UpdateProfile(ctx, models.UserUpdateRequest{Password: &newPassword}, token); err != nil {
		return s.fail("change password failed", err, msgChangePasswordFailed)
	}
	return true
}

// User returns a copy of the current user.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Token returns the bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a user is loaded.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Registered returns the account created by the last successful Signup.
func (s *Store) Registered() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registered == nil {
		return models.User{}, false
	}
	return *s.registered, true
}

// Err returns the last error message, empty when none.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// ClearError forgets the last error message.
func (s *Store) ClearError() {
	s.setError("")
	s.notify()
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Token: s.token, Authenticated: s.user != nil, Error: s.lastErr}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Subscribe registers fn to be called with a snapshot after every state change.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	snap := s.Snapshot()
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) fail(msg string, err error, fallback string) bool {
	message := clients.Message(err)
	if message == "" {
		message = fallback
	}
	s.logger.Warn(msg, zap.Error(err))
	s.setError(message)
	s.notify()
	return false
}

func (s *Store) setError(message string) {
	s.mu.Lock()
	s.lastErr = message
	s.mu.Unlock()
}

func (s *Store) persistUser(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := s.storage.Set(ctx, UserKey, string(data)); err != nil {
		return fmt.Errorf("session: persist user: %w", err)
	}
	return nil
}

func (s *Store) clearPersisted(ctx context.Context) error {
	tokenErr := s.storage.Remove(ctx, TokenKey)
	userErr := s.storage.Remove(ctx, UserKey)
	return errors.Join(tokenErr, userErr)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature. Opaque tokens and
// tokens without exp report ok=false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
