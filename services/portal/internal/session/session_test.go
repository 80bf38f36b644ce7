package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"fieldbook/services/portal/internal/clients"
	"fieldbook/services/portal/internal/models"
	"fieldbook/services/portal/internal/storage"
)

type fakeAuth struct {
	mu          sync.Mutex
	users       map[string]models.User // token -> user
	passwords   map[string]string      // email -> password
	meErr       error
	loginCalls  int
	meCalls     int
	profileReqs []models.UserUpdateRequest
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		users:     map[string]models.User{},
		passwords: map[string]string{"a@b.com": "secret"},
	}
}

func (f *fakeAuth) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.passwords[req.Email] != req.Password {
		return nil, &clients.APIError{Service: clients.ServiceAuth, StatusCode: http.StatusUnauthorized, Detail: "Incorrect email or password"}
	}
	token := "token-for-" + req.Email
	f.users[token] = models.User{ID: 7, Username: "ana", Email: req.Email, IsActive: true}
	return &models.LoginResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Email == "taken@b.com" {
		return nil, &clients.APIError{StatusCode: http.StatusBadRequest, Detail: "Email already registered"}
	}
	return &models.User{ID: 9, Username: req.Username, Email: req.Email, IsActive: true}, nil
}

func (f *fakeAuth) CurrentUser(_ context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	user, ok := f.users[token]
	if !ok {
		return nil, &clients.APIError{StatusCode: http.StatusUnauthorized, Detail: "Could not validate credentials"}
	}
	return &user, nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, req models.UserUpdateRequest, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[token]; !ok {
		return nil, &clients.APIError{StatusCode: http.StatusUnauthorized, Detail: "Could not validate credentials"}
	}
	f.profileReqs = append(f.profileReqs, req)
	user := f.users[token]
	return &user, nil
}

func (f *fakeAuth) RecoverPassword(_ context.Context, email string) (*models.Message, error) {
	if email == "" {
		return nil, &clients.APIError{StatusCode: http.StatusUnprocessableEntity}
	}
	return &models.Message{Message: "sent"}, nil
}

type failingStorage struct {
	storage.Storage
	failKey string
}

func (f *failingStorage) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Storage.Set(ctx, key, value)
}

func TestLoginPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuth()
	st := storage.NewMemoryStore()

	s := NewStore(auth, st, zap.NewNop())
	if !s.Login(ctx, "a@b.com", "secret") {
		t.Fatalf("login failed: %s", s.Err())
	}
	if s.Token() != "token-for-a@b.com" {
		t.Fatalf("unexpected token %q", s.Token())
	}
	user, ok := s.User()
	if !ok || user.Email != "a@b.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	reloaded := NewStore(auth, st, zap.NewNop())
	if err := reloaded.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, ok := reloaded.User()
	if !ok {
		t.Fatalf("expected restored session")
	}
	if got != user {
		t.Fatalf("restored user differs: %+v vs %+v", got, user)
	}
	if reloaded.Token() != s.Token() {
		t.Fatalf("restored token differs")
	}
}

func TestLoginFailureKeepsErrorAndSession(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuth()
	st := storage.NewMemoryStore()
	s := NewStore(auth, st, nil)

	if !s.Login(ctx, "a@b.com", "secret") {
		t.Fatalf("first login failed")
	}
	if s.Login(ctx, "a@b.com", "wrong") {
		t.Fatalf("expected failure")
	}
	if s.Err() != "Incorrect email or password" {
		t.Fatalf("unexpected error %q", s.Err())
	}
	if s.Token() != "token-for-a@b.com" || !s.IsAuthenticated() {
		t.Fatalf("failed login must not touch the existing session")
	}
	if v, _, _ := st.Get(ctx, TokenKey); v != "token-for-a@b.com" {
		t.Fatalf("persisted token changed: %q", v)
	}

	s.ClearError()
	if s.Err() != "" {
		t.Fatalf("error not cleared")
	}
}

func TestLoginStorageFailureRollsBackToken(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	s := NewStore(newFakeAuth(), &failingStorage{Storage: mem, failKey: UserKey}, nil)

	if s.Login(ctx, "a@b.com", "secret") {
		t.Fatalf("expected failure")
	}
	if _, ok, _ := mem.Get(ctx, TokenKey); ok {
		t.Fatalf("token must not be persisted without user")
	}
	if s.IsAuthenticated() {
		t.Fatalf("session must stay anonymous")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := NewStore(newFakeAuth(), st, nil)
	s.Login(ctx, "a@b.com", "secret")

	s.Logout(ctx)
	if s.IsAuthenticated() || s.Token() != "" {
		t.Fatalf("in-memory session not cleared")
	}
	for _, key := range []string{TokenKey, UserKey} {
		if _, ok, _ := st.Get(ctx, key); ok {
			t.Fatalf("persisted %s not cleared", key)
		}
	}

	reloaded := NewStore(newFakeAuth(), st, nil)
	if err := reloaded.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if reloaded.IsAuthenticated() {
		t.Fatalf("no session expected after logout")
	}
}

func TestSignupDoesNotAuthenticate(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := NewStore(newFakeAuth(), st, nil)

	if !s.Signup(ctx, "new@b.com", "pw", "newbie") {
		t.Fatalf("signup failed: %s", s.Err())
	}
	if s.IsAuthenticated() || s.Token() != "" {
		t.Fatalf("signup must not authenticate")
	}
	reg, ok := s.Registered()
	if !ok || reg.Username != "newbie" {
		t.Fatalf("unexpected registered user %+v", reg)
	}
	if _, ok, _ := st.Get(ctx, UserKey); ok {
		t.Fatalf("signup must not persist a user without a token")
	}

	if s.Signup(ctx, "taken@b.com", "pw", "x") {
		t.Fatalf("expected duplicate signup to fail")
	}
	if s.Err() != "Email already registered" {
		t.Fatalf("unexpected error %q", s.Err())
	}
}

func TestUpdateUserMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := NewStore(newFakeAuth(), st, nil)

	name := "ana-maria"
	if s.UpdateUser(ctx, UserPatch{Username: &name}) {
		t.Fatalf("update without session must be a no-op")
	}

	s.Login(ctx, "a@b.com", "secret")
	if !s.UpdateUser(ctx, UserPatch{Username: &name}) {
		t.Fatalf("update failed: %s", s.Err())
	}
	user, _ := s.User()
	if user.Username != name || user.Email != "a@b.com" {
		t.Fatalf("unexpected merge result %+v", user)
	}

	reloaded := NewStore(newFakeAuth(), st, nil)
	_ = reloaded.Restore(ctx)
	if got, _ := reloaded.User(); got.Username != name {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestRestoreCorruptUserClearsStorage(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	_ = st.Set(ctx, TokenKey, "tok")
	_ = st.Set(ctx, UserKey, "{not json")

	s := NewStore(newFakeAuth(), st, nil)
	if err := s.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.IsAuthenticated() {
		t.Fatalf("corrupt session must not restore")
	}
	if _, ok, _ := st.Get(ctx, TokenKey); ok {
		t.Fatalf("corrupt session must be cleared")
	}
}

func TestRestoreRequiresTokenAndUser(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	_ = st.Set(ctx, UserKey, `{"id":1,"email":"a@b.com"}`)

	s := NewStore(newFakeAuth(), st, nil)
	_ = s.Restore(ctx)
	if s.IsAuthenticated() {
		t.Fatalf("user without token must not restore")
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7", "exp": exp.Unix()})
	signed, err := token.SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestRestoreExpiryPolicy(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	user := `{"id":7,"email":"a@b.com"}`

	cases := []struct {
		name    string
		token   string
		restore bool
	}{
		{name: "expired", token: signedToken(t, now.Add(-time.Minute)), restore: false},
		{name: "valid", token: signedToken(t, now.Add(time.Hour)), restore: true},
		{name: "opaque", token: "opaque-token", restore: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := storage.NewMemoryStore()
			_ = st.Set(ctx, TokenKey, tc.token)
			_ = st.Set(ctx, UserKey, user)

			s := NewStore(newFakeAuth(), st, nil, WithRestorePolicy(RestoreExpiry), WithClock(func() time.Time { return now }))
			if err := s.Restore(ctx); err != nil {
				t.Fatalf("restore: %v", err)
			}
			if s.IsAuthenticated() != tc.restore {
				t.Fatalf("authenticated=%v want %v", s.IsAuthenticated(), tc.restore)
			}
		})
	}
}

func TestRestoreRevalidatePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes user", func(t *testing.T) {
		auth := newFakeAuth()
		auth.users["tok"] = models.User{ID: 7, Email: "a@b.com", Username: "fresh", IsAdmin: true}
		st := storage.NewMemoryStore()
		_ = st.Set(ctx, TokenKey, "tok")
		_ = st.Set(ctx, UserKey, `{"id":7,"email":"a@b.com","username":"stale"}`)

		s := NewStore(auth, st, nil, WithRestorePolicy(RestoreRevalidate))
		_ = s.Restore(ctx)
		user, ok := s.User()
		if !ok || user.Username != "fresh" || !user.IsAdmin {
			t.Fatalf("expected refreshed user, got %+v", user)
		}
	})

	t.Run("rejected token clears", func(t *testing.T) {
		st := storage.NewMemoryStore()
		_ = st.Set(ctx, TokenKey, "revoked")
		_ = st.Set(ctx, UserKey, `{"id":7}`)

		s := NewStore(newFakeAuth(), st, nil, WithRestorePolicy(RestoreRevalidate))
		_ = s.Restore(ctx)
		if s.IsAuthenticated() {
			t.Fatalf("rejected token must not restore")
		}
		if _, ok, _ := st.Get(ctx, UserKey); ok {
			t.Fatalf("rejected session must be cleared")
		}
	})

	t.Run("network failure keeps optimistic state", func(t *testing.T) {
		auth := newFakeAuth()
		auth.meErr = &clients.TransportError{Service: clients.ServiceAuth, Err: errors.New("connection refused")}
		st := storage.NewMemoryStore()
		_ = st.Set(ctx, TokenKey, "tok")
		_ = st.Set(ctx, UserKey, `{"id":7}`)

		s := NewStore(auth, st, nil, WithRestorePolicy(RestoreRevalidate))
		_ = s.Restore(ctx)
		if !s.IsAuthenticated() {
			t.Fatalf("transport failure should keep the session")
		}
	})
}

func TestFailedCallDoesNotMutateSession(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuth()
	s := NewStore(auth, storage.NewMemoryStore(), nil)
	s.Login(ctx, "a@b.com", "secret")
	before := s.Snapshot()

	if _, err := auth.CurrentUser(ctx, "expired-token"); err == nil {
		t.Fatalf("expected error for unknown token")
	}
	after := s.Snapshot()
	if after.Token != before.Token || *after.User != *before.User {
		t.Fatalf("session mutated by unrelated failure")
	}
}

func TestChangePasswordAndReset(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuth()
	s := NewStore(auth, storage.NewMemoryStore(), nil)

	if s.ChangePassword(ctx, "secret", "new") {
		t.Fatalf("change password without session must fail")
	}
	if s.Err() != msgNoSession {
		t.Fatalf("unexpected error %q", s.Err())
	}

	s.Login(ctx, "a@b.com", "secret")
	if s.ChangePassword(ctx, "secret", "secret") {
		t.Fatalf("same password must be rejected")
	}
	if !s.ChangePassword(ctx, "secret", "n3w") {
		t.Fatalf("change password failed: %s", s.Err())
	}
	if len(auth.profileReqs) != 1 || *auth.profileReqs[0].Password != "n3w" {
		t.Fatalf("unexpected profile requests %+v", auth.profileReqs)
	}

	if !s.ResetPassword(ctx, "a@b.com") {
		t.Fatalf("reset failed: %s", s.Err())
	}
	if s.ResetPassword(ctx, "") {
		t.Fatalf("expected reset failure")
	}
	if s.Err() != "HTTP error! status: 422" {
		t.Fatalf("unexpected error %q", s.Err())
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeAuth(), storage.NewMemoryStore(), nil)

	var mu sync.Mutex
	var seen []Snapshot
	cancel := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap)
		mu.Unlock()
	})

	s.Login(ctx, "a@b.com", "secret")
	s.Logout(ctx)
	cancel()
	s.Login(ctx, "a@b.com", "secret")

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if !seen[0].Authenticated || seen[1].Authenticated {
		t.Fatalf("unexpected notification sequence %+v", seen)
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeAuth(), storage.NewMemoryStore(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Login(ctx, "a@b.com", "secret")
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			_ = s.IsAuthenticated()
		}()
	}
	wg.Wait()
	if !s.IsAuthenticated() {
		t.Fatalf("expected authenticated session")
	}
}

func TestParseRestorePolicy(t *testing.T) {
	if p, err := ParseRestorePolicy(""); err != nil || p != RestoreOptimistic {
		t.Fatalf("empty should be optimistic")
	}
	if p, err := ParseRestorePolicy("Revalidate"); err != nil || p != RestoreRevalidate {
		t.Fatalf("unexpected policy %q %v", p, err)
	}
	if _, err := ParseRestorePolicy("never"); err == nil {
		t.Fatalf("expected error")
	}
}
