package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	usermodel "AProject/module/user/model"
	errs "AProject/tools/errs"
	security "AProject/tools/security"
)

type fakeAccounts struct {
	byName map[string]*usermodel.User
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*usermodel.User, error) {
	if u, ok := f.byName[username]; ok {
		return u, nil
	}
	return nil, errs.ErrRecordNotFound
}

func (f *fakeAccounts) Create(_ context.Context, username, email, passwordHash, serverDomain string) (*usermodel.User, error) {
	if _, ok := f.byName[username]; ok {
		return nil, errs.ErrRecordIsExist
	}
	u := &usermodel.User{ID: int64(len(f.byName) + 1), Username: username, Email: email,
		Password: passwordHash, ServerDomain: serverDomain, CreatedAt: time.Now()}
	f.byName[username] = u
	return u, nil
}

// memLockout mirrors the redis-backed store without the TTL behavior; the
// window and lock durations are irrelevant at test timescales.
type memLockout struct {
	failures map[string]int64
	locked   map[string]bool
}

func newMemLockout() *memLockout {
	return &memLockout{failures: make(map[string]int64), locked: make(map[string]bool)}
}

func (m *memLockout) IsLocked(_ context.Context, username string) (bool, error) {
	return m.locked[username], nil
}

func (m *memLockout) RecordFailure(_ context.Context, username string, _ time.Duration) (int64, error) {
	m.failures[username]++
	return m.failures[username], nil
}

func (m *memLockout) Lock(_ context.Context, username string, _ time.Duration) error {
	m.locked[username] = true
	return nil
}

func (m *memLockout) Reset(_ context.Context, username string) error {
	delete(m.failures, username)
	delete(m.locked, username)
	return nil
}

func newTestAuth(t *testing.T) (*AuthService, *fakeAccounts, *memLockout) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	accounts := &fakeAccounts{byName: map[string]*usermodel.User{
		"alice": {ID: 1, Username: "alice", Password: string(hash), ServerDomain: "chat.local"},
	}}
	lockout := newMemLockout()
	jwtOpts := security.Options{Secret: []byte("test-secret"), Alg: "HS256", TTL: time.Hour}
	return NewAuthService(accounts, lockout, jwtOpts, "chat.local"), accounts, lockout
}

func TestAuthenticateSuccess(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	resp, err := auth.Authenticate(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}
	if resp.User.ID != 1 || resp.User.Username != "alice" {
		t.Fatalf("user: %+v", resp.User)
	}

	claims, err := security.Verify(security.Options{Secret: []byte("test-secret"), Alg: "HS256"}, resp.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.UserID != 1 || claims.Username != "alice" {
		t.Fatalf("claims: %+v", claims)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	auth, _, lockout := newTestAuth(t)

	_, err := auth.Authenticate(context.Background(), "alice", "wrong")
	if !errs.ErrBadCredentials.Is(err) {
		t.Fatalf("expected bad-credentials error, got %v", err)
	}
	if lockout.failures["alice"] != 1 {
		t.Fatalf("failures=%d, want 1", lockout.failures["alice"])
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	auth, _, lockout := newTestAuth(t)

	_, err := auth.Authenticate(context.Background(), "mallory", "whatever")
	if !errs.ErrBadCredentials.Is(err) {
		t.Fatalf("expected bad-credentials error, got %v", err)
	}
	// Unknown usernames never touch the counters.
	if len(lockout.failures) != 0 {
		t.Fatalf("failures recorded for unknown user: %v", lockout.failures)
	}
}

func TestAuthenticateLocksAfterThreshold(t *testing.T) {
	auth, _, lockout := newTestAuth(t)
	ctx := context.Background()

	for i := 0; i < MaxFailedAttempts; i++ {
		if _, err := auth.Authenticate(ctx, "alice", "wrong"); !errs.ErrBadCredentials.Is(err) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if !lockout.locked["alice"] {
		t.Fatal("account not locked after threshold")
	}

	// Even the correct password is refused while locked.
	_, err := auth.Authenticate(ctx, "alice", "correct horse")
	if !errs.ErrAccountLocked.Is(err) {
		t.Fatalf("expected locked-account error, got %v", err)
	}
}

func TestAuthenticateResetsOnSuccess(t *testing.T) {
	auth, _, lockout := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Authenticate(ctx, "alice", "wrong"); err == nil {
		t.Fatal("expected failure")
	}
	if _, err := auth.Authenticate(ctx, "alice", "correct horse"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if lockout.failures["alice"] != 0 {
		t.Fatalf("failures not reset: %d", lockout.failures["alice"])
	}
}

func TestRegisterHashesPasswordAndStampsDomain(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	u, err := auth.Register(context.Background(), "bob", "bob@chat.local", "sekrit")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Password == "sekrit" || u.Password == "" {
		t.Fatal("password stored in plaintext or empty")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("sekrit")) != nil {
		t.Fatal("stored hash does not match password")
	}
	if u.ServerDomain != "chat.local" {
		t.Fatalf("domain=%q", u.ServerDomain)
	}

	if _, err := auth.Register(context.Background(), "bob", "", "other"); !errs.ErrRecordIsExist.Is(err) {
		t.Fatalf("duplicate register: %v", err)
	}
}
