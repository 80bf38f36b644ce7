package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "fieldbook/libs/db"
)

// exerciseStorage runs the localStorage contract against any backend.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "auth_token"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "auth_token", "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "auth_token", "tok-2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := s.Set(ctx, "user_data", `{"id":1}`); err != nil {
		t.Fatalf("set user: %v", err)
	}
	v, ok, err := s.Get(ctx, "auth_token")
	if err != nil || !ok || v != "tok-2" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", v, ok, err)
	}
	if err := s.Remove(ctx, "auth_token"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "auth_token"); err != nil {
		t.Fatalf("remove missing key: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "auth_token"); ok {
		t.Fatalf("key should be gone")
	}
	if v, ok, _ := s.Get(ctx, "user_data"); !ok || v != `{"id":1}` {
		t.Fatalf("unrelated key lost: %q", v)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStorage(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	exerciseStorage(t, NewFileStore(path, "default"))

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestFileStoreProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.yaml")
	alice := NewFileStore(path, "alice")
	bob := NewFileStore(path, "bob")

	if err := alice.Set(ctx, "auth_token", "a"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := bob.Get(ctx, "auth_token"); ok {
		t.Fatalf("bob must not see alice's token")
	}
	if err := bob.Set(ctx, "auth_token", "b"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _, _ := alice.Get(ctx, "auth_token"); v != "a" {
		t.Fatalf("alice token overwritten: %q", v)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("profiles: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := NewFileStore(path, "default").Get(context.Background(), "auth_token"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, "default", time.Hour)
	exerciseStorage(t, store)

	if !mr.Exists("fieldbook:session:default:user_data") {
		t.Fatalf("expected namespaced key in redis")
	}
	mr.FastForward(2 * time.Hour)
	if _, ok, _ := store.Get(context.Background(), "user_data"); ok {
		t.Fatalf("value should expire after ttl")
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	sqlDB, err := libdb.NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	store, err := NewSQLStore(context.Background(), sqlDB, libdb.DriverSQLite, "default")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	exerciseStorage(t, store)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("FIELDBOOK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FIELDBOOK_TEST_POSTGRES_DSN not set")
	}
	s, closeFn, err := Open(context.Background(), Config{Driver: DriverPostgres, DSN: dsn, Profile: "test-" + time.Now().Format("150405.000")}, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { closeFn() })
	exerciseStorage(t, s)
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := Open(ctx, Config{Driver: "memory"}, nil)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", s)
	}
	_ = closeFn()

	path := filepath.Join(t.TempDir(), "s.yaml")
	s, _, err = Open(ctx, Config{Driver: "file", Path: path}, nil)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	if fs, ok := s.(*FileStore); !ok || fs.Path() != path {
		t.Fatalf("expected file store at %s, got %T", path, s)
	}

	s, closeFn, err = Open(ctx, Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "s.db")}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, ok := s.(*SQLStore); !ok {
		t.Fatalf("expected sql store, got %T", s)
	}
	_ = closeFn()

	if _, _, err := Open(ctx, Config{Driver: "etcd"}, nil); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestRebind(t *testing.T) {
	s := &SQLStore{driver: libdb.DriverSQLite}
	got := s.rebind(`SELECT a FROM t WHERE x = $1 AND y = $12 AND z = '$'`)
	want := `SELECT a FROM t WHERE x = ? AND y = ? AND z = '$'`
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
	pg := &SQLStore{driver: libdb.DriverPostgres}
	if q := pg.rebind("x = $1"); q != "x = $1" {
		t.Fatalf("postgres query must be untouched: %s", q)
	}
}
