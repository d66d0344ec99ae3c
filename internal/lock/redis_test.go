package lock

import (
	"context"
	"os"
	"testing"
	"time"
)

// Runs against a real server when TEST_REDIS_ADDR is set.
func TestRedisLock(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()

	a, err := NewRedisLock(addr)
	if err != nil {
		t.Fatalf("NewRedisLock() error = %v", err)
	}
	defer a.Close()

	b, err := NewRedisLock(addr)
	if err != nil {
		t.Fatalf("NewRedisLock() error = %v", err)
	}
	defer b.Close()

	key := "test:" + time.Now().Format(time.RFC3339Nano)

	if ok, err := a.Lock(ctx, key, 5*time.Second); err != nil || !ok {
		t.Fatalf("a.Lock() = %v, %v, want true", ok, err)
	}
	if ok, err := b.Lock(ctx, key, 5*time.Second); err != nil || ok {
		t.Fatalf("b.Lock() = %v, %v, want false while a holds it", ok, err)
	}

	// b never held the key, so its unlock must not release a's lock
	if err := b.Unlock(ctx, key); err != nil {
		t.Fatalf("b.Unlock() error = %v", err)
	}
	if ok, _ := b.Lock(ctx, key, 5*time.Second); ok {
		t.Fatal("b.Lock() succeeded after a foreign unlock")
	}

	if err := a.Unlock(ctx, key); err != nil {
		t.Fatalf("a.Unlock() error = %v", err)
	}
	if ok, err := b.Lock(ctx, key, 5*time.Second); err != nil || !ok {
		t.Fatalf("b.Lock() after release = %v, %v, want true", ok, err)
	}
	_ = b.Unlock(ctx, key)
}

func TestNewToken(t *testing.T) {
	a, err := newToken()
	if err != nil {
		t.Fatalf("newToken() error = %v", err)
	}
	b, _ := newToken()
	if a == "" || a == b {
		t.Errorf("newToken() = %q, %q, want distinct non-empty tokens", a, b)
	}
}
