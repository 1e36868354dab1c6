package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matzehuels/stackdiff/pkg/cache"
	"github.com/matzehuels/stackdiff/pkg/crawl"
	"github.com/matzehuels/stackdiff/pkg/deps"
)

// blockingFetcher never answers until its context ends.
var blockingFetcher = deps.FetcherFunc(func(ctx context.Context, name, version string) (deps.Resolution, error) {
	<-ctx.Done()
	return deps.Resolution{}, ctx.Err()
})

func startComparison(t *testing.T) *crawl.Session {
	t.Helper()
	c := crawl.New(cache.New(blockingFetcher, cache.Options{}), crawl.Options{})
	return c.Start(context.Background(), "x", "1", "2")
}

func waitDone(t *testing.T, s *crawl.Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("comparison was not canceled")
	}
}

func TestNew(t *testing.T) {
	sess := New(nil, time.Minute)
	if !ValidID(sess.ID) {
		t.Errorf("ID %q is not a valid session ID", sess.ID)
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != time.Minute {
		t.Errorf("TTL = %v, want 1m", got)
	}
	if New(nil, 0).ExpiresAt.Sub(sess.CreatedAt) < DefaultTTL-time.Second {
		t.Error("zero TTL should fall back to DefaultTTL")
	}
	if New(nil, time.Minute).ID == sess.ID {
		t.Error("session IDs should be unique")
	}
}

func TestValidID(t *testing.T) {
	if ValidID("not-a-uuid") || ValidID("") {
		t.Error("ValidID accepted garbage")
	}
}

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	comparison := startComparison(t)
	sess := New(comparison, time.Hour)

	if err := store.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != sess {
		t.Error("Get returned a different session")
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	waitDone(t, comparison)
	if !comparison.Stopped() {
		t.Error("deleted session's comparison should be stopped")
	}

	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	comparison := startComparison(t)
	sess := New(comparison, time.Minute)
	store.Set(ctx, sess)

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrExpired) {
		t.Fatalf("Get = %v, want ErrExpired", err)
	}
	waitDone(t, comparison)
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	old := startComparison(t)
	fresh := startComparison(t)
	oldSess := New(old, time.Minute)
	freshSess := New(fresh, time.Hour)
	store.Set(ctx, oldSess)
	store.Set(ctx, freshSess)

	now = now.Add(10 * time.Minute)
	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}

	waitDone(t, old)
	if fresh.Stopped() {
		t.Error("fresh comparison should keep running")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
	if _, err := store.Get(ctx, freshSess.ID); err != nil {
		t.Errorf("fresh session: %v", err)
	}
	fresh.Cancel()
}

func TestRunCleanupStopsWithContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunCleanup(ctx, time.Millisecond, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}
