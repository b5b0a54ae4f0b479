package conversation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := km.Lock(ctx, "c1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			n := active.Add(1)
			for {
				cur := maxActive.Load()
				if n <= cur || maxActive.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if maxActive.Load() != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxActive.Load())
	}
	if km.size() != 0 {
		t.Fatalf("expected entries to be cleaned up, have %d", km.size())
	}
}

func TestKeyedMutexDifferentKeysIndependent(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	unlockA, err := km.Lock(ctx, "a")
	if err != nil {
		t.Fatalf("Lock a: %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := km.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("Lock b should not wait on a: %v", err)
	}
	unlockB()
}

func TestKeyedMutexContextTimeout(t *testing.T) {
	km := NewKeyedMutex()
	unlock, _ := km.Lock(context.Background(), "c1")
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := km.Lock(ctx, "c1"); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	unlock()
	unlock()
	if km.size() != 0 {
		t.Fatalf("expected cleanup after timeout and release, have %d", km.size())
	}
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisLockerExcludesSecondHolder(t *testing.T) {
	client, mr := newTestRedis(t)
	locker := NewRedisLocker(client, time.Minute)

	unlock, err := locker.Lock(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if !mr.Exists("conversation:lock:c1") {
		t.Fatal("expected lock key in redis")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "c1"); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout while held, got %v", err)
	}

	unlock()
	if mr.Exists("conversation:lock:c1") {
		t.Fatal("expected lock key released")
	}

	unlock2, err := locker.Lock(context.Background(), "c1")
	if err != nil {
		t.Fatalf("re-Lock: %v", err)
	}
	unlock2()
}

func TestRedisLockerReleaseKeepsForeignToken(t *testing.T) {
	client, mr := newTestRedis(t)
	locker := NewRedisLocker(client, time.Minute)

	unlock, err := locker.Lock(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	// Simulate expiry and another replica taking the lock.
	if err := mr.Set("conversation:lock:c1", "someone-else"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	unlock()

	got, err := mr.Get("conversation:lock:c1")
	if err != nil || got != "someone-else" {
		t.Fatalf("foreign lock should survive release, got %q err=%v", got, err)
	}
}
