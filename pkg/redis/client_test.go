package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeCmdable struct {
	values  map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{
		values:  make(map[string]string),
		counts:  make(map[string]int64),
		expires: make(map[string]time.Duration),
	}
}

func (f *fakeCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, taken := f.values[key]; taken {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.values, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestIncrWithTTLSetsExpiryOnce(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCmdable()
	client := &Client{store: fake}

	count, err := client.IncrWithTTL(ctx, "lcdt:rl:login", time.Minute)
	if err != nil {
		t.Fatalf("IncrWithTTL: %v", err)
	}
	if count != 1 {
		t.Fatalf("first increment returned %d, want 1", count)
	}
	if fake.expires["lcdt:rl:login"] != time.Minute {
		t.Fatalf("expected TTL attached on first increment")
	}

	delete(fake.expires, "lcdt:rl:login")
	count, err = client.IncrWithTTL(ctx, "lcdt:rl:login", time.Minute)
	if err != nil {
		t.Fatalf("IncrWithTTL: %v", err)
	}
	if count != 2 {
		t.Fatalf("second increment returned %d, want 2", count)
	}
	if _, set := fake.expires["lcdt:rl:login"]; set {
		t.Fatal("TTL must not be re-applied on later increments")
	}
}

func TestSetNXClaimsOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newFakeCmdable()}

	claimed, err := client.SetNX(ctx, "lcdt:idempotency:notifier:ev-1", "1", time.Hour)
	if err != nil || !claimed {
		t.Fatalf("first SetNX: claimed=%v err=%v", claimed, err)
	}
	claimed, err = client.SetNX(ctx, "lcdt:idempotency:notifier:ev-1", "1", time.Hour)
	if err != nil {
		t.Fatalf("second SetNX: %v", err)
	}
	if claimed {
		t.Fatal("second SetNX must not claim an existing key")
	}
}

func TestKeyBuildersUseNamespace(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("notifier", "ev-1"); got != "lcdt:idempotency:notifier:ev-1" {
		t.Fatalf("idempotency key %q", got)
	}
	if got := client.AccessSessionKey("abc"); got != "lcdt:session:access:abc" {
		t.Fatalf("session key %q", got)
	}
	// Blank segments collapse instead of producing "a::b".
	if got := client.IdempotencyKey("", "ev-1"); got != "lcdt:idempotency:ev-1" {
		t.Fatalf("key with empty scope %q", got)
	}
}

func TestClientRequiresStore(t *testing.T) {
	client := &Client{}
	if err := client.Set(context.Background(), "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}
