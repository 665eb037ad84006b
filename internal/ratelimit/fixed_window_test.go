package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestLimiterBlocksAboveLimit(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := New(redis.Addr(), "", "test:ratelimit", 2, time.Second)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if !limiter.Allow("ip-1") {
		t.Fatal("first request should pass")
	}
	if !limiter.Allow("ip-1") {
		t.Fatal("second request should pass")
	}
	if limiter.Allow("ip-1") {
		t.Fatal("third request should be blocked")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := New(redis.Addr(), "", "test:ratelimit", 1, time.Second)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if !limiter.Allow("ip-1") {
		t.Fatal("ip-1 first request should pass")
	}
	if !limiter.Allow("ip-2") {
		t.Fatal("ip-2 must not be throttled by ip-1 traffic")
	}
	if limiter.Allow("ip-1") {
		t.Fatal("ip-1 second request should be blocked")
	}
}

func TestLimiterFailsClosedOnRedisError(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := New(redis.Addr(), "", "test:ratelimit", 1, time.Second)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	redis.Close()
	if limiter.Allow("ip-1") {
		t.Fatal("limiter should fail closed on redis errors")
	}
}

func TestLimiterRequiresRedisAddr(t *testing.T) {
	if _, err := New("", "", "test:ratelimit", 1, time.Second); err == nil {
		t.Fatal("expected constructor error for empty redis addr")
	}
}
