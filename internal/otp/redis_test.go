package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Now()
	store := NewRedisStore(client, "test:otp")
	store.nowFn = func() time.Time { return now }
	return store, mr, &now
}

func TestRedisIssueAndVerify(t *testing.T) {
	store, _, _ := newRedisTestStore(t)
	ctx := context.Background()

	code, errIssue := store.Issue(ctx, "user@example.com", PurposeSignup)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	ok, errVerify := store.Verify(ctx, "User@Example.com", code)
	if errVerify != nil {
		t.Fatalf("verify: %v", errVerify)
	}
	if !ok {
		t.Fatalf("expected code to verify")
	}
	verified, errCheck := store.IsVerified(ctx, "user@example.com", PurposeSignup)
	if errCheck != nil {
		t.Fatalf("is verified: %v", errCheck)
	}
	if !verified {
		t.Fatalf("record should stay verified until cleared")
	}
}

func TestRedisRateLimitWindow(t *testing.T) {
	store, _, now := newRedisTestStore(t)
	ctx := context.Background()

	if _, errIssue := store.Issue(ctx, "a@b.c", PurposeSignup); errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	if _, errSecond := store.Issue(ctx, "a@b.c", PurposeSignup); !errors.Is(errSecond, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", errSecond)
	}

	*now = now.Add(RateLimitWindow + time.Second)
	if _, errThird := store.Issue(ctx, "a@b.c", PurposeSignup); errThird != nil {
		t.Fatalf("issue after window: %v", errThird)
	}
}

func TestRedisAttemptLockout(t *testing.T) {
	store, _, _ := newRedisTestStore(t)
	ctx := context.Background()

	code, errIssue := store.Issue(ctx, "a@b.c", PurposeSignup)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	for i := 0; i < MaxAttempts; i++ {
		if ok, _ := store.Verify(ctx, "a@b.c", "000000"); ok {
			t.Fatalf("wrong code verified")
		}
	}
	if ok, _ := store.Verify(ctx, "a@b.c", code); ok {
		t.Fatalf("locked out record must not verify")
	}
	if verified, _ := store.IsVerified(ctx, "a@b.c", ""); verified {
		t.Fatalf("record should be gone after lockout")
	}
}

func TestRedisExpiryViaTTL(t *testing.T) {
	store, mr, _ := newRedisTestStore(t)
	ctx := context.Background()

	code, errIssue := store.Issue(ctx, "a@b.c", PurposeReset)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	mr.FastForward(Expiry + time.Second)
	if ok, _ := store.Verify(ctx, "a@b.c", code); ok {
		t.Fatalf("expired code verified")
	}
}

func TestRedisPurposeMismatch(t *testing.T) {
	store, _, _ := newRedisTestStore(t)
	ctx := context.Background()

	code, errIssue := store.Issue(ctx, "a@b.c", PurposeReset)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	if ok, _ := store.Verify(ctx, "a@b.c", code); !ok {
		t.Fatalf("verify: expected match")
	}
	if verified, _ := store.IsVerified(ctx, "a@b.c", PurposeSignup); verified {
		t.Fatalf("verified must not cross purposes")
	}
}

func TestRedisClear(t *testing.T) {
	store, _, _ := newRedisTestStore(t)
	ctx := context.Background()

	code, errIssue := store.Issue(ctx, "a@b.c", PurposeSignup)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	if ok, _ := store.Verify(ctx, "a@b.c", code); !ok {
		t.Fatalf("verify: expected match")
	}
	if errClear := store.Clear(ctx, "a@b.c"); errClear != nil {
		t.Fatalf("clear: %v", errClear)
	}
	if verified, _ := store.IsVerified(ctx, "a@b.c", ""); verified {
		t.Fatalf("cleared record reported verified")
	}
	if errClear := store.Clear(ctx, "a@b.c"); errClear != nil {
		t.Fatalf("second clear: %v", errClear)
	}
}
