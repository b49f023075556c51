package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(base time.Time) (*MemoryStore, *time.Time) {
	now := base
	store := NewMemoryStore()
	store.nowFn = func() time.Time { return now }
	return store, &now
}

func TestMemoryIssueAndVerify(t *testing.T) {
	store, _ := newTestStore(time.Now())
	ctx := context.Background()

	code, errIssue := store.Issue(ctx, "User@Example.com", PurposeSignup)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	if len(code) != CodeLength {
		t.Fatalf("code length = %d, want %d", len(code), CodeLength)
	}

	// Address matching is case-insensitive.
	ok, errVerify := store.Verify(ctx, "user@example.com", code)
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

func TestMemoryRateLimitWindow(t *testing.T) {
	store, now := newTestStore(time.Now())
	ctx := context.Background()

	first, errFirst := store.Issue(ctx, "a@b.c", PurposeSignup)
	if errFirst != nil {
		t.Fatalf("issue: %v", errFirst)
	}
	if _, errSecond := store.Issue(ctx, "a@b.c", PurposeSignup); !errors.Is(errSecond, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", errSecond)
	}

	// The prior code must survive the rejected request.
	ok, _ := store.Verify(ctx, "a@b.c", first)
	if !ok {
		t.Fatalf("original code should still verify after rate-limited reissue")
	}

	*now = now.Add(RateLimitWindow + time.Second)
	if _, errThird := store.Issue(ctx, "a@b.c", PurposeSignup); errThird != nil {
		t.Fatalf("issue after window: %v", errThird)
	}
}

func TestMemoryAttemptLockout(t *testing.T) {
	store, _ := newTestStore(time.Now())
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
	// The correct code fails once the attempt budget is spent, and the
	// lockout consumes the record.
	if ok, _ := store.Verify(ctx, "a@b.c", code); ok {
		t.Fatalf("locked out record must not verify")
	}
	if ok, _ := store.Verify(ctx, "a@b.c", code); ok {
		t.Fatalf("record should be gone after lockout")
	}
}

func TestMemoryExpiry(t *testing.T) {
	store, now := newTestStore(time.Now())
	ctx := context.Background()

	code, errIssue := store.Issue(ctx, "a@b.c", PurposeReset)
	if errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	*now = now.Add(Expiry + time.Second)
	if ok, _ := store.Verify(ctx, "a@b.c", code); ok {
		t.Fatalf("expired code verified")
	}
	if verified, _ := store.IsVerified(ctx, "a@b.c", PurposeReset); verified {
		t.Fatalf("expired record reported verified")
	}
}

func TestMemoryPurposeMismatch(t *testing.T) {
	store, _ := newTestStore(time.Now())
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
	if verified, _ := store.IsVerified(ctx, "a@b.c", PurposeReset); !verified {
		t.Fatalf("matching purpose should report verified")
	}
}

func TestMemoryClearIdempotent(t *testing.T) {
	store, _ := newTestStore(time.Now())
	ctx := context.Background()

	if _, errIssue := store.Issue(ctx, "a@b.c", PurposeSignup); errIssue != nil {
		t.Fatalf("issue: %v", errIssue)
	}
	if errClear := store.Clear(ctx, "a@b.c"); errClear != nil {
		t.Fatalf("clear: %v", errClear)
	}
	if errClear := store.Clear(ctx, "a@b.c"); errClear != nil {
		t.Fatalf("second clear: %v", errClear)
	}
	if verified, _ := store.IsVerified(ctx, "a@b.c", ""); verified {
		t.Fatalf("cleared record reported verified")
	}
}

func TestVerifyUnknownAddress(t *testing.T) {
	store, _ := newTestStore(time.Now())
	if ok, errVerify := store.Verify(context.Background(), "nobody@b.c", "123456"); errVerify != nil || ok {
		t.Fatalf("verify unknown = (%v, %v), want (false, nil)", ok, errVerify)
	}
}

func TestGenerateCodeDigitsOnly(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, errGenerate := GenerateCode(CodeLength)
		if errGenerate != nil {
			t.Fatalf("generate: %v", errGenerate)
		}
		if len(code) != CodeLength {
			t.Fatalf("length = %d, want %d", len(code), CodeLength)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
	}
}
