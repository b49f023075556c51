package security

import (
	"errors"
	"testing"
	"time"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, errHash := HashPassword("s3cret-pass")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if hash == "s3cret-pass" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !CheckPassword("s3cret-pass", hash) {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword("wrong-pass", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, errFirst := HashPassword("same-input")
	if errFirst != nil {
		t.Fatalf("hash password: %v", errFirst)
	}
	second, errSecond := HashPassword("same-input")
	if errSecond != nil {
		t.Fatalf("hash password: %v", errSecond)
	}
	if first == second {
		t.Fatalf("expected distinct hashes for the same input")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must never verify")
	}
}

func TestIssueAndParseToken(t *testing.T) {
	token, errIssue := IssueToken("test-secret", 42, ClassAccess, time.Hour)
	if errIssue != nil {
		t.Fatalf("issue token: %v", errIssue)
	}

	claims, errParse := ParseToken("test-secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.Class != ClassAccess {
		t.Fatalf("class = %q, want %q", claims.Class, ClassAccess)
	}
	id, errID := claims.AccountID()
	if errID != nil {
		t.Fatalf("account id: %v", errID)
	}
	if id != 42 {
		t.Fatalf("account id = %d, want 42", id)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, errIssue := IssueToken("test-secret", 1, ClassSession, time.Hour)
	if errIssue != nil {
		t.Fatalf("issue token: %v", errIssue)
	}
	if _, errParse := ParseToken("other-secret", token); !errors.Is(errParse, ErrTokenMalformed) {
		t.Fatalf("err = %v, want ErrTokenMalformed", errParse)
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, errIssue := IssueToken("test-secret", 1, ClassAccess, time.Millisecond)
	if errIssue != nil {
		t.Fatalf("issue token: %v", errIssue)
	}
	time.Sleep(5 * time.Millisecond)
	if _, errParse := ParseToken("test-secret", token); !errors.Is(errParse, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", errParse)
	}
}

func TestParseClassTokenRejectsWrongClass(t *testing.T) {
	token, errIssue := IssueToken("test-secret", 7, ClassRefresh, time.Hour)
	if errIssue != nil {
		t.Fatalf("issue token: %v", errIssue)
	}
	if _, errParse := ParseClassToken("test-secret", token, ClassAccess); !errors.Is(errParse, ErrWrongClass) {
		t.Fatalf("err = %v, want ErrWrongClass", errParse)
	}
	if _, errParse := ParseClassToken("test-secret", token, ClassRefresh); errParse != nil {
		t.Fatalf("expected matching class to parse, got %v", errParse)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, errParse := ParseToken("test-secret", "not.a.jwt"); !errors.Is(errParse, ErrTokenMalformed) {
		t.Fatalf("err = %v, want ErrTokenMalformed", errParse)
	}
}
