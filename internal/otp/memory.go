package otp

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory OTP store. Suitable for a single
// instance; use RedisStore for multi-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
	nowFn   func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		nowFn:   time.Now,
	}
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Issue implements Store.
func (s *MemoryStore) Issue(_ context.Context, address, purpose string) (string, error) {
	key := normalizeAddress(address)
	now := s.nowFn().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if prior, ok := s.records[key]; ok {
		if now.Sub(prior.LastRequestAt) < RateLimitWindow {
			return "", ErrRateLimited
		}
	}

	code, errGenerate := GenerateCode(CodeLength)
	if errGenerate != nil {
		return "", errGenerate
	}
	s.records[key] = &Record{
		CodeHash:      HashCode(code, key),
		Purpose:       purpose,
		ExpiresAt:     now.Add(Expiry),
		LastRequestAt: now,
	}
	return code, nil
}

// Verify implements Store. Fails closed when no record exists.
func (s *MemoryStore) Verify(_ context.Context, address, code string) (bool, error) {
	key := normalizeAddress(address)
	now := s.nowFn().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return false, nil
	}
	if now.After(record.ExpiresAt) {
		delete(s.records, key)
		return false, nil
	}
	if record.Attempts >= MaxAttempts {
		delete(s.records, key)
		return false, nil
	}
	record.Attempts++
	if !hashEqual(HashCode(code, key), record.CodeHash) {
		return false, nil
	}
	record.Verified = true
	return true, nil
}

// IsVerified implements Store.
func (s *MemoryStore) IsVerified(_ context.Context, address, purpose string) (bool, error) {
	key := normalizeAddress(address)
	now := s.nowFn().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return false, nil
	}
	if now.After(record.ExpiresAt) {
		delete(s.records, key)
		return false, nil
	}
	if purpose != "" && record.Purpose != purpose {
		return false, nil
	}
	return record.Verified, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context, address string) error {
	key := normalizeAddress(address)
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}
