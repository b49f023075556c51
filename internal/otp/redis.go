package otp

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// issueScript atomically enforces the rate limit window and writes the new
// record. Returns 0 when the prior record is still inside the window.
var issueScript = redis.NewScript(`
local last = redis.call("HGET", KEYS[1], "last_request_at")
if last and (tonumber(ARGV[1]) - tonumber(last)) < tonumber(ARGV[2]) then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("HSET", KEYS[1],
  "code_hash", ARGV[3],
  "purpose", ARGV[4],
  "verified", "0",
  "attempts", "0",
  "last_request_at", ARGV[1])
redis.call("EXPIRE", KEYS[1], ARGV[5])
return 1
`)

// verifyScript atomically applies attempt accounting and hash comparison.
// Returns: -1 no record, -2 locked out (record deleted), 0 mismatch, 1 match.
var verifyScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
local attempts = tonumber(redis.call("HGET", KEYS[1], "attempts") or "0")
if attempts >= tonumber(ARGV[2]) then
  redis.call("DEL", KEYS[1])
  return -2
end
redis.call("HINCRBY", KEYS[1], "attempts", 1)
if redis.call("HGET", KEYS[1], "code_hash") == ARGV[1] then
  redis.call("HSET", KEYS[1], "verified", "1")
  return 1
end
return 0
`)

// RedisStore is a Redis-backed OTP store. Record expiry rides on the key TTL,
// so a missing key and an expired record are the same case.
type RedisStore struct {
	client *redis.Client
	prefix string
	nowFn  func() time.Time
}

// NewRedisStore constructs a RedisStore with the given key prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "gambit:otp"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		nowFn:  time.Now,
	}
}

func (s *RedisStore) key(address string) string {
	return s.prefix + ":" + normalizeAddress(address)
}

// Issue implements Store.
func (s *RedisStore) Issue(ctx context.Context, address, purpose string) (string, error) {
	key := s.key(address)
	now := s.nowFn().UTC()

	code, errGenerate := GenerateCode(CodeLength)
	if errGenerate != nil {
		return "", errGenerate
	}
	res, errEval := issueScript.Run(ctx, s.client, []string{key},
		now.Unix(),
		int(RateLimitWindow.Seconds()),
		HashCode(code, address),
		purpose,
		int(Expiry.Seconds()),
	).Int64()
	if errEval != nil {
		return "", errEval
	}
	if res == 0 {
		return "", ErrRateLimited
	}
	return code, nil
}

// Verify implements Store.
func (s *RedisStore) Verify(ctx context.Context, address, code string) (bool, error) {
	res, errEval := verifyScript.Run(ctx, s.client, []string{s.key(address)},
		HashCode(code, address),
		MaxAttempts,
	).Int64()
	if errEval != nil {
		return false, errEval
	}
	return res == 1, nil
}

// IsVerified implements Store.
func (s *RedisStore) IsVerified(ctx context.Context, address, purpose string) (bool, error) {
	values, errGet := s.client.HMGet(ctx, s.key(address), "verified", "purpose").Result()
	if errGet != nil {
		return false, errGet
	}
	verified, _ := values[0].(string)
	if verified != "1" {
		return false, nil
	}
	if purpose != "" {
		stored, _ := values[1].(string)
		if stored != purpose {
			return false, nil
		}
	}
	return true, nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context, address string) error {
	return s.client.Del(ctx, s.key(address)).Err()
}
