package dispatcher

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/duitapp/ledger/pkg/logger"
	"github.com/duitapp/ledger/pkg/redis"
)

const idempotencyKeyPrefix = "toolcall:"

// IdempotencyStore deduplicates create-type tool calls by caller-supplied
// key. The stored value is the first outcome, so a replay gets the exact
// response the original got. Keys expire; a replay after the TTL is a
// fresh call, which is the documented contract for keyless creates too.
type IdempotencyStore struct {
	redis redis.RedisAdapter
	ttl   time.Duration
}

func NewIdempotencyStore(redisAdapter redis.RedisAdapter, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{
		redis: redisAdapter,
		ttl:   ttl,
	}
}

func (s *IdempotencyStore) key(userID int64, key string) string {
	return fmt.Sprintf("%s%d:%s", idempotencyKeyPrefix, userID, key)
}

// Lookup returns the outcome recorded for this key, if any.
func (s *IdempotencyStore) Lookup(userID int64, key string) (*Outcome, bool) {
	raw, err := s.redis.Get(s.key(userID, key))
	if err != nil {
		if err != redis.NilError {
			// A flaky store must not block mutations; risk a duplicate instead.
			logger.Warn("idempotency lookup failed", "error", err)
		}
		return nil, false
	}

	var out Outcome
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("idempotency record corrupt, ignoring", "error", err)
		return nil, false
	}
	return &out, true
}

// Store records the outcome of an applied call under its key. SetNX keeps
// the first write: a concurrent duplicate cannot overwrite the answer.
func (s *IdempotencyStore) Store(userID int64, key string, out *Outcome) {
	raw, err := json.Marshal(out)
	if err != nil {
		return
	}
	if _, err := s.redis.SetNX(s.key(userID, key), raw, s.ttl); err != nil {
		logger.Warn("idempotency store failed", "error", err)
	}
}
