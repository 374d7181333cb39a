package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/duitapp/ledger/pkg/redis"
)

// OutboxSink hands digests to an external bot process through a redis
// stream. Publishing is the delivery from this side's point of view; the
// consumer owns retries. The stream is capped so a stalled consumer
// cannot grow it without bound.
type OutboxSink struct {
	redis  redis.RedisAdapter
	stream string
	maxLen int64
}

func NewOutboxSink(redisAdapter redis.RedisAdapter, stream string, maxLen int64) *OutboxSink {
	if maxLen <= 0 {
		maxLen = 100_000
	}
	return &OutboxSink{
		redis:  redisAdapter,
		stream: stream,
		maxLen: maxLen,
	}
}

func (s *OutboxSink) Deliver(ctx context.Context, chatID int64, text string) error {
	_, err := s.redis.XAdd(s.stream, map[string]interface{}{
		"message_id": uuid.New().String(),
		"chat_id":    strconv.FormatInt(chatID, 10),
		"text":       text,
	})
	if err != nil {
		return fmt.Errorf("outbox publish failed: %w", err)
	}

	return s.redis.XTrimApprox(s.stream, s.maxLen)
}
