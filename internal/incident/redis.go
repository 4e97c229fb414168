package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStream appends incidents to a Redis stream so review tooling can
// consume them with consumer groups.
type RedisStream struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisStream creates a stream writer. maxLen caps the stream
// approximately; zero leaves it unbounded.
func NewRedisStream(client redis.Cmdable, stream string, maxLen int64) *RedisStream {
	if stream == "" {
		stream = "sentinel:incidents"
	}
	return &RedisStream{client: client, stream: stream, maxLen: maxLen}
}

// WriteBatch pipelines one XADD per record.
func (s *RedisStream) WriteBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, r := range records {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: s.stream,
			MaxLen: s.maxLen,
			Approx: s.maxLen > 0,
			Values: streamValues(r),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending incidents to %s: %w", s.stream, err)
	}
	return nil
}

func streamValues(r Record) map[string]any {
	userID := ""
	if r.UserID != nil {
		userID = *r.UserID
	}
	return map[string]any{
		"id":           r.ID.String(),
		"timestamp":    r.Timestamp.UTC().Format(time.RFC3339Nano),
		"category":     r.Category,
		"severity":     r.Severity,
		"outcome":      r.Outcome,
		"input_digest": r.InputDigest,
		"excerpt":      r.Excerpt,
		"user_id":      userID,
		"confidence":   r.Confidence,
		"detail":       r.Detail,
	}
}
