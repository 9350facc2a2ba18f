package redis

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"dice/internal/domain/feed"
)

const dismissalKeyPrefix = "dice:dismissed:"

// DismissalStore keeps each user's dismissed news IDs in a Redis set.
type DismissalStore struct {
	client redis.Cmdable

	// ttl expires a user's set after the last dismissal (0 = never)
	ttl time.Duration
}

var _ feed.DismissalStore = (*DismissalStore)(nil)

// NewDismissalStore creates a store over client.
func NewDismissalStore(client redis.Cmdable, ttl time.Duration) *DismissalStore {
	return &DismissalStore{client: client, ttl: ttl}
}

func dismissalKey(userID string) string {
	return dismissalKeyPrefix + userID
}

// Dismissed returns the dismissed IDs of userID, sorted.
func (s *DismissalStore) Dismissed(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, dismissalKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read dismissals: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// Dismiss adds newsID to the set. SADD makes repeats a no-op.
func (s *DismissalStore) Dismiss(ctx context.Context, userID, newsID string) error {
	key := dismissalKey(userID)
	if s.ttl <= 0 {
		if err := s.client.SAdd(ctx, key, newsID).Err(); err != nil {
			return fmt.Errorf("add dismissal: %w", err)
		}
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, newsID)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("add dismissal: %w", err)
	}
	return nil
}

// Clear deletes the user's set.
func (s *DismissalStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, dismissalKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear dismissals: %w", err)
	}
	return nil
}
