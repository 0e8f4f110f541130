package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// suppressionRedis stores dismissals in a per-user set and snoozes as keys
// with a TTL, so snooze expiry is handled by Redis itself.
type suppressionRedis struct{ client *redis.Client }

func NewSuppressionStoreRedis(client *redis.Client) SuppressionStore {
	return &suppressionRedis{client: client}
}

func dismissedKey(userID string) string { return "insight:dismissed:" + userID }

func snoozeKey(userID, insightID string) string {
	return fmt.Sprintf("insight:snooze:%s:%s", userID, insightID)
}

func (s *suppressionRedis) Dismiss(ctx context.Context, userID, insightID string) error {
	if err := s.client.SAdd(ctx, dismissedKey(userID), insightID).Err(); err != nil {
		return fmt.Errorf("dismiss insight: %w", err)
	}
	return nil
}

func (s *suppressionRedis) Snooze(ctx context.Context, userID, insightID string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("snooze duration must be positive")
	}
	if err := s.client.Set(ctx, snoozeKey(userID, insightID), "1", d).Err(); err != nil {
		return fmt.Errorf("snooze insight: %w", err)
	}
	return nil
}

func (s *suppressionRedis) Suppressed(ctx context.Context, userID, insightID string) (bool, error) {
	dismissed, err := s.client.SIsMember(ctx, dismissedKey(userID), insightID).Result()
	if err != nil {
		return false, fmt.Errorf("check dismissed: %w", err)
	}
	if dismissed {
		return true, nil
	}

	snoozed, err := s.client.Exists(ctx, snoozeKey(userID, insightID)).Result()
	if err != nil {
		return false, fmt.Errorf("check snoozed: %w", err)
	}
	return snoozed > 0, nil
}

func (s *suppressionRedis) SuppressedSet(ctx context.Context, userID string, insightIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(insightIDs))
	if len(insightIDs) == 0 {
		return result, nil
	}

	pipe := s.client.Pipeline()
	dismissCmds := make([]*redis.BoolCmd, len(insightIDs))
	snoozeCmds := make([]*redis.IntCmd, len(insightIDs))
	for i, id := range insightIDs {
		dismissCmds[i] = pipe.SIsMember(ctx, dismissedKey(userID), id)
		snoozeCmds[i] = pipe.Exists(ctx, snoozeKey(userID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("resolve suppression set: %w", err)
	}

	for i, id := range insightIDs {
		result[id] = dismissCmds[i].Val() || snoozeCmds[i].Val() > 0
	}
	return result, nil
}
