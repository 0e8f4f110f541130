package insight

import (
	"context"
	"time"
)

// SuppressionStore keeps per-user dismiss and snooze state. Dismissals are
// permanent; snoozes expire on their own and the insight resurfaces.
type SuppressionStore interface {
	Dismiss(ctx context.Context, userID, insightID string) error
	Snooze(ctx context.Context, userID, insightID string, d time.Duration) error
	Suppressed(ctx context.Context, userID, insightID string) (bool, error)
	// SuppressedSet resolves many ids in one round trip for list filtering.
	SuppressedSet(ctx context.Context, userID string, insightIDs []string) (map[string]bool, error)
}
