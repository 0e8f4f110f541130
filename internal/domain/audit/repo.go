package audit

import "context"

// Recorder is the append-only audit store. There is deliberately no update
// or delete.
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
	History(ctx context.Context, clinicID string, limit, offset int) ([]*Entry, error)
	CountByClinic(ctx context.Context, clinicID string) (int, error)
}
