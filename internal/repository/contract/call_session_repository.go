package contract

import (
	"context"

	"voice-intake-be/internal/entity"
)

// CallSessionRepository is the durable call session store. Upsert is
// atomic per call id; the single-writer-per-call discipline means only
// the handler owning a call id ever calls Upsert for it.
type CallSessionRepository interface {
	Upsert(ctx context.Context, session *entity.CallSession) error
	Get(ctx context.Context, callID string) (*entity.CallSession, error)
	ListRecent(ctx context.Context, tenantID string, limit, offset int) ([]*entity.CallSession, int64, error)
}
