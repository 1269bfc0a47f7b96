package contract

import (
	"context"

	"voice-intake-be/internal/entity"
)

type JobRepository interface {
	// CreateJobAndQuote writes both records in one transaction so a job
	// never exists without its linked quote.
	CreateJobAndQuote(ctx context.Context, job *entity.Job, quote *entity.Quote) error
}

type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	// FindByCallId returns (nil, nil) when no lead exists for the call.
	FindByCallId(ctx context.Context, callID string) (*entity.Lead, error)
	ListRecent(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Lead, int64, error)
}
