package contract

import (
	"context"

	"voice-intake-be/internal/entity"
)

type TenantRepository interface {
	// FindById returns (nil, nil) when the tenant does not exist.
	FindById(ctx context.Context, id string) (*entity.Tenant, error)
}
