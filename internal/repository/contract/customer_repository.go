package contract

import (
	"context"

	"voice-intake-be/internal/entity"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	Update(ctx context.Context, customer *entity.Customer) error
	// FindByTenantAndPhone returns (nil, nil) when no match exists.
	FindByTenantAndPhone(ctx context.Context, tenantID, phone string) (*entity.Customer, error)
}

type PropertyRepository interface {
	Create(ctx context.Context, property *entity.Property) error
	// FindByCustomerAndAddress returns (nil, nil) when no match exists.
	FindByCustomerAndAddress(ctx context.Context, customerID uuid.UUID, address string) (*entity.Property, error)
}
