package entity

import (
	"time"

	"github.com/google/uuid"
)

// Customer is keyed logically by (tenant, phone); the booking pipeline
// finds-or-creates on that pair so replayed confirmation turns stay
// idempotent.
type Customer struct {
	Id        uuid.UUID
	TenantId  string
	Phone     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Property struct {
	Id         uuid.UUID
	TenantId   string
	CustomerId uuid.UUID
	Address    string
	CreatedAt  time.Time
}
