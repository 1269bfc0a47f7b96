package model

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_customers_tenant_phone"`
	Phone     string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_customers_tenant_phone"`
	FullName  string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Customer) TableName() string {
	return "customers"
}

type Property struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId   string    `gorm:"type:varchar(64);not null;index"`
	CustomerId uuid.UUID `gorm:"type:uuid;not null;index"`
	Address    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Property) TableName() string {
	return "properties"
}
