package model

import (
	"time"

	"github.com/google/uuid"
)

type Job struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId    string    `gorm:"type:varchar(64);not null;index"`
	CustomerId  uuid.UUID `gorm:"type:uuid;not null;index"`
	PropertyId  uuid.UUID `gorm:"type:uuid;not null"`
	JobType     string    `gorm:"type:varchar(50);not null"`
	Urgency     string    `gorm:"type:varchar(20);not null"`
	Description string    `gorm:"type:text"`
	WindowStart time.Time `gorm:"not null"`
	WindowEnd   time.Time `gorm:"not null"`
	Status      string    `gorm:"type:varchar(20);not null;default:'scheduled'"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}

type Quote struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId  string    `gorm:"type:varchar(64);not null;index"`
	JobId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount    float64   `gorm:"type:numeric(10,2);not null"`
	Details   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Quote) TableName() string {
	return "quotes"
}

type Lead struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId  string    `gorm:"type:varchar(64);not null;index"`
	CallId    string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(20)"`
	Issue     string    `gorm:"type:text"`
	Summary   string    `gorm:"type:text"`
	Source    string    `gorm:"type:varchar(32);not null;default:'inbound_call'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Lead) TableName() string {
	return "leads"
}
