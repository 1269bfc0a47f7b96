package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CallSession struct {
	CallId      string         `gorm:"type:varchar(64);primaryKey"`
	TenantId    string         `gorm:"type:varchar(64);not null;index"`
	CallerPhone string         `gorm:"type:varchar(20)"`
	State       string         `gorm:"type:varchar(32);not null"`
	Slots       datatypes.JSON `gorm:"type:jsonb"`
	Transcript  datatypes.JSON `gorm:"type:jsonb"`
	Summary     string         `gorm:"type:text"`
	BookingId   *uuid.UUID     `gorm:"type:uuid"`
	StartedAt   time.Time      `gorm:"not null"`
	EndedAt     *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (CallSession) TableName() string {
	return "call_sessions"
}
