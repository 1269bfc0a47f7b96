package model

import "time"

type Tenant struct {
	Id          string `gorm:"type:varchar(64);primaryKey"`
	Name        string `gorm:"type:varchar(255);not null"`
	Timezone    string `gorm:"type:varchar(64);not null;default:'America/New_York'"`
	OfficeEmail string `gorm:"type:varchar(255)"`
	OfficePhone string `gorm:"type:varchar(20)"`
	SMSFrom     string `gorm:"type:varchar(20)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Tenant) TableName() string {
	return "tenants"
}
