package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusCompleted JobStatus = "completed"
)

const JobTypeDiagnostic = "diagnostic"

type Job struct {
	Id          uuid.UUID
	TenantId    string
	CustomerId  uuid.UUID
	PropertyId  uuid.UUID
	JobType     string
	Urgency     Urgency
	Description string
	WindowStart time.Time
	WindowEnd   time.Time
	Status      JobStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type Quote struct {
	Id        uuid.UUID
	TenantId  string
	JobId     uuid.UUID
	Amount    float64 // dollars
	Details   string
	CreatedAt time.Time
}

// Lead is the fallback record written when a call ends without a booking
// but with minimally useful info, so no caller's information is silently
// lost. CallId is unique: at most one lead per call.
type Lead struct {
	Id        uuid.UUID
	TenantId  string
	CallId    string
	Name      string
	Phone     string
	Issue     string
	Summary   string
	Source    string
	CreatedAt time.Time
}

const LeadSourceInboundCall = "inbound_call"
