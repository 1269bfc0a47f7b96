package mapper

import (
	"time"

	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/model"
)

type RecordMapper struct{}

func NewRecordMapper() *RecordMapper {
	return &RecordMapper{}
}

func updatedAtPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (m *RecordMapper) TenantToEntity(mo *model.Tenant) *entity.Tenant {
	return &entity.Tenant{
		Id:          mo.Id,
		Name:        mo.Name,
		Timezone:    mo.Timezone,
		OfficeEmail: mo.OfficeEmail,
		OfficePhone: mo.OfficePhone,
		SMSFrom:     mo.SMSFrom,
		CreatedAt:   mo.CreatedAt,
		UpdatedAt:   updatedAtPtr(mo.UpdatedAt),
	}
}

func (m *RecordMapper) CustomerToModel(e *entity.Customer) *model.Customer {
	return &model.Customer{
		Id:       e.Id,
		TenantId: e.TenantId,
		Phone:    e.Phone,
		FullName: e.FullName,
	}
}

func (m *RecordMapper) CustomerToEntity(mo *model.Customer) *entity.Customer {
	return &entity.Customer{
		Id:        mo.Id,
		TenantId:  mo.TenantId,
		Phone:     mo.Phone,
		FullName:  mo.FullName,
		CreatedAt: mo.CreatedAt,
		UpdatedAt: updatedAtPtr(mo.UpdatedAt),
	}
}

func (m *RecordMapper) PropertyToModel(e *entity.Property) *model.Property {
	return &model.Property{
		Id:         e.Id,
		TenantId:   e.TenantId,
		CustomerId: e.CustomerId,
		Address:    e.Address,
	}
}

func (m *RecordMapper) PropertyToEntity(mo *model.Property) *entity.Property {
	return &entity.Property{
		Id:         mo.Id,
		TenantId:   mo.TenantId,
		CustomerId: mo.CustomerId,
		Address:    mo.Address,
		CreatedAt:  mo.CreatedAt,
	}
}

func (m *RecordMapper) JobToModel(e *entity.Job) *model.Job {
	return &model.Job{
		Id:          e.Id,
		TenantId:    e.TenantId,
		CustomerId:  e.CustomerId,
		PropertyId:  e.PropertyId,
		JobType:     e.JobType,
		Urgency:     string(e.Urgency),
		Description: e.Description,
		WindowStart: e.WindowStart,
		WindowEnd:   e.WindowEnd,
		Status:      string(e.Status),
	}
}

func (m *RecordMapper) JobToEntity(mo *model.Job) *entity.Job {
	return &entity.Job{
		Id:          mo.Id,
		TenantId:    mo.TenantId,
		CustomerId:  mo.CustomerId,
		PropertyId:  mo.PropertyId,
		JobType:     mo.JobType,
		Urgency:     entity.Urgency(mo.Urgency),
		Description: mo.Description,
		WindowStart: mo.WindowStart,
		WindowEnd:   mo.WindowEnd,
		Status:      entity.JobStatus(mo.Status),
		CreatedAt:   mo.CreatedAt,
		UpdatedAt:   updatedAtPtr(mo.UpdatedAt),
	}
}

func (m *RecordMapper) QuoteToModel(e *entity.Quote) *model.Quote {
	return &model.Quote{
		Id:       e.Id,
		TenantId: e.TenantId,
		JobId:    e.JobId,
		Amount:   e.Amount,
		Details:  e.Details,
	}
}

func (m *RecordMapper) QuoteToEntity(mo *model.Quote) *entity.Quote {
	return &entity.Quote{
		Id:        mo.Id,
		TenantId:  mo.TenantId,
		JobId:     mo.JobId,
		Amount:    mo.Amount,
		Details:   mo.Details,
		CreatedAt: mo.CreatedAt,
	}
}

func (m *RecordMapper) LeadToModel(e *entity.Lead) *model.Lead {
	return &model.Lead{
		Id:       e.Id,
		TenantId: e.TenantId,
		CallId:   e.CallId,
		Name:     e.Name,
		Phone:    e.Phone,
		Issue:    e.Issue,
		Summary:  e.Summary,
		Source:   e.Source,
	}
}

func (m *RecordMapper) LeadToEntity(mo *model.Lead) *entity.Lead {
	return &entity.Lead{
		Id:        mo.Id,
		TenantId:  mo.TenantId,
		CallId:    mo.CallId,
		Name:      mo.Name,
		Phone:     mo.Phone,
		Issue:     mo.Issue,
		Summary:   mo.Summary,
		Source:    mo.Source,
		CreatedAt: mo.CreatedAt,
	}
}
