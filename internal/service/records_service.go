package service

import (
	"context"
	"fmt"
	"time"

	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/pkg/logger"
	"voice-intake-be/internal/repository/contract"

	"github.com/google/uuid"
)

// RecordsService owns the business records a call produces: customers,
// properties and fallback leads. Every write path is find-or-create so
// a replayed booking turn or a retried pipeline never duplicates rows.
type RecordsService struct {
	customers  contract.CustomerRepository
	properties contract.PropertyRepository
	leads      contract.LeadRepository
	logger     logger.ILogger
}

func NewRecordsService(
	customers contract.CustomerRepository,
	properties contract.PropertyRepository,
	leads contract.LeadRepository,
	log logger.ILogger,
) *RecordsService {
	return &RecordsService{
		customers:  customers,
		properties: properties,
		leads:      leads,
		logger:     log,
	}
}

// FindOrCreateCustomer resolves a customer by (tenant, phone). An
// existing customer gets a name backfill only when the stored name is
// empty; a caller can never overwrite an established name mid-call.
func (s *RecordsService) FindOrCreateCustomer(ctx context.Context, tenantID, phone, name string) (*entity.Customer, error) {
	existing, err := s.customers.FindByTenantAndPhone(ctx, tenantID, phone)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if existing != nil {
		if existing.FullName == "" && name != "" {
			existing.FullName = name
			if err := s.customers.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("backfill customer name: %w", err)
			}
		}
		return existing, nil
	}

	customer := &entity.Customer{
		Id:        uuid.New(),
		TenantId:  tenantID,
		Phone:     phone,
		FullName:  name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

// FindOrCreateProperty resolves a property for the customer by its
// normalized address string.
func (s *RecordsService) FindOrCreateProperty(ctx context.Context, tenantID string, customerID uuid.UUID, address string) (*entity.Property, error) {
	existing, err := s.properties.FindByCustomerAndAddress(ctx, customerID, address)
	if err != nil {
		return nil, fmt.Errorf("find property: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	property := &entity.Property{
		Id:         uuid.New(),
		TenantId:   tenantID,
		CustomerId: customerID,
		Address:    address,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	return property, nil
}

// CreateLeadOnce writes the fallback lead for a call that ended without
// a booking. At most one lead per call id; the second call for the same
// id reports created=false.
func (s *RecordsService) CreateLeadOnce(ctx context.Context, tenant *entity.Tenant, session *entity.CallSession, summary string) (bool, error) {
	existing, err := s.leads.FindByCallId(ctx, session.CallID)
	if err != nil {
		return false, fmt.Errorf("find lead: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	lead := &entity.Lead{
		Id:        uuid.New(),
		TenantId:  tenant.Id,
		CallId:    session.CallID,
		Name:      strVal(session.Slots.Name),
		Phone:     session.ConfirmedPhone(),
		Issue:     strVal(session.Slots.Issue),
		Summary:   summary,
		Source:    entity.LeadSourceInboundCall,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return false, fmt.Errorf("create lead: %w", err)
	}

	s.logger.Info("RecordsService", "Fallback lead created", map[string]interface{}{
		"call_id":   session.CallID,
		"tenant_id": tenant.Id,
	})
	return true, nil
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
