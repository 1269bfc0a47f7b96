package implementation

import (
	"context"
	"errors"

	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/mapper"
	"voice-intake-be/internal/model"
	"voice-intake-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecordMapper
}

func NewCustomerRepository(db *gorm.DB) contract.CustomerRepository {
	return &CustomerRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecordMapper(),
	}
}

func (r *CustomerRepositoryImpl) Create(ctx context.Context, customer *entity.Customer) error {
	m := r.mapper.CustomerToModel(customer)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*customer = *r.mapper.CustomerToEntity(m)
	return nil
}

func (r *CustomerRepositoryImpl) Update(ctx context.Context, customer *entity.Customer) error {
	m := r.mapper.CustomerToModel(customer)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*customer = *r.mapper.CustomerToEntity(m)
	return nil
}

func (r *CustomerRepositoryImpl) FindByTenantAndPhone(ctx context.Context, tenantID, phone string) (*entity.Customer, error) {
	var m model.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND phone = ?", tenantID, phone).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CustomerToEntity(&m), nil
}

type PropertyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecordMapper
}

func NewPropertyRepository(db *gorm.DB) contract.PropertyRepository {
	return &PropertyRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecordMapper(),
	}
}

func (r *PropertyRepositoryImpl) Create(ctx context.Context, property *entity.Property) error {
	m := r.mapper.PropertyToModel(property)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*property = *r.mapper.PropertyToEntity(m)
	return nil
}

func (r *PropertyRepositoryImpl) FindByCustomerAndAddress(ctx context.Context, customerID uuid.UUID, address string) (*entity.Property, error) {
	var m model.Property
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND address = ?", customerID, address).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PropertyToEntity(&m), nil
}
