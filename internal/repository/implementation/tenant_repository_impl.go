package implementation

import (
	"context"
	"errors"

	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/mapper"
	"voice-intake-be/internal/model"
	"voice-intake-be/internal/repository/contract"

	"gorm.io/gorm"
)

type TenantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecordMapper
}

func NewTenantRepository(db *gorm.DB) contract.TenantRepository {
	return &TenantRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecordMapper(),
	}
}

func (r *TenantRepositoryImpl) FindById(ctx context.Context, id string) (*entity.Tenant, error) {
	var m model.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TenantToEntity(&m), nil
}
