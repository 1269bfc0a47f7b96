package implementation

import (
	"context"
	"errors"

	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/mapper"
	"voice-intake-be/internal/model"
	"voice-intake-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CallSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CallMapper
}

func NewCallSessionRepository(db *gorm.DB) contract.CallSessionRepository {
	return &CallSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCallMapper(),
	}
}

func (r *CallSessionRepositoryImpl) Upsert(ctx context.Context, session *entity.CallSession) error {
	m := r.mapper.CallSessionToModel(session)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *CallSessionRepositoryImpl) Get(ctx context.Context, callID string) (*entity.CallSession, error) {
	var m model.CallSession
	if err := r.db.WithContext(ctx).Where("call_id = ?", callID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CallSessionToEntity(&m), nil
}

func (r *CallSessionRepositoryImpl) ListRecent(ctx context.Context, tenantID string, limit, offset int) ([]*entity.CallSession, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.CallSession{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*model.CallSession
	if err := query.Order("started_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]*entity.CallSession, len(models))
	for i, m := range models {
		sessions[i] = r.mapper.CallSessionToEntity(m)
	}
	return sessions, total, nil
}
