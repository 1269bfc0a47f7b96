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

type JobRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecordMapper
}

func NewJobRepository(db *gorm.DB) contract.JobRepository {
	return &JobRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecordMapper(),
	}
}

func (r *JobRepositoryImpl) CreateJobAndQuote(ctx context.Context, job *entity.Job, quote *entity.Quote) error {
	jobModel := r.mapper.JobToModel(job)
	quoteModel := r.mapper.QuoteToModel(quote)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(jobModel).Error; err != nil {
			return err
		}
		quoteModel.JobId = jobModel.Id
		return tx.Create(quoteModel).Error
	})
	if err != nil {
		return err
	}

	*job = *r.mapper.JobToEntity(jobModel)
	*quote = *r.mapper.QuoteToEntity(quoteModel)
	return nil
}

type LeadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecordMapper
}

func NewLeadRepository(db *gorm.DB) contract.LeadRepository {
	return &LeadRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecordMapper(),
	}
}

func (r *LeadRepositoryImpl) Create(ctx context.Context, lead *entity.Lead) error {
	m := r.mapper.LeadToModel(lead)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*lead = *r.mapper.LeadToEntity(m)
	return nil
}

func (r *LeadRepositoryImpl) FindByCallId(ctx context.Context, callID string) (*entity.Lead, error) {
	var m model.Lead
	if err := r.db.WithContext(ctx).Where("call_id = ?", callID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LeadToEntity(&m), nil
}

func (r *LeadRepositoryImpl) ListRecent(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Lead, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Lead{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*model.Lead
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	leads := make([]*entity.Lead, len(models))
	for i, m := range models {
		leads[i] = r.mapper.LeadToEntity(m)
	}
	return leads, total, nil
}
