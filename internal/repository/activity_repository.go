package repository

import (
	"context"

	"github.com/shinyyama/activities-backend/internal/model"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *model.Activity) error
	FindByID(ctx context.Context, id uint64) (*model.Activity, error)
	List(ctx context.Context, limit, offset int, source *model.Source) ([]model.Activity, int64, error)
	SetDB(db *gorm.DB)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *activityRepository) Create(ctx context.Context, a *model.Activity) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *activityRepository) FindByID(ctx context.Context, id uint64) (*model.Activity, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var a model.Activity
	if err := r.db.WithContext(ctx).
		Preload("CreatedUser").
		First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// List pages the feed newest first, optionally filtered by source.
func (r *activityRepository) List(ctx context.Context, limit, offset int, source *model.Source) ([]model.Activity, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	count := r.db.WithContext(ctx).Model(&model.Activity{})
	find := r.db.WithContext(ctx).Model(&model.Activity{})
	if source != nil {
		count = count.Where("source = ?", *source)
		find = find.Where("source = ?", *source)
	}
	var total int64
	if err := count.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Activity
	if err := find.
		Preload("CreatedUser").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
