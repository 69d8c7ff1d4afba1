package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/courtside/booking-platform/internal/model"
)

type EventRepository interface {
	// Record пишет событие аудита.
	Record(ctx context.Context, event *model.Event) error
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Record(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}
