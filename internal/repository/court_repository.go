package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courtside/booking-platform/internal/model"
)

type CourtRepository interface {
	// GetByID возвращает корт по идентификатору.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Court, error)
	// ListActive возвращает корты, для которых имеет смысл генерация слотов.
	ListActive(ctx context.Context) ([]model.Court, error)
}

type GormCourtRepository struct {
	db *gorm.DB
}

func NewGormCourtRepository(db *gorm.DB) *GormCourtRepository {
	return &GormCourtRepository{db: db}
}

func (r *GormCourtRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Court, error) {
	var court model.Court
	if err := r.db.WithContext(ctx).First(&court, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &court, nil
}

func (r *GormCourtRepository) ListActive(ctx context.Context) ([]model.Court, error) {
	var courts []model.Court
	err := r.db.WithContext(ctx).
		Where("status = ?", model.CourtStatusActive).
		Order("created_at DESC").
		Find(&courts).Error
	if err != nil {
		return nil, err
	}
	return courts, nil
}
