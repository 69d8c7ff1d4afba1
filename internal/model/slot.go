package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Статус слота корта.
type SlotStatus string

const (
	SlotStatusAvailable   SlotStatus = "available"
	SlotStatusBooked      SlotStatus = "booked"
	SlotStatusBlocked     SlotStatus = "blocked"
	SlotStatusMaintenance SlotStatus = "maintenance"
)

// slots
//
// Естественный ключ (court_id, date, starts_at, ends_at) закрыт составным
// уникальным индексом: генератор опирается на него при повторных прогонах.
type Slot struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CourtID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_slot_identity"`
	Date    datatypes.Date `gorm:"type:date;not null;index;uniqueIndex:idx_slot_identity"`

	// Тип колонки выбирает драйвер: timestamptz в postgres, datetime в sqlite.
	StartsAt time.Time `gorm:"not null;index;uniqueIndex:idx_slot_identity"`
	EndsAt   time.Time `gorm:"not null;uniqueIndex:idx_slot_identity"`

	Status SlotStatus `gorm:"type:varchar(32);not null;default:'available';index"`

	// Снимок цены на момент генерации; от последующих изменений тарифа не зависит.
	Price float64 `gorm:"not null;default:0"`

	BookingID *uuid.UUID `gorm:"type:uuid;index"`

	// Групповые слоты: допускают до MaxBookings одновременных броней.
	// MaxBookings <= 1 означает обычную ёмкость 1.
	MaxBookings     int `gorm:"not null;default:1"`
	CurrentBookings int `gorm:"not null;default:0"`

	StatusReason string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Court *Court `gorm:"foreignKey:CourtID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (s *Slot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Capacity возвращает действующую ёмкость слота.
func (s *Slot) Capacity() int {
	if s.MaxBookings <= 1 {
		return 1
	}
	return s.MaxBookings
}
