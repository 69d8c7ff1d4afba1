package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// bookings
type Booking struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CourtID uuid.UUID  `gorm:"type:uuid;not null;index"`
	SlotID  *uuid.UUID `gorm:"type:uuid;index"`
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index"`

	// Точные границы интервала, а не только метка слота.
	StartsAt time.Time `gorm:"not null;index"`
	EndsAt   time.Time `gorm:"not null"`

	Status BookingStatus `gorm:"type:varchar(32);not null;index"`

	CancelledAt    *time.Time
	RefundEligible bool       `gorm:"not null;default:false"`
	Comment        string     `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Court *Court `gorm:"foreignKey:CourtID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Slot  *Slot  `gorm:"foreignKey:SlotID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Active сообщает, удерживает ли бронь интервал.
// Отменённые и неявки интервал не занимают.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
