package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Статус корта.
type CourtStatus string

const (
	CourtStatusActive      CourtStatus = "active"
	CourtStatusMaintenance CourtStatus = "maintenance"
	CourtStatusInactive    CourtStatus = "inactive"
)

// courts
type Court struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	VenueID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Владелец-менеджер площадки; проверка прав идёт по этому полю.
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name string `gorm:"type:varchar(255);not null"`

	// Цена за час на момент генерации слотов.
	HourlyRate float64 `gorm:"not null;default:0"`

	// Шаг сетки слотов в минутах.
	BookingDurationMin int `gorm:"not null;default:60"`

	Status           CourtStatus `gorm:"type:varchar(32);not null;default:'active';index"`
	MaintenanceNotes string      `gorm:"type:text"`

	// Недельное расписание: weekday -> {open, close} в "HH:MM".
	WeeklyHours datatypes.JSON `gorm:"type:jsonb"`
	// Даты полной недоступности: ["YYYY-MM-DD", ...].
	BlackoutDates datatypes.JSON `gorm:"type:jsonb"`
	// Точечные замены недельного расписания: "YYYY-MM-DD" -> {open, close}.
	AvailabilityOverrides datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Slots []Slot `gorm:"foreignKey:CourtID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (c *Court) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
