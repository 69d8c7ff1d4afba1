package service

import (
	"github.com/google/uuid"

	"github.com/courtside/booking-platform/internal/model"
)

// Роль вызывающего. Аутентификацию выполняет внешний контур,
// ядро доверяет переданной паре (user id, role).
type Role string

const (
	RoleClient  Role = "client"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Actor — аутентифицированный вызывающий.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// CanManageCourt: менять расписание и статусы слотов может
// владелец-менеджер корта либо админ.
func (a Actor) CanManageCourt(court *model.Court) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.Role == RoleManager && court != nil && a.UserID == court.OwnerID
}

// CanCancelBooking: отменить бронь может её создатель либо админ.
func (a Actor) CanCancelBooking(booking *model.Booking) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return booking != nil && a.UserID == booking.UserID
}
