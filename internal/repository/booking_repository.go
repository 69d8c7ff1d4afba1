package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courtside/booking-platform/internal/model"
)

var (
	// Интервал пересекается с чужой бронью на несовпадающих границах.
	ErrOverlap = errors.New("interval overlaps a booked slot")
	// Слот с такими границами не материализован.
	ErrSlotNotFound = errors.New("slot not found")
	// Слот заблокирован или корт на обслуживании.
	ErrSlotBlocked = errors.New("slot is blocked")
	// Проигрыш гонки: ёмкость слота выбрана конкурентной бронью.
	ErrSlotTaken = errors.New("slot capacity exhausted")
	// Бронь не в статусе, допускающем отмену.
	ErrNotCancellable = errors.New("booking is not cancellable")
)

type BookingRepository interface {
	// Атомарно занять слот: проверка пересечений, условный апдейт статуса
	// и создание брони в одной транзакции.
	ClaimSlot(ctx context.Context, courtID, userID uuid.UUID, startsAt, endsAt time.Time) (*model.Booking, error)
	// Отменить бронь и вернуть слот в оборот.
	CancelBooking(ctx context.Context, bookingID uuid.UUID, refundEligible bool, reason string) (*model.Booking, error)
	// Получить бронь по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Перевести завершившиеся подтверждённые брони в completed.
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// слотовое условие ёмкости: MaxBookings <= 1 считается ёмкостью 1.
const capacityExpr = "CASE WHEN max_bookings > 1 THEN max_bookings ELSE 1 END"

// lockForUpdate навешивает SELECT ... FOR UPDATE там, где диалект его
// поддерживает. sqlite сериализует писателей сам и синтаксис не принимает.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *GormBookingRepository) ClaimSlot(
	ctx context.Context,
	courtID, userID uuid.UUID,
	startsAt, endsAt time.Time,
) (*model.Booking, error) {
	var booking *model.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Блокируем все занятые слоты корта, пересекающие интервал,
		// чтобы конкурентная отмена/бронь не проскочила мимо проверки.
		// Полупустой групповой слот остаётся available, но брони держит,
		// потому критерий — счётчик, а не только статус.
		// Совпадающий интервал исключён: его судьбу решает условный апдейт.
		var overlapping []model.Slot
		err := lockForUpdate(tx).
			Where("court_id = ?", courtID).
			Where("status = ? OR current_bookings > 0", model.SlotStatusBooked).
			Where("starts_at < ? AND ends_at > ?", endsAt, startsAt).
			Where("NOT (starts_at = ? AND ends_at = ?)", startsAt, endsAt).
			Find(&overlapping).Error
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return ErrOverlap
		}

		var slot model.Slot
		err = lockForUpdate(tx).
			Where("court_id = ?", courtID).
			Where("starts_at = ? AND ends_at = ?", startsAt, endsAt).
			First(&slot).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		if err != nil {
			return err
		}
		if slot.Status == model.SlotStatusBlocked || slot.Status == model.SlotStatusMaintenance {
			return ErrSlotBlocked
		}

		b := model.Booking{
			CourtID:  courtID,
			SlotID:   &slot.ID,
			UserID:   userID,
			StartsAt: startsAt,
			EndsAt:   endsAt,
			Status:   model.BookingStatusConfirmed,
		}
		if err := tx.Create(&b).Error; err != nil {
			return err
		}

		// Единственный условный апдейт — кто успел первым, тот и занял.
		// Счётчик растёт, пока не выбрана ёмкость; при заполнении слот
		// помечается booked.
		res := tx.Model(&model.Slot{}).
			Where("id = ?", slot.ID).
			Where("status NOT IN ?", []model.SlotStatus{model.SlotStatusBlocked, model.SlotStatusMaintenance}).
			Where("current_bookings < "+capacityExpr).
			Updates(map[string]any{
				"current_bookings": gorm.Expr("current_bookings + 1"),
				"status": gorm.Expr(
					"CASE WHEN current_bookings + 1 >= "+capacityExpr+" THEN ? ELSE status END",
					model.SlotStatusBooked,
				),
				"booking_id": b.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSlotTaken
		}

		booking = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *GormBookingRepository) CancelBooking(
	ctx context.Context,
	bookingID uuid.UUID,
	refundEligible bool,
	reason string,
) (*model.Booking, error) {
	var booking model.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).First(&booking, "id = ?", bookingID).Error
		if err != nil {
			return err
		}
		if !booking.Active() {
			return ErrNotCancellable
		}

		now := time.Now().UTC()
		err = tx.Model(&model.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]any{
				"status":          model.BookingStatusCancelled,
				"cancelled_at":    now,
				"refund_eligible": refundEligible,
				"comment":         reason,
			}).Error
		if err != nil {
			return err
		}

		if booking.SlotID != nil {
			// Возврат слота в оборот: счётчик вниз, booked снова становится
			// available, ссылка на бронь снимается, если указывала на неё.
			err = tx.Model(&model.Slot{}).
				Where("id = ?", *booking.SlotID).
				Updates(map[string]any{
					"current_bookings": gorm.Expr("CASE WHEN current_bookings > 0 THEN current_bookings - 1 ELSE 0 END"),
					"status": gorm.Expr(
						"CASE WHEN status = ? THEN ? ELSE status END",
						model.SlotStatusBooked, model.SlotStatusAvailable,
					),
					"booking_id": gorm.Expr("CASE WHEN booking_id = ? THEN NULL ELSE booking_id END", booking.ID),
				}).Error
			if err != nil {
				return err
			}
		}

		booking.Status = model.BookingStatusCancelled
		booking.CancelledAt = &now
		booking.RefundEligible = refundEligible
		booking.Comment = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("status = ?", model.BookingStatusConfirmed).
		Where("ends_at <= ?", now).
		Update("status", model.BookingStatusCompleted)
	return tx.RowsAffected, tx.Error
}
