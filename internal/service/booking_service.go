package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courtside/booking-platform/internal/model"
	"github.com/courtside/booking-platform/internal/repository"
	"github.com/courtside/booking-platform/internal/schedule"
)

// BookingService — защита от двойного бронирования и жизненный цикл брони.
// Источник истины о занятости интервала — хранилище слотов: на нём
// уникальный индекс и условный апдейт статуса.
type BookingService struct {
	courts   repository.CourtRepository
	bookings repository.BookingRepository
	events   repository.EventRepository

	log *slog.Logger

	// Порог «поздней» отмены до начала брони.
	cancelCutoff time.Duration

	now func() time.Time
}

func NewBookingService(
	courts repository.CourtRepository,
	bookings repository.BookingRepository,
	events repository.EventRepository,
	log *slog.Logger,
	cancelCutoff time.Duration,
) *BookingService {
	if cancelCutoff <= 0 {
		cancelCutoff = schedule.DefaultCancelCutoff
	}
	return &BookingService{
		courts:       courts,
		bookings:     bookings,
		events:       events,
		log:          log,
		cancelCutoff: cancelCutoff,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Claim пытается занять слот (court, startsAt, endsAt) для actor.
// Проверка пересечений и смена статуса происходят атомарно в хранилище;
// проигравший гонку получает ErrConflict и должен перечитать доступность.
func (s *BookingService) Claim(
	ctx context.Context,
	actor Actor,
	courtID uuid.UUID,
	startsAt, endsAt time.Time,
) (*model.Booking, error) {
	if courtID == uuid.Nil || actor.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: court id and user id are required", ErrValidation)
	}
	if _, err := schedule.NewTimeRange(startsAt, endsAt); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if !startsAt.After(s.now()) {
		return nil, fmt.Errorf("%w: slot starts at %s", ErrPastTime, startsAt.Format(time.RFC3339))
	}

	court, err := s.courts.GetByID(ctx, courtID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load court: %w", err)
	}
	if court.Status != model.CourtStatusActive {
		return nil, fmt.Errorf("%w: court is %s", ErrUnavailable, court.Status)
	}

	cfg, err := courtScheduleConfig(court)
	if err != nil {
		return nil, err
	}
	date := schedule.DateOnly(startsAt).Format(schedule.DateLayout)
	if _, blackout := cfg.BlackoutDates[date]; blackout {
		return nil, fmt.Errorf("%w: %s is a blackout date", ErrUnavailable, date)
	}

	booking, err := s.bookings.ClaimSlot(ctx, courtID, actor.UserID, startsAt, endsAt)
	switch {
	case errors.Is(err, repository.ErrSlotNotFound),
		errors.Is(err, repository.ErrSlotBlocked),
		errors.Is(err, repository.ErrOverlap):
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	case errors.Is(err, repository.ErrSlotTaken):
		return nil, fmt.Errorf("%w: %s", ErrConflict, err)
	case err != nil:
		// Сбой записи не маскируется: частичное состояние снаружи не видно,
		// вызывающий повторяет запрос после свежего чтения доступности.
		return nil, fmt.Errorf("claim slot: %w", err)
	}

	s.recordEvent(ctx, model.Event{
		EventType: model.EventTypeBookingCreated,
		UserID:    &actor.UserID,
		CourtID:   &courtID,
		BookingID: &booking.ID,
		Details:   fmt.Sprintf("claimed %s..%s", startsAt.Format(time.RFC3339), endsAt.Format(time.RFC3339)),
	})

	return booking, nil
}

// Cancel отменяет бронь от имени её создателя или админа.
// Возврат средств определяет чистая политика CanCancel.
func (s *BookingService) Cancel(
	ctx context.Context,
	actor Actor,
	bookingID uuid.UUID,
	reason string,
) (*model.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, fmt.Errorf("%w: booking id is required", ErrValidation)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if !actor.CanCancelBooking(booking) {
		return nil, ErrUnauthorized
	}

	decision := schedule.CanCancel(booking.StartsAt, booking.EndsAt, s.now(), s.cancelCutoff)
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: booking already ended", ErrPastTime)
	}

	cancelled, err := s.bookings.CancelBooking(ctx, bookingID, decision.RefundEligible, reason)
	if errors.Is(err, repository.ErrNotCancellable) {
		return nil, fmt.Errorf("%w: booking is already %s", ErrConflict, booking.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	s.recordEvent(ctx, model.Event{
		EventType: model.EventTypeBookingCancelled,
		UserID:    &actor.UserID,
		CourtID:   &cancelled.CourtID,
		BookingID: &cancelled.ID,
		Details:   reason,
	})

	return cancelled, nil
}

// CompleteElapsed закрывает подтверждённые брони, чьё время вышло.
// Используется фоновым свипером.
func (s *BookingService) CompleteElapsed(ctx context.Context) (int64, error) {
	completed, err := s.bookings.CompleteElapsed(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("complete elapsed bookings: %w", err)
	}
	if completed > 0 {
		s.recordEvent(ctx, model.Event{
			EventType: model.EventTypeBookingCompleted,
			Details:   fmt.Sprintf("%d bookings completed", completed),
		})
	}
	return completed, nil
}

func (s *BookingService) recordEvent(ctx context.Context, event model.Event) {
	if err := s.events.Record(ctx, &event); err != nil {
		s.log.Warn("record audit event",
			slog.String("event_type", string(event.EventType)),
			slog.String("error", err.Error()),
		)
	}
}
