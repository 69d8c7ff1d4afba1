package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/courtside/booking-platform/internal/model"
	"github.com/courtside/booking-platform/internal/repository"
	"github.com/courtside/booking-platform/internal/schedule"
)

// SlotService — расчёт доступности, генерация сетки слотов
// и массовые операции над ними.
type SlotService struct {
	courts repository.CourtRepository
	slots  repository.SlotRepository
	events repository.EventRepository

	log *slog.Logger

	// Горизонт генерации/показа по умолчанию, в днях.
	windowDays int

	now func() time.Time
}

func NewSlotService(
	courts repository.CourtRepository,
	slots repository.SlotRepository,
	events repository.EventRepository,
	log *slog.Logger,
	windowDays int,
) *SlotService {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &SlotService{
		courts:     courts,
		slots:      slots,
		events:     events,
		log:        log,
		windowDays: windowDays,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// courtScheduleConfig разбирает JSON-поля расписания корта.
// Битая конфигурация — это испорченные данные, а не ошибка вызывающего.
func courtScheduleConfig(court *model.Court) (schedule.Config, error) {
	cfg, err := schedule.ParseConfig(
		[]byte(court.WeeklyHours),
		[]byte(court.BlackoutDates),
		[]byte(court.AvailabilityOverrides),
		court.BookingDurationMin,
	)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("court %s schedule config: %w", court.ID, err)
	}
	return cfg, nil
}

func (s *SlotService) courtConfig(ctx context.Context, courtID uuid.UUID) (*model.Court, schedule.Config, error) {
	court, err := s.courts.GetByID(ctx, courtID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, schedule.Config{}, ErrNotFound
	}
	if err != nil {
		return nil, schedule.Config{}, fmt.Errorf("load court: %w", err)
	}

	cfg, err := courtScheduleConfig(court)
	if err != nil {
		return nil, schedule.Config{}, err
	}
	return court, cfg, nil
}

// Availability считает доступность корта по датам.
// Нулевые границы дают окно по умолчанию: сегодня + windowDays.
func (s *SlotService) Availability(ctx context.Context, courtID uuid.UUID, from, to time.Time) ([]schedule.DayAvailability, error) {
	if courtID == uuid.Nil {
		return nil, fmt.Errorf("%w: court id is required", ErrValidation)
	}

	if from.IsZero() && to.IsZero() {
		from = s.now()
		to = from.AddDate(0, 0, s.windowDays-1)
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: both range bounds are required", ErrValidation)
	}

	court, cfg, err := s.courtConfig(ctx, courtID)
	if err != nil {
		return nil, err
	}

	maintenance := court.Status == model.CourtStatusMaintenance
	return schedule.ComputeAvailability(cfg, maintenance, schedule.DatesInRange(from, to)), nil
}

// Generate материализует слоты корта за период [from, to] включительно.
// Повторный прогон идемпотентен: существующие интервалы пропускаются,
// забронированные слоты не перезаписываются и не удаляются.
func (s *SlotService) Generate(
	ctx context.Context,
	actor Actor,
	courtID uuid.UUID,
	from, to time.Time,
	clearExisting bool,
) (int64, error) {
	if courtID == uuid.Nil || from.IsZero() || to.IsZero() {
		return 0, fmt.Errorf("%w: court id and date range are required", ErrValidation)
	}

	court, cfg, err := s.courtConfig(ctx, courtID)
	if err != nil {
		return 0, err
	}
	if !actor.CanManageCourt(court) {
		return 0, ErrUnauthorized
	}

	created, err := s.generateForCourt(ctx, court, cfg, from, to, clearExisting)
	if err != nil {
		return 0, err
	}

	s.recordEvent(ctx, model.Event{
		EventType: model.EventTypeSlotsGenerated,
		UserID:    &actor.UserID,
		CourtID:   &court.ID,
		Details:   fmt.Sprintf("generated %d slots for %s..%s", created, from.Format(schedule.DateLayout), to.Format(schedule.DateLayout)),
	})

	return created, nil
}

func (s *SlotService) generateForCourt(
	ctx context.Context,
	court *model.Court,
	cfg schedule.Config,
	from, to time.Time,
	clearExisting bool,
) (int64, error) {
	dates := schedule.DatesInRange(from, to)

	today := schedule.DateOnly(s.now())
	if len(dates) > 0 && dates[len(dates)-1].Before(today) {
		return 0, fmt.Errorf("%w: range is entirely in the past", ErrPastTime)
	}

	rangeStart := dates[0]
	rangeEnd := dates[len(dates)-1].AddDate(0, 0, 1)

	if clearExisting {
		if _, err := s.slots.DeleteAvailableInRange(ctx, court.ID, rangeStart, rangeEnd); err != nil {
			return 0, fmt.Errorf("clear existing slots: %w", err)
		}
	}

	existing, err := s.slots.ExistingIntervals(ctx, court.ID, rangeStart, rangeEnd)
	if err != nil {
		return 0, fmt.Errorf("load existing slots: %w", err)
	}

	maintenance := court.Status == model.CourtStatusMaintenance
	days := schedule.ComputeAvailability(cfg, maintenance, dates)

	// Партия собирается в рамках одного вызова; общего изменяемого
	// состояния между конкурентными запросами здесь нет.
	var batch []model.Slot
	for i, day := range days {
		if !day.Available {
			continue
		}

		grid, err := schedule.SlotGrid(dates[i], *day.Hours, cfg.DurationMin)
		if err != nil {
			return 0, fmt.Errorf("slot grid for %s: %w", day.Date, err)
		}

		for _, tr := range grid {
			if _, ok := existing[repository.IntervalKey(tr.Start, tr.End)]; ok {
				continue
			}
			batch = append(batch, model.Slot{
				CourtID:     court.ID,
				Date:        datatypes.Date(dates[i]),
				StartsAt:    tr.Start,
				EndsAt:      tr.End,
				Status:      model.SlotStatusAvailable,
				Price:       court.HourlyRate * tr.End.Sub(tr.Start).Hours(),
				MaxBookings: 1,
			})
		}
	}

	created, err := s.slots.CreateBatch(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("create slots: %w", err)
	}
	return created, nil
}

// List возвращает слоты корта за период, по возрастанию (date, starts_at).
func (s *SlotService) List(
	ctx context.Context,
	courtID uuid.UUID,
	from, to time.Time,
	status model.SlotStatus,
) ([]model.Slot, error) {
	if courtID == uuid.Nil {
		return nil, fmt.Errorf("%w: court id is required", ErrValidation)
	}
	if from.IsZero() && to.IsZero() {
		from = s.now()
		to = from.AddDate(0, 0, s.windowDays)
	}

	slots, err := s.slots.ListByCourtRange(ctx, courtID, from, to, status)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// UpdateStatus — массовый перевод слотов одного корта в новый статус.
// Забронированные слоты пропускаются; перевод в maintenance помечает
// и сам корт. Возвращает количество изменённых слотов.
func (s *SlotService) UpdateStatus(
	ctx context.Context,
	actor Actor,
	slotIDs []uuid.UUID,
	status model.SlotStatus,
	reason string,
) (int64, error) {
	if len(slotIDs) == 0 {
		return 0, fmt.Errorf("%w: slot ids are required", ErrValidation)
	}
	switch status {
	case model.SlotStatusAvailable, model.SlotStatusBlocked, model.SlotStatusMaintenance:
	default:
		return 0, fmt.Errorf("%w: status %q is not allowed for bulk update", ErrValidation, status)
	}

	slots, err := s.slots.ListByIDs(ctx, slotIDs)
	if err != nil {
		return 0, fmt.Errorf("load slots: %w", err)
	}
	if len(slots) == 0 {
		return 0, ErrNotFound
	}

	courtID := slots[0].CourtID
	for _, sl := range slots {
		if sl.CourtID != courtID {
			return 0, fmt.Errorf("%w: slots must belong to a single court", ErrValidation)
		}
	}

	court, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		return 0, fmt.Errorf("load court: %w", err)
	}
	if !actor.CanManageCourt(court) {
		return 0, ErrUnauthorized
	}

	updated, err := s.slots.BulkUpdateStatus(ctx, courtID, slotIDs, status, reason)
	if err != nil {
		return 0, fmt.Errorf("bulk update: %w", err)
	}

	s.recordEvent(ctx, model.Event{
		EventType: model.EventTypeSlotsUpdated,
		UserID:    &actor.UserID,
		CourtID:   &courtID,
		Details:   fmt.Sprintf("%d slots -> %s (%s)", updated, status, reason),
	})

	return updated, nil
}

// MaterializeAhead генерирует слоты на windowDays вперёд для всех
// активных кортов. Используется фоновым свипером.
func (s *SlotService) MaterializeAhead(ctx context.Context) (int64, error) {
	courts, err := s.courts.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active courts: %w", err)
	}

	from := s.now()
	to := from.AddDate(0, 0, s.windowDays-1)

	var total int64
	for i := range courts {
		court := &courts[i]
		cfg, err := courtScheduleConfig(court)
		if err != nil {
			s.log.Warn("skip court with broken schedule config",
				slog.String("court_id", court.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}

		created, err := s.generateForCourt(ctx, court, cfg, from, to, false)
		if err != nil {
			return total, fmt.Errorf("materialize court %s: %w", court.ID, err)
		}
		total += created
	}
	return total, nil
}

// PurgeStale удаляет свободные прошедшие слоты старше retentionDays,
// никогда не имевшие брони.
func (s *SlotService) PurgeStale(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	before := s.now().AddDate(0, 0, -retentionDays)
	purged, err := s.slots.PurgeStale(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("purge stale slots: %w", err)
	}
	return purged, nil
}

// recordEvent пишет аудит вне критического пути; сбой только логируется.
func (s *SlotService) recordEvent(ctx context.Context, event model.Event) {
	if err := s.events.Record(ctx, &event); err != nil {
		s.log.Warn("record audit event",
			slog.String("event_type", string(event.EventType)),
			slog.String("error", err.Error()),
		)
	}
}
