package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type slotSweeper interface {
	MaterializeAhead(ctx context.Context) (int64, error)
	PurgeStale(ctx context.Context, retentionDays int) (int64, error)
}

type bookingCompleter interface {
	CompleteElapsed(ctx context.Context) (int64, error)
}

// Sweeper — периодическая уборка: материализация слотов вперёд,
// чистка устаревших свободных слотов и закрытие прошедших броней.
// Для корректности ядра свипер не обязателен, каждая операция
// самодостаточна и повторяема.
type Sweeper struct {
	slots    slotSweeper
	bookings bookingCompleter

	interval      time.Duration
	retentionDays int

	log *slog.Logger
}

func New(
	slots slotSweeper,
	bookings bookingCompleter,
	interval time.Duration,
	retentionDays int,
	log *slog.Logger,
) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		slots:         slots,
		bookings:      bookings,
		interval:      interval,
		retentionDays: retentionDays,
		log:           log,
	}
}

// Start крутит цикл до отмены контекста.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("sweeper started", slog.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	if created, err := s.slots.MaterializeAhead(ctx); err != nil {
		s.log.Error("materialize slots", slog.String("error", err.Error()))
	} else if created > 0 {
		s.log.Info("materialized slots", slog.Int64("created", created))
	}

	if purged, err := s.slots.PurgeStale(ctx, s.retentionDays); err != nil {
		s.log.Error("purge stale slots", slog.String("error", err.Error()))
	} else if purged > 0 {
		s.log.Info("purged stale slots", slog.Int64("purged", purged))
	}

	if completed, err := s.bookings.CompleteElapsed(ctx); err != nil {
		s.log.Error("complete elapsed bookings", slog.String("error", err.Error()))
	} else if completed > 0 {
		s.log.Info("completed elapsed bookings", slog.Int64("completed", completed))
	}
}
