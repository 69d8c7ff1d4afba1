package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courtside/booking-platform/internal/model"
)

type SlotRepository interface {
	// Слоты корта за период, отсортированные по (date, starts_at).
	ListByCourtRange(ctx context.Context, courtID uuid.UUID, from, to time.Time, status model.SlotStatus) ([]model.Slot, error)
	// Слоты по списку идентификаторов.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Slot, error)
	// Ключи уже существующих слотов за период (для идемпотентной генерации).
	ExistingIntervals(ctx context.Context, courtID uuid.UUID, from, to time.Time) (map[string]struct{}, error)
	// Пакетная вставка; дубликаты по уникальному индексу молча отбрасываются.
	CreateBatch(ctx context.Context, slots []model.Slot) (int64, error)
	// Удалить свободные слоты без броней за период (перед перегенерацией).
	DeleteAvailableInRange(ctx context.Context, courtID uuid.UUID, from, to time.Time) (int64, error)
	// Массовая смена статуса, кроме забронированных слотов.
	// При переводе в maintenance статус корта тоже меняется в той же транзакции.
	BulkUpdateStatus(ctx context.Context, courtID uuid.UUID, slotIDs []uuid.UUID, status model.SlotStatus, reason string) (int64, error)
	// Чистка устаревших свободных слотов, никогда не имевших брони.
	PurgeStale(ctx context.Context, before time.Time) (int64, error)
}

type GormSlotRepository struct {
	db *gorm.DB
}

func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

func (r *GormSlotRepository) ListByCourtRange(
	ctx context.Context,
	courtID uuid.UUID,
	from, to time.Time,
	status model.SlotStatus,
) ([]model.Slot, error) {
	var slots []model.Slot
	q := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("court_id = ?", courtID).
		Where("starts_at >= ? AND ends_at <= ?", from, to)

	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Order("date ASC, starts_at ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormSlotRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Slot, error) {
	var slots []model.Slot
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// IntervalKey — ключ слота внутри одного корта.
func IntervalKey(startsAt, endsAt time.Time) string {
	return startsAt.UTC().Format(time.RFC3339) + "/" + endsAt.UTC().Format(time.RFC3339)
}

func (r *GormSlotRepository) ExistingIntervals(
	ctx context.Context,
	courtID uuid.UUID,
	from, to time.Time,
) (map[string]struct{}, error) {
	var rows []model.Slot
	err := r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Select("starts_at", "ends_at").
		Where("court_id = ?", courtID).
		Where("starts_at >= ? AND ends_at <= ?", from, to).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(rows))
	for _, s := range rows {
		keys[IntervalKey(s.StartsAt, s.EndsAt)] = struct{}{}
	}
	return keys, nil
}

func (r *GormSlotRepository) CreateBatch(ctx context.Context, slots []model.Slot) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	// Уникальный индекс — последняя линия обороны от дублей: проигравшая
	// гонку вставка отбрасывается, остальная партия проходит.
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&slots, 200)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func (r *GormSlotRepository) DeleteAvailableInRange(
	ctx context.Context,
	courtID uuid.UUID,
	from, to time.Time,
) (int64, error) {
	// Частично выкупленный групповой слот остаётся available, но уже
	// держит брони. Под удаление попадают только слоты без единой брони.
	tx := r.db.WithContext(ctx).
		Where("court_id = ?", courtID).
		Where("starts_at >= ? AND ends_at <= ?", from, to).
		Where("status = ?", model.SlotStatusAvailable).
		Where("booking_id IS NULL AND current_bookings = 0").
		Delete(&model.Slot{})
	return tx.RowsAffected, tx.Error
}

func (r *GormSlotRepository) BulkUpdateStatus(
	ctx context.Context,
	courtID uuid.UUID,
	slotIDs []uuid.UUID,
	status model.SlotStatus,
	reason string,
) (int64, error) {
	var updated int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Slot{}).
			Where("id IN ?", slotIDs).
			Where("court_id = ?", courtID).
			// Забронированные слоты массовому пути недоступны:
			// их судьба решается только через отмену брони.
			Where("status <> ?", model.SlotStatusBooked).
			Updates(map[string]any{
				"status":        status,
				"status_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected

		if status == model.SlotStatusMaintenance && updated > 0 {
			return tx.Model(&model.Court{}).
				Where("id = ?", courtID).
				Updates(map[string]any{
					"status":            model.CourtStatusMaintenance,
					"maintenance_notes": reason,
				}).Error
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (r *GormSlotRepository) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("status = ?", model.SlotStatusAvailable).
		Where("booking_id IS NULL").
		Where("ends_at < ?", before).
		Delete(&model.Slot{})
	return tx.RowsAffected, tx.Error
}
