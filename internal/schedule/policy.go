package schedule

import "time"

// DefaultCancelCutoff — порог «поздней» отмены до начала брони.
const DefaultCancelCutoff = 2 * time.Hour

// CancelDecision — результат применения политики отмены.
type CancelDecision struct {
	Allowed        bool
	RefundEligible bool
}

// CanCancel — чистая политика отмены: функция только от now и границ брони.
//   - бронь уже закончилась — отмена запрещена;
//   - до начала меньше cutoff (или бронь уже идёт) — отмена разрешена,
//     но без возврата средств;
//   - иначе — отмена с возвратом.
//
// cutoff <= 0 включает DefaultCancelCutoff.
func CanCancel(startsAt, endsAt, now time.Time, cutoff time.Duration) CancelDecision {
	if cutoff <= 0 {
		cutoff = DefaultCancelCutoff
	}

	if !now.Before(endsAt) {
		return CancelDecision{}
	}

	if now.After(startsAt.Add(-cutoff)) {
		return CancelDecision{Allowed: true}
	}

	return CancelDecision{Allowed: true, RefundEligible: true}
}
