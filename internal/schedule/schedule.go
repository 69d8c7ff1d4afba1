package schedule

import (
	"errors"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrInvalidDate      = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidClock     = errors.New("invalid time of day, want HH:MM")
	ErrSlotDuration     = errors.New("slot duration must be positive")
)

// Формат ключей конфигурации расписания.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал и делает простую валидацию.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// DateOnly обрезает время до начала суток в UTC.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatesInRange возвращает все даты диапазона [from, to] включительно.
// Перепутанные границы меняются местами.
func DatesInRange(from, to time.Time) []time.Time {
	from = DateOnly(from)
	to = DateOnly(to)
	if to.Before(from) {
		from, to = to, from
	}

	var dates []time.Time
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		dates = append(dates, cur)
	}
	return dates
}

// ParseDate парсит дату "YYYY-MM-DD" в начало суток UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t.UTC(), nil
}

// ParseClock парсит "HH:MM" и возвращает смещение от начала суток.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, ErrInvalidClock
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
