package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HoursRange — рабочее окно одного дня в "HH:MM".
type HoursRange struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Window переводит окно в конкретный интервал указанной даты.
// Окно нулевой длины (open == close) даёт пустой интервал без ошибки.
func (h HoursRange) Window(date time.Time) (TimeRange, error) {
	open, err := ParseClock(h.Open)
	if err != nil {
		return TimeRange{}, fmt.Errorf("open %q: %w", h.Open, err)
	}
	close, err := ParseClock(h.Close)
	if err != nil {
		return TimeRange{}, fmt.Errorf("close %q: %w", h.Close, err)
	}

	day := DateOnly(date)
	return TimeRange{Start: day.Add(open), End: day.Add(close)}, nil
}

// Config — провалидированная конфигурация расписания корта.
// Сырые JSON-поля корта парсятся один раз на границе; ключи
// с неверным форматом отбрасываются с ошибкой, а не "как получится".
type Config struct {
	// weekday (в нижнем регистре, "monday"..."sunday") -> окно.
	// Отсутствие дня означает "закрыто".
	WeeklyHours map[string]HoursRange

	// "YYYY-MM-DD" -> {}; дата полностью недоступна, что бы ни говорили
	// override и недельное расписание.
	BlackoutDates map[string]struct{}

	// "YYYY-MM-DD" -> окно; замещает недельное расписание на одну дату,
	// но не перекрывает blackout.
	Overrides map[string]HoursRange

	// Шаг сетки слотов в минутах.
	DurationMin int
}

var weekdayNames = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

// ParseConfig собирает Config из сырых JSON-полей корта.
// nil/пустые поля трактуются как отсутствие данных, не как ошибка.
func ParseConfig(weeklyHours, blackoutDates, overrides []byte, durationMin int) (Config, error) {
	cfg := Config{
		WeeklyHours:   map[string]HoursRange{},
		BlackoutDates: map[string]struct{}{},
		Overrides:     map[string]HoursRange{},
		DurationMin:   durationMin,
	}
	if cfg.DurationMin <= 0 {
		cfg.DurationMin = 60
	}

	if len(weeklyHours) > 0 {
		var raw map[string]HoursRange
		if err := json.Unmarshal(weeklyHours, &raw); err != nil {
			return Config{}, fmt.Errorf("weekly hours: %w", err)
		}
		for day, hours := range raw {
			key := strings.ToLower(strings.TrimSpace(day))
			if _, ok := weekdayNames[key]; !ok {
				return Config{}, fmt.Errorf("weekly hours: unknown weekday %q", day)
			}
			if err := validateHours(hours); err != nil {
				return Config{}, fmt.Errorf("weekly hours[%s]: %w", key, err)
			}
			cfg.WeeklyHours[key] = hours
		}
	}

	if len(blackoutDates) > 0 {
		var raw []string
		if err := json.Unmarshal(blackoutDates, &raw); err != nil {
			return Config{}, fmt.Errorf("blackout dates: %w", err)
		}
		for _, d := range raw {
			if _, err := ParseDate(d); err != nil {
				return Config{}, fmt.Errorf("blackout date %q: %w", d, err)
			}
			cfg.BlackoutDates[d] = struct{}{}
		}
	}

	if len(overrides) > 0 {
		var raw map[string]HoursRange
		if err := json.Unmarshal(overrides, &raw); err != nil {
			return Config{}, fmt.Errorf("availability overrides: %w", err)
		}
		for d, hours := range raw {
			if _, err := ParseDate(d); err != nil {
				return Config{}, fmt.Errorf("override date %q: %w", d, err)
			}
			if err := validateHours(hours); err != nil {
				return Config{}, fmt.Errorf("override[%s]: %w", d, err)
			}
			cfg.Overrides[d] = hours
		}
	}

	return cfg, nil
}

func validateHours(h HoursRange) error {
	open, err := ParseClock(h.Open)
	if err != nil {
		return fmt.Errorf("open %q: %w", h.Open, err)
	}
	close, err := ParseClock(h.Close)
	if err != nil {
		return fmt.Errorf("close %q: %w", h.Close, err)
	}
	if close < open {
		return fmt.Errorf("close %q before open %q: %w", h.Close, h.Open, ErrInvalidTimeRange)
	}
	return nil
}

// WeekdayKey возвращает ключ недельного расписания для даты.
func WeekdayKey(date time.Time) string {
	return strings.ToLower(date.Weekday().String())
}
