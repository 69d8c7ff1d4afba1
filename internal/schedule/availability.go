package schedule

import "time"

// Причины недоступности даты.
const (
	ReasonBlackout    = "blackout"
	ReasonClosed      = "closed"
	ReasonMaintenance = "maintenance"
)

// DayAvailability — расчётная доступность корта на одну дату.
type DayAvailability struct {
	Date      string      `json:"date"`
	Available bool        `json:"available"`
	Hours     *HoursRange `json:"hours,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// ComputeAvailability считает доступность по датам.
// Приоритет: maintenance корта > blackout > override > недельное расписание.
// Чистая функция конфигурации и дат, без побочных эффектов; данные расписания
// при maintenance не трогаются — после его снятия расчёт возвращается к ним.
func ComputeAvailability(cfg Config, underMaintenance bool, dates []time.Time) []DayAvailability {
	result := make([]DayAvailability, 0, len(dates))

	for _, date := range dates {
		day := DayAvailability{Date: DateOnly(date).Format(DateLayout)}

		if underMaintenance {
			day.Reason = ReasonMaintenance
			result = append(result, day)
			continue
		}

		if _, blackout := cfg.BlackoutDates[day.Date]; blackout {
			day.Reason = ReasonBlackout
			result = append(result, day)
			continue
		}

		if hours, ok := cfg.Overrides[day.Date]; ok {
			day.Available = true
			day.Hours = &hours
			result = append(result, day)
			continue
		}

		if hours, ok := cfg.WeeklyHours[WeekdayKey(date)]; ok {
			day.Available = true
			day.Hours = &hours
			result = append(result, day)
			continue
		}

		day.Reason = ReasonClosed
		result = append(result, day)
	}

	return result
}
