package schedule

import "time"

// SlotGrid разбивает рабочее окно даты на слоты фиксированной длительности.
// "Хвост", который вылезает за close, отбрасывается целиком, не укорачивается.
// Окно нулевой длины даёт пустую сетку.
func SlotGrid(date time.Time, hours HoursRange, durationMin int) ([]TimeRange, error) {
	if durationMin <= 0 {
		return nil, ErrSlotDuration
	}

	window, err := hours.Window(date)
	if err != nil {
		return nil, err
	}
	if !window.End.After(window.Start) {
		return []TimeRange{}, nil
	}

	step := time.Duration(durationMin) * time.Minute

	var slots []TimeRange
	for cur := window.Start; !cur.Add(step).After(window.End); cur = cur.Add(step) {
		slots = append(slots, TimeRange{Start: cur, End: cur.Add(step)})
	}

	return slots, nil
}
