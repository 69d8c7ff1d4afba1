package schedule

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func mustTime(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

//
// ComputeAvailability
//

func testConfig() Config {
	return Config{
		WeeklyHours: map[string]HoursRange{
			"monday": {Open: "06:00", Close: "10:00"},
			"friday": {Open: "09:00", Close: "21:00"},
		},
		BlackoutDates: map[string]struct{}{
			"2025-03-10": {},
		},
		Overrides: map[string]HoursRange{
			"2025-03-17": {Open: "08:00", Close: "12:00"},
		},
		DurationMin: 60,
	}
}

func TestComputeAvailability_WeeklyDefault(t *testing.T) {
	days := ComputeAvailability(testConfig(), false, []time.Time{mustDate(t, "2025-03-03")}) // понедельник

	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	d := days[0]
	if !d.Available {
		t.Fatalf("expected available, got reason %q", d.Reason)
	}
	if d.Hours == nil || d.Hours.Open != "06:00" || d.Hours.Close != "10:00" {
		t.Fatalf("unexpected hours: %+v", d.Hours)
	}
}

func TestComputeAvailability_ClosedWeekday(t *testing.T) {
	days := ComputeAvailability(testConfig(), false, []time.Time{mustDate(t, "2025-03-04")}) // вторник

	if days[0].Available {
		t.Fatalf("expected closed tuesday")
	}
	if days[0].Reason != ReasonClosed {
		t.Fatalf("expected reason %q, got %q", ReasonClosed, days[0].Reason)
	}
}

func TestComputeAvailability_BlackoutBeatsWeekly(t *testing.T) {
	// 2025-03-10 — понедельник с недельным расписанием, но в blackout.
	days := ComputeAvailability(testConfig(), false, []time.Time{mustDate(t, "2025-03-10")})

	if days[0].Available {
		t.Fatalf("expected blackout to win over weekly hours")
	}
	if days[0].Reason != ReasonBlackout {
		t.Fatalf("expected reason %q, got %q", ReasonBlackout, days[0].Reason)
	}
}

func TestComputeAvailability_BlackoutBeatsOverride(t *testing.T) {
	cfg := testConfig()
	cfg.BlackoutDates["2025-03-17"] = struct{}{}

	days := ComputeAvailability(cfg, false, []time.Time{mustDate(t, "2025-03-17")})
	if days[0].Available {
		t.Fatalf("expected blackout to win over override")
	}
	if days[0].Reason != ReasonBlackout {
		t.Fatalf("expected reason %q, got %q", ReasonBlackout, days[0].Reason)
	}
}

func TestComputeAvailability_OverrideBeatsWeekly(t *testing.T) {
	// 2025-03-17 — понедельник, но на дату назначен override.
	days := ComputeAvailability(testConfig(), false, []time.Time{mustDate(t, "2025-03-17")})

	d := days[0]
	if !d.Available {
		t.Fatalf("expected available, got reason %q", d.Reason)
	}
	if d.Hours.Open != "08:00" || d.Hours.Close != "12:00" {
		t.Fatalf("expected override hours 08:00-12:00, got %+v", d.Hours)
	}
}

func TestComputeAvailability_MaintenanceForcesUnavailable(t *testing.T) {
	days := ComputeAvailability(testConfig(), true, []time.Time{
		mustDate(t, "2025-03-03"),
		mustDate(t, "2025-03-17"),
	})

	for _, d := range days {
		if d.Available {
			t.Fatalf("expected %s unavailable under maintenance", d.Date)
		}
		if d.Reason != ReasonMaintenance {
			t.Fatalf("expected reason %q, got %q", ReasonMaintenance, d.Reason)
		}
	}
}

//
// SlotGrid
//

func TestSlotGrid_MondayFourSlots(t *testing.T) {
	grid, err := SlotGrid(mustDate(t, "2025-03-03"), HoursRange{Open: "06:00", Close: "10:00"}, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(grid) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(grid))
	}

	want := []TimeRange{
		{Start: mustTime(t, 2025, 3, 3, 6, 0), End: mustTime(t, 2025, 3, 3, 7, 0)},
		{Start: mustTime(t, 2025, 3, 3, 7, 0), End: mustTime(t, 2025, 3, 3, 8, 0)},
		{Start: mustTime(t, 2025, 3, 3, 8, 0), End: mustTime(t, 2025, 3, 3, 9, 0)},
		{Start: mustTime(t, 2025, 3, 3, 9, 0), End: mustTime(t, 2025, 3, 3, 10, 0)},
	}
	for i, tr := range grid {
		if !tr.Start.Equal(want[i].Start) || !tr.End.Equal(want[i].End) {
			t.Fatalf("slot %d: expected %v, got %v", i, want[i], tr)
		}
	}
}

func TestSlotGrid_TrailingPartialDropped(t *testing.T) {
	// 06:00-10:30 при шаге 60 минут: хвост 10:00-11:00 не влезает.
	grid, err := SlotGrid(mustDate(t, "2025-03-03"), HoursRange{Open: "06:00", Close: "10:30"}, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(grid))
	}
	last := grid[len(grid)-1]
	if !last.End.Equal(mustTime(t, 2025, 3, 3, 10, 0)) {
		t.Fatalf("expected last slot to end at 10:00, got %v", last.End)
	}
}

func TestSlotGrid_ZeroWindow(t *testing.T) {
	grid, err := SlotGrid(mustDate(t, "2025-03-03"), HoursRange{Open: "10:00", Close: "10:00"}, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid) != 0 {
		t.Fatalf("expected 0 slots, got %d", len(grid))
	}
}

func TestSlotGrid_InvalidDuration(t *testing.T) {
	_, err := SlotGrid(mustDate(t, "2025-03-03"), HoursRange{Open: "06:00", Close: "10:00"}, 0)
	if !errors.Is(err, ErrSlotDuration) {
		t.Fatalf("expected ErrSlotDuration, got %v", err)
	}
}

//
// ParseConfig
//

func TestParseConfig_RejectsMalformedOverrideKey(t *testing.T) {
	_, err := ParseConfig(nil, nil, []byte(`{"17-03-2025": {"open": "08:00", "close": "12:00"}}`), 60)
	if err == nil {
		t.Fatalf("expected error for malformed override date key")
	}
}

func TestParseConfig_RejectsUnknownWeekday(t *testing.T) {
	_, err := ParseConfig([]byte(`{"someday": {"open": "08:00", "close": "12:00"}}`), nil, nil, 60)
	if err == nil {
		t.Fatalf("expected error for unknown weekday")
	}
}

func TestParseConfig_RejectsBadClock(t *testing.T) {
	_, err := ParseConfig([]byte(`{"monday": {"open": "6am", "close": "12:00"}}`), nil, nil, 60)
	if err == nil {
		t.Fatalf("expected error for malformed clock value")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(nil, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DurationMin != 60 {
		t.Fatalf("expected default duration 60, got %d", cfg.DurationMin)
	}
	if len(cfg.WeeklyHours) != 0 || len(cfg.BlackoutDates) != 0 || len(cfg.Overrides) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestParseConfig_CaseInsensitiveWeekday(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"Monday": {"open": "06:00", "close": "10:00"}}`), nil, nil, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cfg.WeeklyHours["monday"]; !ok {
		t.Fatalf("expected weekday key to be normalized to lower case")
	}
}

//
// CanCancel
//

func TestCanCancel_RefundEligibleBeforeCutoff(t *testing.T) {
	start := mustTime(t, 2025, 3, 3, 10, 0)
	end := mustTime(t, 2025, 3, 3, 11, 0)
	now := mustTime(t, 2025, 3, 3, 7, 0)

	d := CanCancel(start, end, now, 2*time.Hour)
	if !d.Allowed || !d.RefundEligible {
		t.Fatalf("expected allowed refund-eligible cancel, got %+v", d)
	}
}

func TestCanCancel_NonRefundableWithinCutoff(t *testing.T) {
	start := mustTime(t, 2025, 3, 3, 10, 0)
	end := mustTime(t, 2025, 3, 3, 11, 0)
	now := mustTime(t, 2025, 3, 3, 9, 0)

	d := CanCancel(start, end, now, 2*time.Hour)
	if !d.Allowed {
		t.Fatalf("expected cancel allowed within cutoff")
	}
	if d.RefundEligible {
		t.Fatalf("expected non-refundable within cutoff")
	}
}

func TestCanCancel_DeniedAfterEnd(t *testing.T) {
	start := mustTime(t, 2025, 3, 3, 10, 0)
	end := mustTime(t, 2025, 3, 3, 11, 0)
	now := mustTime(t, 2025, 3, 3, 11, 0)

	d := CanCancel(start, end, now, 2*time.Hour)
	if d.Allowed {
		t.Fatalf("expected cancel denied after booking end")
	}
}

//
// DatesInRange / Paginate
//

func TestDatesInRange_InclusiveAndSwapped(t *testing.T) {
	dates := DatesInRange(mustDate(t, "2025-03-05"), mustDate(t, "2025-03-03"))
	if len(dates) != 3 {
		t.Fatalf("expected 3 dates, got %d", len(dates))
	}
	if !dates[0].Equal(mustDate(t, "2025-03-03")) || !dates[2].Equal(mustDate(t, "2025-03-05")) {
		t.Fatalf("unexpected bounds: %v .. %v", dates[0], dates[2])
	}
}

func TestPaginate_Basic(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, 2, 2)
	if len(p.Items) != 2 || p.Items[0] != 3 {
		t.Fatalf("unexpected page items: %v", p.Items)
	}
	if !p.HasNext || !p.HasPrev {
		t.Fatalf("expected both neighbours, got %+v", p)
	}
	if p.Total != 5 {
		t.Fatalf("expected total 5, got %d", p.Total)
	}
}
