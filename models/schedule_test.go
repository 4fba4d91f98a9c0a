package models

import "testing"

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"ON_TIME", "DELAYED", "CANCELLED"} {
		status, err := ParseStatus(valid)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned error: %v", valid, err)
		}
		if status.String() != valid {
			t.Errorf("ParseStatus(%q) = %q, want round-trip", valid, status)
		}
	}

	for _, invalid := range []string{"", "on_time", "LATE", "DELAYED "} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", invalid)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in        string
		want      string
		wantError bool
	}{
		{"08:00", "08:00", false},
		{"8:00", "08:00", false},
		{"23:59", "23:59", false},
		{"", "", true},
		{"24:00", "", true},
		{"08:60", "", true},
		{"0800", "", true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantError {
			t.Errorf("ParseClock(%q) error = %v, wantError %v", tt.in, err, tt.wantError)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseClock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	if got, err := ParseDate("2026-08-29"); err != nil || got != "2026-08-29" {
		t.Errorf("ParseDate(2026-08-29) = %q, %v", got, err)
	}
	for _, invalid := range []string{"", "29-08-2026", "2026-13-01", "2026-08-32", "tomorrow"} {
		if _, err := ParseDate(invalid); err == nil {
			t.Errorf("ParseDate(%q) expected error, got nil", invalid)
		}
	}
}

func TestScheduleValidation(t *testing.T) {
	valid := func() Schedule {
		return Schedule{
			TrainID:       1,
			Destination:   "Boston",
			DepartureTime: "08:00",
			ArrivalTime:   "10:30",
			Platform:      "A1",
			Status:        StatusOnTime,
			ScheduleDate:  "2026-08-29",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Schedule)
		wantError bool
	}{
		{"valid schedule", func(s *Schedule) {}, false},
		{"missing train id", func(s *Schedule) { s.TrainID = 0 }, true},
		{"missing destination", func(s *Schedule) { s.Destination = "" }, true},
		{"bad departure time", func(s *Schedule) { s.DepartureTime = "25:00" }, true},
		{"bad arrival time", func(s *Schedule) { s.ArrivalTime = "ten" }, true},
		{"missing platform", func(s *Schedule) { s.Platform = "" }, true},
		{"unknown status", func(s *Schedule) { s.Status = "LATE" }, true},
		{"negative delay", func(s *Schedule) { s.DelayMinutes = -1 }, true},
		{"bad schedule date", func(s *Schedule) { s.ScheduleDate = "08/29/2026" }, true},
		{"delayed with minutes", func(s *Schedule) { s.Status = StatusDelayed; s.DelayMinutes = 20 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
