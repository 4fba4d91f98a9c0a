package models

import "testing"

func sampleSchedule() Schedule {
	return Schedule{
		ID:            1,
		TrainID:       7,
		Destination:   "Boston",
		DepartureTime: "08:00",
		ArrivalTime:   "10:30",
		Platform:      "A1",
		Status:        StatusDelayed,
		DelayMinutes:  15,
		ScheduleDate:  "2026-08-29",
		Train: &Train{
			ID:          7,
			TrainNumber: "T100",
			TrainName:   "Express",
			Route:       "Springfield - Boston",
		},
	}
}

func TestNewTrainScheduleDTOFlattensTrainAndSchedule(t *testing.T) {
	s := sampleSchedule()
	dto := NewTrainScheduleDTO(&s)

	if dto.TrainNumber != "T100" {
		t.Errorf("Expected trainNumber T100, got %s", dto.TrainNumber)
	}
	if dto.TrainName != "Express" {
		t.Errorf("Expected trainName Express, got %s", dto.TrainName)
	}
	if dto.Route != "Springfield - Boston" {
		t.Errorf("Expected route Springfield - Boston, got %s", dto.Route)
	}
	if dto.Destination != "Boston" {
		t.Errorf("Expected destination Boston, got %s", dto.Destination)
	}
	if dto.DepartureTime != "08:00" || dto.ArrivalTime != "10:30" {
		t.Errorf("Expected times 08:00/10:30, got %s/%s", dto.DepartureTime, dto.ArrivalTime)
	}
	if dto.Platform != "A1" {
		t.Errorf("Expected platform A1, got %s", dto.Platform)
	}
	if dto.Status != "DELAYED" {
		t.Errorf("Expected status DELAYED, got %s", dto.Status)
	}
	if dto.DelayMinutes != 15 {
		t.Errorf("Expected delayMinutes 15, got %d", dto.DelayMinutes)
	}
	if !dto.Delayed || dto.OnTime {
		t.Errorf("Expected delayed=true onTime=false, got delayed=%v onTime=%v", dto.Delayed, dto.OnTime)
	}
	if dto.FormattedStatus != "DELAYED (+15 min)" {
		t.Errorf("Expected formattedStatus DELAYED (+15 min), got %s", dto.FormattedStatus)
	}
}

func TestFormattedStatus(t *testing.T) {
	tests := []struct {
		name         string
		status       Status
		delayMinutes int
		want         string
	}{
		{"on time", StatusOnTime, 0, "ON_TIME"},
		{"delayed with minutes", StatusDelayed, 15, "DELAYED (+15 min)"},
		{"delayed without minutes", StatusDelayed, 0, "DELAYED"},
		{"cancelled never gets a suffix", StatusCancelled, 30, "CANCELLED"},
		{"on time ignores stray delay minutes", StatusOnTime, 5, "ON_TIME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSchedule()
			s.Status = tt.status
			s.DelayMinutes = tt.delayMinutes
			dto := NewTrainScheduleDTO(&s)
			if dto.FormattedStatus != tt.want {
				t.Errorf("FormattedStatus = %q, want %q", dto.FormattedStatus, tt.want)
			}
		})
	}
}

func TestNewScheduleStats(t *testing.T) {
	stats := NewScheduleStats(3, 1, 1)

	if stats.TotalCount != 5 {
		t.Errorf("Expected totalCount 5, got %d", stats.TotalCount)
	}
	if stats.OnTimeCount+stats.DelayedCount+stats.CancelledCount != stats.TotalCount {
		t.Error("Counts do not sum to totalCount")
	}
	if stats.OnTimePercentage != 60 {
		t.Errorf("Expected onTimePercentage 60, got %f", stats.OnTimePercentage)
	}
	if stats.DelayedPercentage != 20 {
		t.Errorf("Expected delayedPercentage 20, got %f", stats.DelayedPercentage)
	}
}

func TestNewScheduleStatsEmptyDay(t *testing.T) {
	stats := NewScheduleStats(0, 0, 0)

	if stats.TotalCount != 0 {
		t.Errorf("Expected totalCount 0, got %d", stats.TotalCount)
	}
	if stats.OnTimePercentage != 0 || stats.DelayedPercentage != 0 {
		t.Errorf("Expected zero percentages for empty day, got %f/%f",
			stats.OnTimePercentage, stats.DelayedPercentage)
	}
}
