package models

import "fmt"

// TrainScheduleDTO is the flattened Train+Schedule projection returned by the
// /api/trains endpoints. Departure and arrival times are HH:MM strings and
// the status is the enum name, so the struct serializes without custom
// marshaling.
type TrainScheduleDTO struct {
	TrainNumber     string `json:"trainNumber"`
	TrainName       string `json:"trainName"`
	Route           string `json:"route"`
	Destination     string `json:"destination"`
	DepartureTime   string `json:"departureTime"`
	ArrivalTime     string `json:"arrivalTime"`
	Platform        string `json:"platform"`
	Status          string `json:"status"`
	DelayMinutes    int    `json:"delayMinutes"`
	Delayed         bool   `json:"delayed"`
	OnTime          bool   `json:"onTime"`
	FormattedStatus string `json:"formattedStatus"`
}

// NewTrainScheduleDTO flattens a schedule and its resolved train into the
// client-facing shape. The schedule's Train must be populated; all callers
// reach this through the train-info join queries.
func NewTrainScheduleDTO(s *Schedule) TrainScheduleDTO {
	dto := TrainScheduleDTO{
		TrainNumber:   s.Train.TrainNumber,
		TrainName:     s.Train.TrainName,
		Route:         s.Train.Route,
		Destination:   s.Destination,
		DepartureTime: s.DepartureTime,
		ArrivalTime:   s.ArrivalTime,
		Platform:      s.Platform,
		Status:        s.Status.String(),
		DelayMinutes:  s.DelayMinutes,
	}
	dto.Delayed = s.Status == StatusDelayed
	dto.OnTime = s.Status == StatusOnTime
	dto.FormattedStatus = dto.Status
	if dto.Delayed && dto.DelayMinutes > 0 {
		dto.FormattedStatus = fmt.Sprintf("%s (+%d min)", dto.Status, dto.DelayMinutes)
	}
	return dto
}

// ScheduleStats aggregates one day's schedule counts by status.
type ScheduleStats struct {
	OnTimeCount       int64   `json:"onTimeCount"`
	DelayedCount      int64   `json:"delayedCount"`
	CancelledCount    int64   `json:"cancelledCount"`
	TotalCount        int64   `json:"totalCount"`
	OnTimePercentage  float64 `json:"onTimePercentage"`
	DelayedPercentage float64 `json:"delayedPercentage"`
}

// NewScheduleStats derives the total and percentages from the three status
// counts. Percentages are 0 for an empty day rather than dividing by zero.
func NewScheduleStats(onTime, delayed, cancelled int64) ScheduleStats {
	stats := ScheduleStats{
		OnTimeCount:    onTime,
		DelayedCount:   delayed,
		CancelledCount: cancelled,
		TotalCount:     onTime + delayed + cancelled,
	}
	if stats.TotalCount > 0 {
		stats.OnTimePercentage = float64(onTime) / float64(stats.TotalCount) * 100
		stats.DelayedPercentage = float64(delayed) / float64(stats.TotalCount) * 100
	}
	return stats
}
