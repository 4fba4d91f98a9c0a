package models

import (
	"errors"
	"fmt"
	"time"
)

// Status is the service state of a scheduled departure.
// Stored as its name in the 'status' column.
type Status string

const (
	StatusOnTime    Status = "ON_TIME"
	StatusDelayed   Status = "DELAYED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus converts a stored status string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOnTime, StatusDelayed, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown schedule status: %q", s)
}

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusOnTime, StatusDelayed, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Layouts for the date and time-of-day text columns. Both formats are
// zero-padded and fixed width, so lexicographic order matches chronological
// order on every backend.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseClock validates an HH:MM time-of-day string and returns it zero-padded.
func ParseClock(s string) (string, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid HH:MM time %q: %w", s, err)
	}
	return t.Format(ClockLayout), nil
}

// ParseDate validates a YYYY-MM-DD date string and returns it in canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid YYYY-MM-DD date %q: %w", s, err)
	}
	return t.Format(DateLayout), nil
}

// Schedule represents a single row of the 'schedules' table: one departure of
// a train on a calendar date.
type Schedule struct {
	ID            int64     `db:"id" json:"id"`
	TrainID       int64     `db:"train_id" json:"trainId"`
	Destination   string    `db:"destination" json:"destination"`
	DepartureTime string    `db:"departure_time" json:"departureTime"` // HH:MM
	ArrivalTime   string    `db:"arrival_time" json:"arrivalTime"`     // HH:MM
	Platform      string    `db:"platform" json:"platform"`
	Status        Status    `db:"status" json:"status"`
	DelayMinutes  int       `db:"delay_minutes" json:"delayMinutes"`
	ScheduleDate  string    `db:"schedule_date" json:"scheduleDate"` // YYYY-MM-DD
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`

	// Train is the owning train, resolved by the train-info join queries.
	// Not serialized; clients see the flattened TrainScheduleDTO instead.
	Train *Train `json:"-"`
}

// Validate checks if the Schedule model has valid data
// Returns error if any validation fails
func (s *Schedule) Validate() error {
	if s.TrainID == 0 {
		return errors.New("train_id is required")
	}
	if s.Destination == "" {
		return errors.New("destination is required")
	}
	if _, err := time.Parse(ClockLayout, s.DepartureTime); err != nil {
		return fmt.Errorf("departure_time must be HH:MM: %w", err)
	}
	if _, err := time.Parse(ClockLayout, s.ArrivalTime); err != nil {
		return fmt.Errorf("arrival_time must be HH:MM: %w", err)
	}
	if s.Platform == "" {
		return errors.New("platform is required")
	}
	if !s.Status.Valid() {
		return fmt.Errorf("unknown schedule status: %q", s.Status)
	}
	if s.DelayMinutes < 0 {
		return errors.New("delay_minutes cannot be negative")
	}
	if _, err := time.Parse(DateLayout, s.ScheduleDate); err != nil {
		return fmt.Errorf("schedule_date must be YYYY-MM-DD: %w", err)
	}
	return nil
}
