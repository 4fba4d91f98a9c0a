package models

import (
	"errors"
	"time"
)

// Train represents a single row of the 'trains' table.
// A train owns zero or more Schedules; deleting a train cascades to them.
type Train struct {
	ID          int64     `db:"id" json:"id"`
	TrainNumber string    `db:"train_number" json:"trainNumber"` // unique across trains
	TrainName   string    `db:"train_name" json:"trainName"`
	Route       string    `db:"route" json:"route"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	// Schedules is populated only by the with-schedules query.
	Schedules []Schedule `json:"schedules,omitempty"`
}

// Validate checks if the Train model has valid data
// Returns error if any validation fails
func (t *Train) Validate() error {
	if t.TrainNumber == "" {
		return errors.New("train_number is required")
	}
	if t.TrainName == "" {
		return errors.New("train_name is required")
	}
	if t.Route == "" {
		return errors.New("route is required")
	}
	return nil
}
