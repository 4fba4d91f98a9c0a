package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/you/trainticker/models"
)

// EnsureSchema creates the trains and schedules tables if they do not exist.
// Only the SQLite backend owns its schema; a Postgres database is expected to
// be provisioned externally.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS trains (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			train_number TEXT NOT NULL UNIQUE,
			train_name TEXT NOT NULL,
			route TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			train_id INTEGER NOT NULL REFERENCES trains(id) ON DELETE CASCADE,
			destination TEXT NOT NULL,
			departure_time TEXT NOT NULL,
			arrival_time TEXT NOT NULL,
			platform TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'ON_TIME',
			delay_minutes INTEGER NOT NULL DEFAULT 0,
			schedule_date TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_date_departure
			ON schedules(schedule_date, departure_time)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_train_id
			ON schedules(train_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// sampleTrain pairs a train with the departures it runs on the seed date.
type sampleTrain struct {
	train     models.Train
	schedules []models.Schedule
}

var sampleFleet = []sampleTrain{
	{
		train: models.Train{TrainNumber: "T100", TrainName: "Coastal Express", Route: "Springfield - Boston"},
		schedules: []models.Schedule{
			{Destination: "Boston", DepartureTime: "08:00", ArrivalTime: "10:30", Platform: "A1", Status: models.StatusOnTime},
			{Destination: "Boston", DepartureTime: "14:00", ArrivalTime: "16:30", Platform: "A1", Status: models.StatusDelayed, DelayMinutes: 15},
		},
	},
	{
		train: models.Train{TrainNumber: "T205", TrainName: "Capitol Limited", Route: "Springfield - Washington"},
		schedules: []models.Schedule{
			{Destination: "Washington", DepartureTime: "09:15", ArrivalTime: "13:45", Platform: "B2", Status: models.StatusOnTime},
		},
	},
	{
		train: models.Train{TrainNumber: "T310", TrainName: "Lakeshore Flyer", Route: "Springfield - Chicago"},
		schedules: []models.Schedule{
			{Destination: "Chicago", DepartureTime: "07:30", ArrivalTime: "15:00", Platform: "C1", Status: models.StatusDelayed, DelayMinutes: 40},
			{Destination: "Chicago", DepartureTime: "18:20", ArrivalTime: "23:55", Platform: "C1", Status: models.StatusCancelled},
		},
	},
	{
		train: models.Train{TrainNumber: "T412", TrainName: "Harbor Local", Route: "Springfield - New Haven"},
		schedules: []models.Schedule{
			{Destination: "New Haven", DepartureTime: "12:05", ArrivalTime: "13:40", Platform: "A2", Status: models.StatusOnTime},
		},
	},
}

// SeedSampleData inserts a small sample fleet with departures on the given
// date. Idempotent: trains already present are skipped.
func SeedSampleData(ctx context.Context, trains *SQLiteTrainRepository, schedules *SQLiteScheduleRepository, date string) error {
	for _, sample := range sampleFleet {
		exists, err := trains.ExistsByTrainNumber(ctx, sample.train.TrainNumber)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		train := sample.train
		if err := trains.Create(ctx, &train); err != nil {
			return err
		}

		for _, schedule := range sample.schedules {
			schedule.TrainID = train.ID
			schedule.ScheduleDate = date
			if err := schedules.Create(ctx, &schedule); err != nil {
				return err
			}
		}
		log.Printf("Seeded train %s (%s) with %d schedules for %s",
			train.TrainNumber, train.TrainName, len(sample.schedules), date)
	}
	return nil
}
