package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/you/trainticker/models"

	_ "modernc.org/sqlite"
)

// SQLiteDB wraps a SQL database connection for SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *SQLiteDB) GetDB() *sql.DB {
	return s.db
}

// Ping checks database connectivity for the health endpoint
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// parseCreatedAt converts a stored RFC3339 string to time.Time.
// SQLite stores timestamps as text; a malformed value degrades to zero time.
func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// trainColumns is the column list shared by every train query.
const trainColumns = `
			id,
			train_number,
			train_name,
			route,
			created_at`

// scheduleColumns is the column list shared by every schedule query.
const scheduleColumns = `
			id,
			train_id,
			destination,
			departure_time,
			arrival_time,
			platform,
			status,
			delay_minutes,
			schedule_date,
			created_at`

// SQLiteTrainRepository handles database operations for trains using SQLite
type SQLiteTrainRepository struct {
	db *sql.DB
}

// NewSQLiteTrainRepository creates a new SQLiteTrainRepository
func NewSQLiteTrainRepository(db *sql.DB) *SQLiteTrainRepository {
	return &SQLiteTrainRepository{db: db}
}

func scanSQLiteTrain(scan func(...any) error) (models.Train, error) {
	var t models.Train
	var createdAt string
	if err := scan(&t.ID, &t.TrainNumber, &t.TrainName, &t.Route, &createdAt); err != nil {
		return models.Train{}, err
	}
	t.CreatedAt = parseCreatedAt(createdAt)
	return t, nil
}

// Create inserts a new train and fills in its generated ID
func (r *SQLiteTrainRepository) Create(ctx context.Context, t *models.Train) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid train: %w", err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO trains (train_number, train_name, route, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		t.TrainNumber, t.TrainName, t.Route, t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert train: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted train id: %w", err)
	}
	t.ID = id
	return nil
}

// GetByID returns the train with the given id, or nil when absent
func (r *SQLiteTrainRepository) GetByID(ctx context.Context, id int64) (*models.Train, error) {
	query := `SELECT` + trainColumns + `
		FROM trains
		WHERE id = ?
	`

	t, err := scanSQLiteTrain(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query train: %w", err)
	}
	return &t, nil
}

// GetByTrainNumber returns the train with the given unique number, or nil when absent
func (r *SQLiteTrainRepository) GetByTrainNumber(ctx context.Context, trainNumber string) (*models.Train, error) {
	if trainNumber == "" {
		return nil, errors.New("train_number cannot be empty")
	}

	query := `SELECT` + trainColumns + `
		FROM trains
		WHERE train_number = ?
	`

	t, err := scanSQLiteTrain(r.db.QueryRowContext(ctx, query, trainNumber).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query train by number: %w", err)
	}
	return &t, nil
}

// ExistsByTrainNumber reports whether a train with the given number exists
func (r *SQLiteTrainRepository) ExistsByTrainNumber(ctx context.Context, trainNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM trains WHERE train_number = ?)`
	if err := r.db.QueryRowContext(ctx, query, trainNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check train existence: %w", err)
	}
	return exists, nil
}

// List returns all trains ordered by train number
func (r *SQLiteTrainRepository) List(ctx context.Context) ([]models.Train, error) {
	query := `SELECT` + trainColumns + `
		FROM trains
		ORDER BY train_number
	`
	return r.queryTrains(ctx, query)
}

// SearchByRoute returns trains whose route contains the given text, case-insensitive
func (r *SQLiteTrainRepository) SearchByRoute(ctx context.Context, route string) ([]models.Train, error) {
	query := `SELECT` + trainColumns + `
		FROM trains
		WHERE LOWER(route) LIKE '%' || LOWER(?) || '%'
		ORDER BY train_number
	`
	return r.queryTrains(ctx, query, route)
}

// SearchByName returns trains whose name contains the given text, case-insensitive
func (r *SQLiteTrainRepository) SearchByName(ctx context.Context, trainName string) ([]models.Train, error) {
	query := `SELECT` + trainColumns + `
		FROM trains
		WHERE LOWER(train_name) LIKE '%' || LOWER(?) || '%'
		ORDER BY train_number
	`
	return r.queryTrains(ctx, query, trainName)
}

func (r *SQLiteTrainRepository) queryTrains(ctx context.Context, query string, args ...any) ([]models.Train, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trains: %w", err)
	}
	defer rows.Close()

	var trains []models.Train
	for rows.Next() {
		t, err := scanSQLiteTrain(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan train row: %w", err)
		}
		trains = append(trains, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating train rows: %w", err)
	}

	return trains, nil
}

// GetAllWithSchedules returns every train with its schedules attached,
// fetched in a single left join and de-duplicated per train.
func (r *SQLiteTrainRepository) GetAllWithSchedules(ctx context.Context) ([]models.Train, error) {
	query := `
		SELECT
			t.id,
			t.train_number,
			t.train_name,
			t.route,
			t.created_at,
			s.id,
			s.train_id,
			s.destination,
			s.departure_time,
			s.arrival_time,
			s.platform,
			s.status,
			s.delay_minutes,
			s.schedule_date,
			s.created_at
		FROM trains t
		LEFT JOIN schedules s ON s.train_id = t.id
		ORDER BY t.train_number, s.schedule_date, s.departure_time
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trains with schedules: %w", err)
	}
	defer rows.Close()

	var trains []models.Train
	index := make(map[int64]int)
	for rows.Next() {
		var t models.Train
		var trainCreatedAt string
		// Schedule side of the join is nullable
		var sID, sTrainID sql.NullInt64
		var sDest, sDep, sArr, sPlatform, sStatus, sDate, sCreatedAt sql.NullString
		var sDelay sql.NullInt64

		err := rows.Scan(
			&t.ID,
			&t.TrainNumber,
			&t.TrainName,
			&t.Route,
			&trainCreatedAt,
			&sID,
			&sTrainID,
			&sDest,
			&sDep,
			&sArr,
			&sPlatform,
			&sStatus,
			&sDelay,
			&sDate,
			&sCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan train with schedules row: %w", err)
		}
		t.CreatedAt = parseCreatedAt(trainCreatedAt)

		pos, seen := index[t.ID]
		if !seen {
			trains = append(trains, t)
			pos = len(trains) - 1
			index[t.ID] = pos
		}

		if sID.Valid {
			status, err := models.ParseStatus(sStatus.String)
			if err != nil {
				return nil, fmt.Errorf("failed to scan schedule row: %w", err)
			}
			trains[pos].Schedules = append(trains[pos].Schedules, models.Schedule{
				ID:            sID.Int64,
				TrainID:       sTrainID.Int64,
				Destination:   sDest.String,
				DepartureTime: sDep.String,
				ArrivalTime:   sArr.String,
				Platform:      sPlatform.String,
				Status:        status,
				DelayMinutes:  int(sDelay.Int64),
				ScheduleDate:  sDate.String,
				CreatedAt:     parseCreatedAt(sCreatedAt.String),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating train rows: %w", err)
	}

	return trains, nil
}

// Update rewrites the mutable fields of an existing train
func (r *SQLiteTrainRepository) Update(ctx context.Context, t *models.Train) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid train: %w", err)
	}

	query := `
		UPDATE trains
		SET train_number = ?, train_name = ?, route = ?
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, t.TrainNumber, t.TrainName, t.Route, t.ID); err != nil {
		return fmt.Errorf("failed to update train: %w", err)
	}
	return nil
}

// Delete removes a train; its schedules go with it via the cascading foreign key
func (r *SQLiteTrainRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM trains WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete train: %w", err)
	}
	return nil
}

// SQLiteScheduleRepository handles database operations for schedules using SQLite
type SQLiteScheduleRepository struct {
	db *sql.DB
}

// NewSQLiteScheduleRepository creates a new SQLiteScheduleRepository
func NewSQLiteScheduleRepository(db *sql.DB) *SQLiteScheduleRepository {
	return &SQLiteScheduleRepository{db: db}
}

// Create inserts a new schedule and fills in its generated ID
func (r *SQLiteScheduleRepository) Create(ctx context.Context, s *models.Schedule) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO schedules
			(train_id, destination, departure_time, arrival_time, platform,
			 status, delay_minutes, schedule_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		s.TrainID, s.Destination, s.DepartureTime, s.ArrivalTime, s.Platform,
		s.Status.String(), s.DelayMinutes, s.ScheduleDate, s.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted schedule id: %w", err)
	}
	s.ID = id
	return nil
}

// Delete removes a single schedule
func (r *SQLiteScheduleRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

// GetByDate returns all schedules for a date, ascending by departure time
func (r *SQLiteScheduleRepository) GetByDate(ctx context.Context, date string) ([]models.Schedule, error) {
	query := `SELECT` + scheduleColumns + `
		FROM schedules
		WHERE schedule_date = ?
		ORDER BY departure_time
	`
	return r.querySchedules(ctx, query, date)
}

// GetByDateAndStatus returns a date's schedules filtered by status,
// ascending by departure time
func (r *SQLiteScheduleRepository) GetByDateAndStatus(ctx context.Context, date string, status models.Status) ([]models.Schedule, error) {
	query := `SELECT` + scheduleColumns + `
		FROM schedules
		WHERE schedule_date = ? AND status = ?
		ORDER BY departure_time
	`
	return r.querySchedules(ctx, query, date, status.String())
}

// CountByDateAndStatus returns how many schedules a date has in the given status
func (r *SQLiteScheduleRepository) CountByDateAndStatus(ctx context.Context, date string, status models.Status) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM schedules WHERE schedule_date = ? AND status = ?`
	if err := r.db.QueryRowContext(ctx, query, date, status.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count schedules: %w", err)
	}
	return count, nil
}

func (r *SQLiteScheduleRepository) querySchedules(ctx context.Context, query string, args ...any) ([]models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.Schedule
	for rows.Next() {
		var s models.Schedule
		var status, createdAt string
		err := rows.Scan(
			&s.ID,
			&s.TrainID,
			&s.Destination,
			&s.DepartureTime,
			&s.ArrivalTime,
			&s.Platform,
			&status,
			&s.DelayMinutes,
			&s.ScheduleDate,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		if s.Status, err = models.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		s.CreatedAt = parseCreatedAt(createdAt)
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	return schedules, nil
}

// joinedScheduleColumns selects the schedule plus its owning train in one fetch.
const joinedScheduleColumns = `
			s.id,
			s.train_id,
			s.destination,
			s.departure_time,
			s.arrival_time,
			s.platform,
			s.status,
			s.delay_minutes,
			s.schedule_date,
			s.created_at,
			t.id,
			t.train_number,
			t.train_name,
			t.route,
			t.created_at`

// GetByDateWithTrainInfo returns a date's schedules with the owning train
// resolved in the same query, ascending by departure time. This is the query
// behind every date-based listing.
func (r *SQLiteScheduleRepository) GetByDateWithTrainInfo(ctx context.Context, date string) ([]models.Schedule, error) {
	query := `SELECT` + joinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.schedule_date = ?
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, date)
}

// GetUpcoming returns a date's schedules departing at or after the given
// HH:MM time, ascending by departure time
func (r *SQLiteScheduleRepository) GetUpcoming(ctx context.Context, date, clock string) ([]models.Schedule, error) {
	query := `SELECT` + joinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.schedule_date = ? AND s.departure_time >= ?
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, date, clock)
}

// SearchByDestination returns schedules whose destination contains the given
// text, case-insensitive, ascending by departure time
func (r *SQLiteScheduleRepository) SearchByDestination(ctx context.Context, destination string) ([]models.Schedule, error) {
	query := `SELECT` + joinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE LOWER(s.destination) LIKE '%' || LOWER(?) || '%'
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, destination)
}

// GetByPlatform returns schedules departing from an exact platform label,
// ascending by departure time
func (r *SQLiteScheduleRepository) GetByPlatform(ctx context.Context, platform string) ([]models.Schedule, error) {
	query := `SELECT` + joinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.platform = ?
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, platform)
}

// GetDelayed returns a date's delayed schedules, worst delays first
func (r *SQLiteScheduleRepository) GetDelayed(ctx context.Context, date string) ([]models.Schedule, error) {
	query := `SELECT` + joinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.schedule_date = ? AND s.status = 'DELAYED'
		ORDER BY s.delay_minutes DESC
	`
	return r.queryJoinedSchedules(ctx, query, date)
}

// GetInTimeRange returns a date's schedules departing within [start, end]
// inclusive, ascending by departure time. An inverted range falls through to
// SQL BETWEEN, which matches nothing.
func (r *SQLiteScheduleRepository) GetInTimeRange(ctx context.Context, date, start, end string) ([]models.Schedule, error) {
	query := `SELECT` + joinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.schedule_date = ? AND s.departure_time BETWEEN ? AND ?
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, date, start, end)
}

func (r *SQLiteScheduleRepository) queryJoinedSchedules(ctx context.Context, query string, args ...any) ([]models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.Schedule
	for rows.Next() {
		var s models.Schedule
		var t models.Train
		var status, scheduleCreatedAt, trainCreatedAt string
		err := rows.Scan(
			&s.ID,
			&s.TrainID,
			&s.Destination,
			&s.DepartureTime,
			&s.ArrivalTime,
			&s.Platform,
			&status,
			&s.DelayMinutes,
			&s.ScheduleDate,
			&scheduleCreatedAt,
			&t.ID,
			&t.TrainNumber,
			&t.TrainName,
			&t.Route,
			&trainCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		if s.Status, err = models.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		s.CreatedAt = parseCreatedAt(scheduleCreatedAt)
		t.CreatedAt = parseCreatedAt(trainCreatedAt)
		s.Train = &t
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	return schedules, nil
}
