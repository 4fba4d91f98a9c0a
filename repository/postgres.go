package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/you/trainticker/models"
)

// PostgresDB wraps a pgx connection pool. Selected when DATABASE_URL is set;
// the schema is managed externally on this backend.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgresDB creates a new Postgres connection pool
func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the connection pool
func (p *PostgresDB) Close() {
	p.pool.Close()
}

// Pool returns the underlying connection pool
func (p *PostgresDB) Pool() *pgxpool.Pool {
	return p.pool
}

// Ping checks database connectivity for the health endpoint
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

const pgTrainColumns = `
			id,
			train_number,
			train_name,
			route,
			created_at`

const pgScheduleColumns = `
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

const pgJoinedScheduleColumns = `
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

// PostgresTrainRepository handles database operations for trains using Postgres
type PostgresTrainRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTrainRepository creates a new PostgresTrainRepository
func NewPostgresTrainRepository(pool *pgxpool.Pool) *PostgresTrainRepository {
	return &PostgresTrainRepository{pool: pool}
}

// Create inserts a new train and fills in its generated ID
func (r *PostgresTrainRepository) Create(ctx context.Context, t *models.Train) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid train: %w", err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO trains (train_number, train_name, route, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, t.TrainNumber, t.TrainName, t.Route, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to insert train: %w", err)
	}
	return nil
}

// GetByID returns the train with the given id, or nil when absent
func (r *PostgresTrainRepository) GetByID(ctx context.Context, id int64) (*models.Train, error) {
	query := `SELECT` + pgTrainColumns + `
		FROM trains
		WHERE id = $1
	`

	var t models.Train
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.TrainNumber, &t.TrainName, &t.Route, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query train: %w", err)
	}
	return &t, nil
}

// GetByTrainNumber returns the train with the given unique number, or nil when absent
func (r *PostgresTrainRepository) GetByTrainNumber(ctx context.Context, trainNumber string) (*models.Train, error) {
	if trainNumber == "" {
		return nil, errors.New("train_number cannot be empty")
	}

	query := `SELECT` + pgTrainColumns + `
		FROM trains
		WHERE train_number = $1
	`

	var t models.Train
	err := r.pool.QueryRow(ctx, query, trainNumber).Scan(&t.ID, &t.TrainNumber, &t.TrainName, &t.Route, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query train by number: %w", err)
	}
	return &t, nil
}

// ExistsByTrainNumber reports whether a train with the given number exists
func (r *PostgresTrainRepository) ExistsByTrainNumber(ctx context.Context, trainNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM trains WHERE train_number = $1)`
	if err := r.pool.QueryRow(ctx, query, trainNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check train existence: %w", err)
	}
	return exists, nil
}

// List returns all trains ordered by train number
func (r *PostgresTrainRepository) List(ctx context.Context) ([]models.Train, error) {
	query := `SELECT` + pgTrainColumns + `
		FROM trains
		ORDER BY train_number
	`
	return r.queryTrains(ctx, query)
}

// SearchByRoute returns trains whose route contains the given text, case-insensitive
func (r *PostgresTrainRepository) SearchByRoute(ctx context.Context, route string) ([]models.Train, error) {
	query := `SELECT` + pgTrainColumns + `
		FROM trains
		WHERE route ILIKE '%' || $1 || '%'
		ORDER BY train_number
	`
	return r.queryTrains(ctx, query, route)
}

// SearchByName returns trains whose name contains the given text, case-insensitive
func (r *PostgresTrainRepository) SearchByName(ctx context.Context, trainName string) ([]models.Train, error) {
	query := `SELECT` + pgTrainColumns + `
		FROM trains
		WHERE train_name ILIKE '%' || $1 || '%'
		ORDER BY train_number
	`
	return r.queryTrains(ctx, query, trainName)
}

func (r *PostgresTrainRepository) queryTrains(ctx context.Context, query string, args ...any) ([]models.Train, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trains: %w", err)
	}
	defer rows.Close()

	var trains []models.Train
	for rows.Next() {
		var t models.Train
		if err := rows.Scan(&t.ID, &t.TrainNumber, &t.TrainName, &t.Route, &t.CreatedAt); err != nil {
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
func (r *PostgresTrainRepository) GetAllWithSchedules(ctx context.Context) ([]models.Train, error) {
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

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trains with schedules: %w", err)
	}
	defer rows.Close()

	var trains []models.Train
	index := make(map[int64]int)
	for rows.Next() {
		var t models.Train
		var sID, sTrainID *int64
		var sDest, sDep, sArr, sPlatform, sStatus, sDate *string
		var sDelay *int
		var sCreatedAt *time.Time

		err := rows.Scan(
			&t.ID,
			&t.TrainNumber,
			&t.TrainName,
			&t.Route,
			&t.CreatedAt,
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

		pos, seen := index[t.ID]
		if !seen {
			trains = append(trains, t)
			pos = len(trains) - 1
			index[t.ID] = pos
		}

		if sID != nil {
			status, err := models.ParseStatus(*sStatus)
			if err != nil {
				return nil, fmt.Errorf("failed to scan schedule row: %w", err)
			}
			schedule := models.Schedule{
				ID:            *sID,
				TrainID:       *sTrainID,
				Destination:   *sDest,
				DepartureTime: *sDep,
				ArrivalTime:   *sArr,
				Platform:      *sPlatform,
				Status:        status,
				DelayMinutes:  *sDelay,
				ScheduleDate:  *sDate,
			}
			if sCreatedAt != nil {
				schedule.CreatedAt = *sCreatedAt
			}
			trains[pos].Schedules = append(trains[pos].Schedules, schedule)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating train rows: %w", err)
	}

	return trains, nil
}

// Update rewrites the mutable fields of an existing train
func (r *PostgresTrainRepository) Update(ctx context.Context, t *models.Train) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid train: %w", err)
	}

	query := `
		UPDATE trains
		SET train_number = $1, train_name = $2, route = $3
		WHERE id = $4
	`

	if _, err := r.pool.Exec(ctx, query, t.TrainNumber, t.TrainName, t.Route, t.ID); err != nil {
		return fmt.Errorf("failed to update train: %w", err)
	}
	return nil
}

// Delete removes a train; its schedules go with it via the cascading foreign key
func (r *PostgresTrainRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM trains WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete train: %w", err)
	}
	return nil
}

// PostgresScheduleRepository handles database operations for schedules using Postgres
type PostgresScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresScheduleRepository creates a new PostgresScheduleRepository
func NewPostgresScheduleRepository(pool *pgxpool.Pool) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{pool: pool}
}

// Create inserts a new schedule and fills in its generated ID
func (r *PostgresScheduleRepository) Create(ctx context.Context, s *models.Schedule) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		s.TrainID, s.Destination, s.DepartureTime, s.ArrivalTime, s.Platform,
		s.Status.String(), s.DelayMinutes, s.ScheduleDate, s.CreatedAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	return nil
}

// Delete removes a single schedule
func (r *PostgresScheduleRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

// GetByDate returns all schedules for a date, ascending by departure time
func (r *PostgresScheduleRepository) GetByDate(ctx context.Context, date string) ([]models.Schedule, error) {
	query := `SELECT` + pgScheduleColumns + `
		FROM schedules
		WHERE schedule_date = $1
		ORDER BY departure_time
	`
	return r.querySchedules(ctx, query, date)
}

// GetByDateAndStatus returns a date's schedules filtered by status,
// ascending by departure time
func (r *PostgresScheduleRepository) GetByDateAndStatus(ctx context.Context, date string, status models.Status) ([]models.Schedule, error) {
	query := `SELECT` + pgScheduleColumns + `
		FROM schedules
		WHERE schedule_date = $1 AND status = $2
		ORDER BY departure_time
	`
	return r.querySchedules(ctx, query, date, status.String())
}

// CountByDateAndStatus returns how many schedules a date has in the given status
func (r *PostgresScheduleRepository) CountByDateAndStatus(ctx context.Context, date string, status models.Status) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM schedules WHERE schedule_date = $1 AND status = $2`
	if err := r.pool.QueryRow(ctx, query, date, status.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count schedules: %w", err)
	}
	return count, nil
}

func (r *PostgresScheduleRepository) querySchedules(ctx context.Context, query string, args ...any) ([]models.Schedule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.Schedule
	for rows.Next() {
		var s models.Schedule
		var status string
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
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		if s.Status, err = models.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	return schedules, nil
}

// GetByDateWithTrainInfo returns a date's schedules with the owning train
// resolved in the same query, ascending by departure time.
func (r *PostgresScheduleRepository) GetByDateWithTrainInfo(ctx context.Context, date string) ([]models.Schedule, error) {
	query := `SELECT` + pgJoinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.schedule_date = $1
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, date)
}

// GetUpcoming returns a date's schedules departing at or after the given
// HH:MM time, ascending by departure time
func (r *PostgresScheduleRepository) GetUpcoming(ctx context.Context, date, clock string) ([]models.Schedule, error) {
	query := `SELECT` + pgJoinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.schedule_date = $1 AND s.departure_time >= $2
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, date, clock)
}

// SearchByDestination returns schedules whose destination contains the given
// text, case-insensitive, ascending by departure time
func (r *PostgresScheduleRepository) SearchByDestination(ctx context.Context, destination string) ([]models.Schedule, error) {
	query := `SELECT` + pgJoinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.destination ILIKE '%' || $1 || '%'
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, destination)
}

// GetByPlatform returns schedules departing from an exact platform label,
// ascending by departure time
func (r *PostgresScheduleRepository) GetByPlatform(ctx context.Context, platform string) ([]models.Schedule, error) {
	query := `SELECT` + pgJoinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.platform = $1
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, platform)
}

// GetDelayed returns a date's delayed schedules, worst delays first
func (r *PostgresScheduleRepository) GetDelayed(ctx context.Context, date string) ([]models.Schedule, error) {
	query := `SELECT` + pgJoinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.schedule_date = $1 AND s.status = 'DELAYED'
		ORDER BY s.delay_minutes DESC
	`
	return r.queryJoinedSchedules(ctx, query, date)
}

// GetInTimeRange returns a date's schedules departing within [start, end]
// inclusive, ascending by departure time. An inverted range falls through to
// SQL BETWEEN, which matches nothing.
func (r *PostgresScheduleRepository) GetInTimeRange(ctx context.Context, date, start, end string) ([]models.Schedule, error) {
	query := `SELECT` + pgJoinedScheduleColumns + `
		FROM schedules s
		JOIN trains t ON t.id = s.train_id
		WHERE s.schedule_date = $1 AND s.departure_time BETWEEN $2 AND $3
		ORDER BY s.departure_time
	`
	return r.queryJoinedSchedules(ctx, query, date, start, end)
}

func (r *PostgresScheduleRepository) queryJoinedSchedules(ctx context.Context, query string, args ...any) ([]models.Schedule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.Schedule
	for rows.Next() {
		var s models.Schedule
		var t models.Train
		var status string
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
			&s.CreatedAt,
			&t.ID,
			&t.TrainNumber,
			&t.TrainName,
			&t.Route,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		if s.Status, err = models.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		s.Train = &t
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	return schedules, nil
}
