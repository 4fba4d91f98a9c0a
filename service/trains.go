package service

import (
	"context"
	"time"

	"github.com/you/trainticker/models"
)

// ScheduleRepository is the subset of schedule queries the service needs.
// Every list query resolves the owning train in the same fetch, so DTO
// projection never has to go back to the store.
type ScheduleRepository interface {
	GetByDateWithTrainInfo(ctx context.Context, date string) ([]models.Schedule, error)
	GetUpcoming(ctx context.Context, date, clock string) ([]models.Schedule, error)
	SearchByDestination(ctx context.Context, destination string) ([]models.Schedule, error)
	GetByPlatform(ctx context.Context, platform string) ([]models.Schedule, error)
	GetDelayed(ctx context.Context, date string) ([]models.Schedule, error)
	GetInTimeRange(ctx context.Context, date, start, end string) ([]models.Schedule, error)
	CountByDateAndStatus(ctx context.Context, date string, status models.Status) (int64, error)
}

// TrainRepository is the train-side lookup surface.
type TrainRepository interface {
	GetByTrainNumber(ctx context.Context, trainNumber string) (*models.Train, error)
	GetAllWithSchedules(ctx context.Context) ([]models.Train, error)
}

// TrainService orchestrates repository queries, applies "today" defaults and
// projects entities into client-facing DTOs. It performs no recovery of its
// own: store failures propagate to the transport boundary.
type TrainService struct {
	schedules ScheduleRepository
	trains    TrainRepository
	now       func() time.Time
}

// NewTrainService creates a service over the given repositories
func NewTrainService(schedules ScheduleRepository, trains TrainRepository) *TrainService {
	return &TrainService{
		schedules: schedules,
		trains:    trains,
		now:       time.Now,
	}
}

// toDTOs maps schedules to DTOs in stable order. Always returns a non-nil
// slice so empty results serialize as [] rather than null.
func toDTOs(schedules []models.Schedule) []models.TrainScheduleDTO {
	dtos := make([]models.TrainScheduleDTO, 0, len(schedules))
	for i := range schedules {
		dtos = append(dtos, models.NewTrainScheduleDTO(&schedules[i]))
	}
	return dtos
}

// GetTodaysSchedule returns today's full schedule with train info,
// ascending by departure time. "Today" is the server's local calendar date.
func (s *TrainService) GetTodaysSchedule(ctx context.Context) ([]models.TrainScheduleDTO, error) {
	today := s.now().Format(models.DateLayout)
	schedules, err := s.schedules.GetByDateWithTrainInfo(ctx, today)
	if err != nil {
		return nil, err
	}
	return toDTOs(schedules), nil
}

// GetScheduleByDate returns the schedule for a specific date
func (s *TrainService) GetScheduleByDate(ctx context.Context, date string) ([]models.TrainScheduleDTO, error) {
	schedules, err := s.schedules.GetByDateWithTrainInfo(ctx, date)
	if err != nil {
		return nil, err
	}
	return toDTOs(schedules), nil
}

// GetUpcomingDepartures returns today's schedules that have not departed yet.
// A departure exactly at the current minute is included.
func (s *TrainService) GetUpcomingDepartures(ctx context.Context) ([]models.TrainScheduleDTO, error) {
	now := s.now()
	schedules, err := s.schedules.GetUpcoming(ctx,
		now.Format(models.DateLayout), now.Format(models.ClockLayout))
	if err != nil {
		return nil, err
	}
	return toDTOs(schedules), nil
}

// GetSchedulesByDestination returns schedules matching a destination
// substring, case-insensitive
func (s *TrainService) GetSchedulesByDestination(ctx context.Context, destination string) ([]models.TrainScheduleDTO, error) {
	schedules, err := s.schedules.SearchByDestination(ctx, destination)
	if err != nil {
		return nil, err
	}
	return toDTOs(schedules), nil
}

// GetSchedulesByPlatform returns schedules for an exact platform label
func (s *TrainService) GetSchedulesByPlatform(ctx context.Context, platform string) ([]models.TrainScheduleDTO, error) {
	schedules, err := s.schedules.GetByPlatform(ctx, platform)
	if err != nil {
		return nil, err
	}
	return toDTOs(schedules), nil
}

// GetDelayedTrains returns today's delayed schedules, worst delays first
func (s *TrainService) GetDelayedTrains(ctx context.Context) ([]models.TrainScheduleDTO, error) {
	today := s.now().Format(models.DateLayout)
	schedules, err := s.schedules.GetDelayed(ctx, today)
	if err != nil {
		return nil, err
	}
	return toDTOs(schedules), nil
}

// GetSchedulesInTimeRange returns today's schedules departing within
// [start, end] inclusive. An inverted range is passed through to the store's
// BETWEEN and yields an empty result.
func (s *TrainService) GetSchedulesInTimeRange(ctx context.Context, start, end string) ([]models.TrainScheduleDTO, error) {
	today := s.now().Format(models.DateLayout)
	schedules, err := s.schedules.GetInTimeRange(ctx, today, start, end)
	if err != nil {
		return nil, err
	}
	return toDTOs(schedules), nil
}

// GetTodaysStats returns today's schedule counts by status with derived
// total and percentages
func (s *TrainService) GetTodaysStats(ctx context.Context) (models.ScheduleStats, error) {
	today := s.now().Format(models.DateLayout)

	onTime, err := s.schedules.CountByDateAndStatus(ctx, today, models.StatusOnTime)
	if err != nil {
		return models.ScheduleStats{}, err
	}
	delayed, err := s.schedules.CountByDateAndStatus(ctx, today, models.StatusDelayed)
	if err != nil {
		return models.ScheduleStats{}, err
	}
	cancelled, err := s.schedules.CountByDateAndStatus(ctx, today, models.StatusCancelled)
	if err != nil {
		return models.ScheduleStats{}, err
	}

	return models.NewScheduleStats(onTime, delayed, cancelled), nil
}

// GetTrainByNumber returns a single train by its unique number, nil when absent
func (s *TrainService) GetTrainByNumber(ctx context.Context, trainNumber string) (*models.Train, error) {
	return s.trains.GetByTrainNumber(ctx, trainNumber)
}

// GetAllTrainsWithSchedules returns the whole fleet with schedules attached
func (s *TrainService) GetAllTrainsWithSchedules(ctx context.Context) ([]models.Train, error) {
	return s.trains.GetAllWithSchedules(ctx)
}
