package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/you/trainticker/models"
)

// fakeScheduleRepo records query arguments and plays back canned rows.
type fakeScheduleRepo struct {
	schedules []models.Schedule
	counts    map[models.Status]int64
	err       error

	lastDate  string
	lastClock string
	lastStart string
	lastEnd   string
	lastText  string
}

func (f *fakeScheduleRepo) GetByDateWithTrainInfo(ctx context.Context, date string) ([]models.Schedule, error) {
	f.lastDate = date
	return f.schedules, f.err
}

func (f *fakeScheduleRepo) GetUpcoming(ctx context.Context, date, clock string) ([]models.Schedule, error) {
	f.lastDate, f.lastClock = date, clock
	return f.schedules, f.err
}

func (f *fakeScheduleRepo) SearchByDestination(ctx context.Context, destination string) ([]models.Schedule, error) {
	f.lastText = destination
	return f.schedules, f.err
}

func (f *fakeScheduleRepo) GetByPlatform(ctx context.Context, platform string) ([]models.Schedule, error) {
	f.lastText = platform
	return f.schedules, f.err
}

func (f *fakeScheduleRepo) GetDelayed(ctx context.Context, date string) ([]models.Schedule, error) {
	f.lastDate = date
	return f.schedules, f.err
}

func (f *fakeScheduleRepo) GetInTimeRange(ctx context.Context, date, start, end string) ([]models.Schedule, error) {
	f.lastDate, f.lastStart, f.lastEnd = date, start, end
	return f.schedules, f.err
}

func (f *fakeScheduleRepo) CountByDateAndStatus(ctx context.Context, date string, status models.Status) (int64, error) {
	f.lastDate = date
	return f.counts[status], f.err
}

type fakeTrainRepo struct {
	trains []models.Train
}

func (f *fakeTrainRepo) GetByTrainNumber(ctx context.Context, trainNumber string) (*models.Train, error) {
	for i := range f.trains {
		if f.trains[i].TrainNumber == trainNumber {
			return &f.trains[i], nil
		}
	}
	return nil, nil
}

func (f *fakeTrainRepo) GetAllWithSchedules(ctx context.Context) ([]models.Train, error) {
	return f.trains, nil
}

func fixedService(repo *fakeScheduleRepo, trains *fakeTrainRepo, at time.Time) *TrainService {
	s := NewTrainService(repo, trains)
	s.now = func() time.Time { return at }
	return s
}

func mkSchedule(trainNumber, destination, departure string, status models.Status, delay int) models.Schedule {
	return models.Schedule{
		TrainID:       1,
		Destination:   destination,
		DepartureTime: departure,
		ArrivalTime:   "23:59",
		Platform:      "A1",
		Status:        status,
		DelayMinutes:  delay,
		ScheduleDate:  "2026-08-29",
		Train: &models.Train{
			ID:          1,
			TrainNumber: trainNumber,
			TrainName:   "Coastal Express",
			Route:       "Springfield - Boston",
		},
	}
}

func TestGetTodaysScheduleUsesLocalDate(t *testing.T) {
	repo := &fakeScheduleRepo{
		schedules: []models.Schedule{mkSchedule("T100", "Boston", "08:00", models.StatusOnTime, 0)},
	}
	at := time.Date(2026, 8, 29, 14, 30, 0, 0, time.Local)
	svc := fixedService(repo, &fakeTrainRepo{}, at)

	dtos, err := svc.GetTodaysSchedule(context.Background())
	if err != nil {
		t.Fatalf("GetTodaysSchedule failed: %v", err)
	}

	if repo.lastDate != "2026-08-29" {
		t.Errorf("Expected repository query for 2026-08-29, got %s", repo.lastDate)
	}
	if len(dtos) != 1 || dtos[0].TrainNumber != "T100" {
		t.Errorf("Unexpected DTOs: %+v", dtos)
	}
}

func TestGetUpcomingDeparturesPassesNow(t *testing.T) {
	repo := &fakeScheduleRepo{}
	at := time.Date(2026, 8, 29, 9, 5, 42, 0, time.Local)
	svc := fixedService(repo, &fakeTrainRepo{}, at)

	dtos, err := svc.GetUpcomingDepartures(context.Background())
	if err != nil {
		t.Fatalf("GetUpcomingDepartures failed: %v", err)
	}

	if repo.lastDate != "2026-08-29" {
		t.Errorf("Expected date 2026-08-29, got %s", repo.lastDate)
	}
	if repo.lastClock != "09:05" {
		t.Errorf("Expected clock 09:05, got %s", repo.lastClock)
	}
	if dtos == nil {
		t.Error("Expected empty non-nil DTO slice for empty result")
	}
	if len(dtos) != 0 {
		t.Errorf("Expected no DTOs, got %d", len(dtos))
	}
}

func TestGetDelayedTrainsPreservesRepositoryOrder(t *testing.T) {
	repo := &fakeScheduleRepo{
		schedules: []models.Schedule{
			mkSchedule("T310", "Chicago", "07:30", models.StatusDelayed, 40),
			mkSchedule("T100", "Boston", "14:00", models.StatusDelayed, 15),
		},
	}
	svc := fixedService(repo, &fakeTrainRepo{}, time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local))

	dtos, err := svc.GetDelayedTrains(context.Background())
	if err != nil {
		t.Fatalf("GetDelayedTrains failed: %v", err)
	}

	if len(dtos) != 2 {
		t.Fatalf("Expected 2 DTOs, got %d", len(dtos))
	}
	if dtos[0].DelayMinutes != 40 || dtos[1].DelayMinutes != 15 {
		t.Errorf("Expected worst-first order preserved, got %d then %d",
			dtos[0].DelayMinutes, dtos[1].DelayMinutes)
	}
	if dtos[0].FormattedStatus != "DELAYED (+40 min)" {
		t.Errorf("Unexpected formattedStatus: %s", dtos[0].FormattedStatus)
	}
}

func TestGetSchedulesInTimeRangePassesThroughBounds(t *testing.T) {
	repo := &fakeScheduleRepo{}
	svc := fixedService(repo, &fakeTrainRepo{}, time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local))

	if _, err := svc.GetSchedulesInTimeRange(context.Background(), "08:00", "12:00"); err != nil {
		t.Fatalf("GetSchedulesInTimeRange failed: %v", err)
	}
	if repo.lastDate != "2026-08-29" || repo.lastStart != "08:00" || repo.lastEnd != "12:00" {
		t.Errorf("Unexpected query args: date=%s start=%s end=%s",
			repo.lastDate, repo.lastStart, repo.lastEnd)
	}

	// Inverted range is passed through unvalidated; the store yields nothing.
	if _, err := svc.GetSchedulesInTimeRange(context.Background(), "12:00", "08:00"); err != nil {
		t.Fatalf("GetSchedulesInTimeRange with inverted range failed: %v", err)
	}
	if repo.lastStart != "12:00" || repo.lastEnd != "08:00" {
		t.Errorf("Expected inverted bounds passed through, got start=%s end=%s",
			repo.lastStart, repo.lastEnd)
	}
}

func TestGetTodaysStats(t *testing.T) {
	repo := &fakeScheduleRepo{
		counts: map[models.Status]int64{
			models.StatusOnTime:    3,
			models.StatusDelayed:   1,
			models.StatusCancelled: 1,
		},
	}
	svc := fixedService(repo, &fakeTrainRepo{}, time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local))

	stats, err := svc.GetTodaysStats(context.Background())
	if err != nil {
		t.Fatalf("GetTodaysStats failed: %v", err)
	}

	if stats.TotalCount != 5 {
		t.Errorf("Expected totalCount 5, got %d", stats.TotalCount)
	}
	if stats.OnTimePercentage != 60 || stats.DelayedPercentage != 20 {
		t.Errorf("Unexpected percentages: onTime=%f delayed=%f",
			stats.OnTimePercentage, stats.DelayedPercentage)
	}
}

func TestGetTodaysStatsEmptyDay(t *testing.T) {
	repo := &fakeScheduleRepo{counts: map[models.Status]int64{}}
	svc := fixedService(repo, &fakeTrainRepo{}, time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local))

	stats, err := svc.GetTodaysStats(context.Background())
	if err != nil {
		t.Fatalf("GetTodaysStats failed: %v", err)
	}

	if stats.TotalCount != 0 || stats.OnTimePercentage != 0 || stats.DelayedPercentage != 0 {
		t.Errorf("Expected all zeros for empty day, got %+v", stats)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &fakeScheduleRepo{err: storeErr}
	svc := fixedService(repo, &fakeTrainRepo{}, time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local))

	if _, err := svc.GetTodaysSchedule(context.Background()); !errors.Is(err, storeErr) {
		t.Errorf("Expected store error to propagate, got %v", err)
	}
	if _, err := svc.GetTodaysStats(context.Background()); !errors.Is(err, storeErr) {
		t.Errorf("Expected store error to propagate from stats, got %v", err)
	}
}

func TestGetTrainByNumberAbsentIsNotAnError(t *testing.T) {
	svc := fixedService(&fakeScheduleRepo{}, &fakeTrainRepo{}, time.Now())

	train, err := svc.GetTrainByNumber(context.Background(), "T999")
	if err != nil {
		t.Fatalf("GetTrainByNumber failed: %v", err)
	}
	if train != nil {
		t.Errorf("Expected nil for absent train, got %+v", train)
	}
}
