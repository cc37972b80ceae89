package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"evcharge/internal/models"
	"evcharge/internal/repository"
)

var (
	// ErrStationNotFound is returned when a station id has no row.
	ErrStationNotFound = errors.New("station: not found")
	// ErrInvalidStatus is returned for status values outside active/inactive.
	ErrInvalidStatus = errors.New("station: invalid status value")
	// ErrMissingStationFields is returned when required create fields are absent.
	ErrMissingStationFields = errors.New("station: missing fields")
)

// StationStore defines the storage contract used by the service.
type StationStore interface {
	Create(ctx context.Context, station *models.Station) error
	List(ctx context.Context) ([]models.Station, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Station, error)
}

// StatusPublisher receives station status changes for live subscribers.
type StatusPublisher interface {
	PublishStatusChange(station models.Station)
}

// CreateStationInput carries fields for station registration.
type CreateStationInput struct {
	Name              string
	Location          string
	MaxCapacityKW     float64
	AutoSwitchMinutes int
}

// StationService contains station registration and status logic.
type StationService struct {
	repo      StationStore
	publisher StatusPublisher
	logger    *zap.Logger
}

// NewStationService builds StationService. publisher may be nil.
func NewStationService(repo StationStore, publisher StatusPublisher, logger *zap.Logger) *StationService {
	return &StationService{repo: repo, publisher: publisher, logger: logger}
}

// Create registers a new station with status active.
func (s *StationService) Create(ctx context.Context, input CreateStationInput) (*models.Station, error) {
	if input.Name == "" || input.Location == "" || input.MaxCapacityKW <= 0 {
		return nil, ErrMissingStationFields
	}
	if input.AutoSwitchMinutes < 0 {
		return nil, ErrMissingStationFields
	}
	if input.AutoSwitchMinutes == 0 {
		input.AutoSwitchMinutes = models.DefaultAutoSwitchMinutes
	}

	station := &models.Station{
		Name:              input.Name,
		Location:          input.Location,
		MaxCapacityKW:     input.MaxCapacityKW,
		Status:            models.StatusActive,
		AutoSwitchMinutes: input.AutoSwitchMinutes,
	}
	if err := s.repo.Create(ctx, station); err != nil {
		return nil, err
	}

	s.logger.Info("station registered",
		zap.String("station_id", station.ID),
		zap.String("name", station.Name))
	return station, nil
}

// List returns all stations.
func (s *StationService) List(ctx context.Context) ([]models.Station, error) {
	return s.repo.List(ctx)
}

// UpdateStatus applies a manual status change and notifies subscribers.
func (s *StationService) UpdateStatus(ctx context.Context, id, status string) (*models.Station, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	station, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrStationNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	s.logger.Info("station status updated",
		zap.String("station_id", station.ID),
		zap.String("status", station.Status))

	if s.publisher != nil {
		s.publisher.PublishStatusChange(*station)
	}
	return station, nil
}
