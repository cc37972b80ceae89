package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"evcharge/internal/models"
)

// Clock abstracts wall-clock time so sweeps are testable without waiting.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// StationStore defines the persistence contract for sweeps.
type StationStore interface {
	List(ctx context.Context) ([]models.Station, error)
	UpdateStatusIfUnchanged(ctx context.Context, id, status string, expectedUpdatedAt time.Time) (bool, error)
}

// StatusPublisher receives flips for live subscribers.
type StatusPublisher interface {
	PublishStatusChange(station models.Station)
}

// Scheduler toggles station status once a station sat untouched longer than
// its auto-switch threshold. It runs independently of request traffic.
type Scheduler struct {
	store     StationStore
	publisher StatusPublisher
	interval  time.Duration
	clock     Clock
	logger    *zap.Logger
}

// New builds a Scheduler. publisher may be nil; a nil clock means SystemClock.
func New(store StationStore, publisher StatusPublisher, interval time.Duration, clock Clock, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		store:     store,
		publisher: publisher,
		interval:  interval,
		clock:     clock,
		logger:    logger,
	}
}

// Run sweeps on a fixed cadence until the context is cancelled. A sweep in
// flight finishes its independent per-station writes before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("station status scheduler started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("station status scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if flipped, err := s.Sweep(ctx); err != nil {
				s.logger.Error("station sweep failed", zap.Error(err))
			} else if flipped > 0 {
				s.logger.Info("station sweep completed", zap.Int("flipped", flipped))
			}
		}
	}
}

// Sweep loads all stations and flips the status of every station whose idle
// time reached its threshold. Stations below the threshold are left untouched
// so their countdown keeps running. Returns the number of flipped stations.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	stations, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	flipped := 0

	for _, station := range stations {
		idle := now.Sub(station.UpdatedAt)
		threshold := time.Duration(station.AutoSwitchMinutes) * time.Minute
		if idle < threshold {
			continue
		}

		next := models.ToggledStatus(station.Status)

		// Guarded by the updated_at we read: if a manual update landed in
		// between, zero rows match and the fresher state wins.
		ok, err := s.store.UpdateStatusIfUnchanged(ctx, station.ID, next, station.UpdatedAt)
		if err != nil {
			s.logger.Error("failed to flip station status",
				zap.String("station_id", station.ID), zap.Error(err))
			continue
		}
		if !ok {
			s.logger.Debug("station changed mid-sweep, flip skipped",
				zap.String("station_id", station.ID))
			continue
		}

		flipped++
		s.logger.Info("station status flipped",
			zap.String("station_id", station.ID),
			zap.String("name", station.Name),
			zap.String("status", next))

		if s.publisher != nil {
			station.Status = next
			station.UpdatedAt = now
			s.publisher.PublishStatusChange(station)
		}
	}

	return flipped, nil
}
