package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"evcharge/internal/models"
)

// ErrStationNotFound represents missing station rows.
var ErrStationNotFound = errors.New("station not found")

// MetricsFilter narrows the station set aggregated by Metrics.
type MetricsFilter struct {
	Status   string
	Location string
	From     *time.Time
	To       *time.Time
}

// StationRepository handles CRUD for the stations table.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository returns repository instance.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

const stationColumns = "id, name, location, max_capacity_kw, status, auto_switch_minutes, created_at, updated_at"

// Create inserts a new station.
func (r *StationRepository) Create(ctx context.Context, station *models.Station) error {
	if station.ID == "" {
		station.ID = uuid.NewString()
	}
	const query = `
		INSERT INTO stations (id, name, location, max_capacity_kw, status, auto_switch_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		station.ID, station.Name, station.Location, station.MaxCapacityKW, station.Status, station.AutoSwitchMinutes).
		Scan(&station.CreatedAt, &station.UpdatedAt)
}

// List returns all stations ordered by creation time.
func (r *StationRepository) List(ctx context.Context) ([]models.Station, error) {
	query := fmt.Sprintf(`SELECT %s FROM stations ORDER BY created_at`, stationColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		if err := scanStation(rows.Scan, &st); err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// GetByID fetches a station by primary key.
func (r *StationRepository) GetByID(ctx context.Context, id string) (*models.Station, error) {
	query := fmt.Sprintf(`SELECT %s FROM stations WHERE id = $1 LIMIT 1`, stationColumns)
	var st models.Station
	if err := scanStation(r.db.QueryRowContext(ctx, query, id).Scan, &st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return &st, nil
}

// UpdateStatus sets a station's status unconditionally and refreshes
// updated_at. Used by manual status changes.
func (r *StationRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Station, error) {
	query := fmt.Sprintf(`
		UPDATE stations
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, stationColumns)
	var st models.Station
	if err := scanStation(r.db.QueryRowContext(ctx, query, id, status).Scan, &st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return &st, nil
}

// UpdateStatusIfUnchanged flips a station's status only when updated_at still
// matches the value the caller read. Returns false when the row changed in
// the meantime and the write was skipped.
func (r *StationRepository) UpdateStatusIfUnchanged(ctx context.Context, id, status string, expectedUpdatedAt time.Time) (bool, error) {
	const query = `
		UPDATE stations
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND updated_at = $3
	`
	result, err := r.db.ExecContext(ctx, query, id, status, expectedUpdatedAt)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// Metrics aggregates station counts and average capacity, optionally narrowed
// by status, location substring and created_at date range.
func (r *StationRepository) Metrics(ctx context.Context, filter MetricsFilter) (*models.Metrics, error) {
	var (
		conditions []string
		args       []interface{}
	)
	addCondition := func(expr string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.Location != "" {
		addCondition("location ILIKE '%%' || $%d || '%%'", filter.Location)
	}
	if filter.From != nil {
		addCondition("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("created_at < $%d", filter.To.AddDate(0, 0, 1))
	}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COALESCE(AVG(max_capacity_kw), 0)
		FROM stations
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var metrics models.Metrics
	if err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&metrics.TotalStations, &metrics.ActiveStations, &metrics.AvgCapacity); err != nil {
		return nil, err
	}
	metrics.InactiveStations = metrics.TotalStations - metrics.ActiveStations
	return &metrics, nil
}

func scanStation(scan func(dest ...interface{}) error, st *models.Station) error {
	return scan(&st.ID, &st.Name, &st.Location, &st.MaxCapacityKW, &st.Status, &st.AutoSwitchMinutes, &st.CreatedAt, &st.UpdatedAt)
}
