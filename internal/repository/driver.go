package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
)

const driverColumns = `id, user_id, name, status, city, area, location_updated_at,
	service_areas, active_deliveries, max_concurrent`

// DriverRepo represents the driver directory storage.
type DriverRepo struct{ db *pgxpool.Pool }

// NewDriverRepo creates a new DriverRepo.
func NewDriverRepo(db *pgxpool.Pool) *DriverRepo { return &DriverRepo{db: db} }

func scanDriver(row interface{ Scan(...any) error }) (*domain.Driver, error) {
	var d domain.Driver
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Status, &d.City, &d.Area,
		&d.LocationUpdatedAt, &d.ServiceAreas, &d.ActiveDeliveries, &d.MaxConcurrentDeliveries)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// GetByUserID returns the driver registered for the given user, or nil.
func (r *DriverRepo) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE user_id=$1`, userID))
	if err != nil {
		return nil, fmt.Errorf("get driver %q: %w", userID, err)
	}
	return d, nil
}

// GetByID returns a driver by its ID, or nil.
func (r *DriverRepo) GetByID(ctx context.Context, id int64) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE id=$1`, id))
	if err != nil {
		return nil, fmt.Errorf("get driver %d: %w", id, err)
	}
	return d, nil
}

// Create persists a new driver profile. One profile per user is enforced
// by the unique index on user_id.
func (r *DriverRepo) Create(ctx context.Context, d *domain.Driver) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO drivers (user_id, name, status, city, area, location_updated_at,
			service_areas, active_deliveries, max_concurrent)
		VALUES ($1, $2, $3, $4, $5, now(), $6, $7, $8)
		RETURNING id
	`, d.UserID, d.Name, d.Status, d.City, d.Area, d.ServiceAreas,
		d.ActiveDeliveries, d.MaxConcurrentDeliveries).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, fmt.Errorf("create driver: %w", err)
	}
	return id, nil
}

// UpdatePartial applies a driver status update. City is always written and
// appended to service_areas when not yet present. Returns the updated row,
// or nil when no driver exists for the user.
func (r *DriverRepo) UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, `
		UPDATE drivers
		SET
			status              = COALESCE($2, status),
			city                = $3,
			area                = COALESCE($4, area),
			active_deliveries   = COALESCE($5, active_deliveries),
			max_concurrent      = COALESCE($6, max_concurrent),
			service_areas       = CASE
				WHEN $3 = ANY(service_areas) THEN service_areas
				ELSE array_append(service_areas, $3)
			END,
			location_updated_at = now(),
			updated_at          = now()
		WHERE user_id = $1
		RETURNING `+driverColumns+`
	`, u.UserID, u.Status, u.City, u.Area, u.ActiveDeliveries, u.MaxConcurrentDeliveries))
	if err != nil {
		return nil, fmt.Errorf("update driver %q: %w", u.UserID, err)
	}
	return d, nil
}

// SetStatus overwrites a driver's status.
func (r *DriverRepo) SetStatus(ctx context.Context, id int64, status domain.DriverStatus) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE drivers SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("set driver status %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// FindAvailable lists drivers that can take an order, least-loaded first
// with id as the deterministic tie-break. The load filter is a hard
// capacity of one regardless of max_concurrent; see the directory docs.
// An empty city matches every driver; otherwise the match is a
// case-insensitive substring against the driver's current city.
func (r *DriverRepo) FindAvailable(ctx context.Context, city string) ([]domain.Driver, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE status = 'available'
		  AND active_deliveries < 1
		  AND ($1 = '' OR city ILIKE '%' || $1 || '%')
		ORDER BY active_deliveries ASC, id ASC
	`, city)
	if err != nil {
		return nil, fmt.Errorf("find available drivers: %w", err)
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// IncrementLoad atomically bumps a driver's active delivery count and
// flips the status to busy when the new load reaches capacity.
func (r *DriverRepo) IncrementLoad(ctx context.Context, id int64) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, incrementLoadSQL, id))
	if err != nil {
		return nil, fmt.Errorf("increment driver load %d: %w", id, err)
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// DecrementLoad atomically lowers a driver's active delivery count,
// reverting a busy driver to available when the load reaches zero.
func (r *DriverRepo) DecrementLoad(ctx context.Context, id int64) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, decrementLoadSQL, id))
	if err != nil {
		return nil, fmt.Errorf("decrement driver load %d: %w", id, err)
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

const incrementLoadSQL = `
	UPDATE drivers
	SET active_deliveries = active_deliveries + 1,
	    status = CASE
	        WHEN active_deliveries + 1 >= max_concurrent AND status <> 'offline' THEN 'busy'
	        ELSE status
	    END,
	    updated_at = now()
	WHERE id = $1
	RETURNING ` + driverColumns

const decrementLoadSQL = `
	UPDATE drivers
	SET active_deliveries = GREATEST(active_deliveries - 1, 0),
	    status = CASE
	        WHEN GREATEST(active_deliveries - 1, 0) = 0 AND status = 'busy' THEN 'available'
	        ELSE status
	    END,
	    updated_at = now()
	WHERE id = $1
	RETURNING ` + driverColumns
