package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/outbox"
	"delivery-dispatch/internal/ports/dispatchtx"
)

const deliveryColumns = `id, order_id, driver_id, restaurant_name, status, location,
	delivery_address, street, city, state, zip_code, payment_method, payment_status, created_at`

// DeliveryRepo represents delivery record storage.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

func scanDelivery(row interface{ Scan(...any) error }) (*domain.Delivery, error) {
	var (
		d                       domain.Delivery
		street, city, state, zc string
	)
	err := row.Scan(&d.ID, &d.OrderID, &d.DriverID, &d.RestaurantName, &d.Status,
		&d.Location, &d.Address.Raw, &street, &city, &state, &zc,
		&d.PaymentMethod, &d.PaymentStatus, &d.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if street != "" || city != "" || state != "" || zc != "" {
		d.Address.Structured = &domain.StructuredAddress{
			Street: street, City: city, State: state, ZipCode: zc,
		}
	}
	return &d, nil
}

func structuredParts(a domain.Address) (street, city, state, zip string) {
	if a.Structured == nil {
		return "", "", "", ""
	}
	return a.Structured.Street, a.Structured.City, a.Structured.State, a.Structured.ZipCode
}

// GetByOrderID - get delivery by order ID, nil when absent.
func (r *DeliveryRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = $1`, orderID))
	if err != nil {
		return nil, fmt.Errorf("get delivery by order %q: %w", orderID, err)
	}
	return d, nil
}

// Get - get delivery by its ID, nil when absent.
func (r *DeliveryRepo) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get delivery %d: %w", id, err)
	}
	return d, nil
}

// UpdateStatus overwrites only the provided status/location fields and
// returns the updated row, or nil when the delivery does not exist.
// Ownership is the caller's concern, not the store's.
func (r *DeliveryRepo) UpdateStatus(ctx context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx, `
		UPDATE deliveries
		SET status     = COALESCE($2, status),
		    location   = COALESCE($3, location),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+deliveryColumns+`
	`, id, u.Status, u.Location))
	if err != nil {
		return nil, fmt.Errorf("update delivery %d: %w", id, err)
	}
	return d, nil
}

// WithTx opens a transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRepo represents the transactional storage slice used during assignment.
type TxRepo struct {
	tx pgx.Tx
}

// FindAvailableDriverForUpdate locks the best available driver in the city:
// least-loaded first, id as tie-break, hard capacity of one.
func (r *TxRepo) FindAvailableDriverForUpdate(ctx context.Context, city string) (*domain.Driver, error) {
	d, err := scanDriver(r.tx.QueryRow(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE status = 'available'
		  AND active_deliveries < 1
		  AND ($1 = '' OR city ILIKE '%' || $1 || '%')
		ORDER BY active_deliveries ASC, id ASC
		FOR UPDATE
		LIMIT 1
	`, city))
	if err != nil {
		return nil, fmt.Errorf("find available driver: %w", err)
	}
	return d, nil
}

// GetDriverForUpdate locks a specific driver row (manual assignment path).
func (r *TxRepo) GetDriverForUpdate(ctx context.Context, driverID int64) (*domain.Driver, error) {
	d, err := scanDriver(r.tx.QueryRow(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE id = $1 FOR UPDATE`, driverID))
	if err != nil {
		return nil, fmt.Errorf("get driver for update %d: %w", driverID, err)
	}
	return d, nil
}

// GetByOrderID - get delivery by order ID within the transaction.
func (r *TxRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	d, err := scanDelivery(r.tx.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = $1`, orderID))
	if err != nil {
		return nil, fmt.Errorf("get delivery by order %q: %w", orderID, err)
	}
	return d, nil
}

// InsertDelivery - insert a new delivery. The unique index on order_id is
// the one concurrency invariant the engine relies on; a violated index
// surfaces as apperr.ErrConflict for the caller to recover from.
func (r *TxRepo) InsertDelivery(ctx context.Context, d *domain.Delivery) error {
	street, city, state, zc := structuredParts(d.Address)
	err := r.tx.QueryRow(ctx, `
		INSERT INTO deliveries (order_id, driver_id, restaurant_name, status, location,
			delivery_address, street, city, state, zip_code, payment_method, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`, d.OrderID, d.DriverID, d.RestaurantName, d.Status, d.Location,
		d.Address.Raw, street, city, state, zc, d.PaymentMethod, d.PaymentStatus).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// UpdateDeliveryStatus overwrites only the provided fields within the
// transaction and returns the updated row, or nil when absent.
func (r *TxRepo) UpdateDeliveryStatus(ctx context.Context, id int64, u domain.DeliveryUpdate) (*domain.Delivery, error) {
	d, err := scanDelivery(r.tx.QueryRow(ctx, `
		UPDATE deliveries
		SET status     = COALESCE($2, status),
		    location   = COALESCE($3, location),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+deliveryColumns+`
	`, id, u.Status, u.Location))
	if err != nil {
		return nil, fmt.Errorf("update delivery %d: %w", id, err)
	}
	return d, nil
}

// IncrementDriverLoad bumps the driver's load inside the assignment
// transaction so a crash cannot leave a delivery without its increment.
func (r *TxRepo) IncrementDriverLoad(ctx context.Context, driverID int64) (*domain.Driver, error) {
	d, err := scanDriver(r.tx.QueryRow(ctx, incrementLoadSQL, driverID))
	if err != nil {
		return nil, fmt.Errorf("increment driver load %d: %w", driverID, err)
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// DecrementDriverLoad lowers the driver's load inside a transaction.
func (r *TxRepo) DecrementDriverLoad(ctx context.Context, driverID int64) (*domain.Driver, error) {
	d, err := scanDriver(r.tx.QueryRow(ctx, decrementLoadSQL, driverID))
	if err != nil {
		return nil, fmt.Errorf("decrement driver load %d: %w", driverID, err)
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// EnqueueOutbox records a pending side effect in the same transaction as
// the state change that produced it.
func (r *TxRepo) EnqueueOutbox(ctx context.Context, t outbox.Task) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO outbox (kind, payload, attempts, next_attempt_at)
		VALUES ($1, $2, 0, now())
	`, string(t.Kind), t.Payload)
	if err != nil {
		return fmt.Errorf("enqueue outbox %s: %w", t.Kind, err)
	}
	return nil
}
