package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-dispatch/internal/outbox"
)

// OutboxRepo reads and settles pending side-effect tasks.
type OutboxRepo struct{ db *pgxpool.Pool }

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(db *pgxpool.Pool) *OutboxRepo { return &OutboxRepo{db: db} }

// Due claims undone tasks whose next attempt is due, oldest first. A
// claimed task is leased by pushing next_attempt_at forward, so
// concurrent workers never relay the same task twice.
func (r *OutboxRepo) Due(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]outbox.Task, error) {
	rows, err := r.db.Query(ctx, `
		WITH due AS (
			SELECT id
			FROM outbox
			WHERE done_at IS NULL AND next_attempt_at <= $1
			ORDER BY id ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox o
		SET next_attempt_at = $1 + $3
		FROM due
		WHERE o.id = due.id
		RETURNING o.id, o.kind, o.payload, o.attempts, o.next_attempt_at, o.created_at
	`, now, limit, lease)
	if err != nil {
		return nil, fmt.Errorf("select due outbox tasks: %w", err)
	}
	defer rows.Close()

	out := make([]outbox.Task, 0, limit)
	for rows.Next() {
		var t outbox.Task
		var kind string
		if err := rows.Scan(&t.ID, &kind, &t.Payload, &t.Attempts, &t.NextAttemptAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Kind = outbox.Kind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkDone settles a task.
func (r *OutboxRepo) MarkDone(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE outbox SET done_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox task %d done: %w", id, err)
	}
	return nil
}

// Reschedule bumps the attempt counter and defers the task.
func (r *OutboxRepo) Reschedule(ctx context.Context, id int64, next time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE outbox
		SET attempts = attempts + 1, next_attempt_at = $2
		WHERE id = $1
	`, id, next)
	if err != nil {
		return fmt.Errorf("reschedule outbox task %d: %w", id, err)
	}
	return nil
}
