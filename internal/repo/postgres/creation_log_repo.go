package postgres

import (
	"context"
	"time"

	"github.com/devevent/api/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreationLogRepo stores one row per successful event creation, keyed
// by the client identifier. Rows are never updated; the rate limiter
// only ever asks window-bounded existence questions, so unpruned old
// rows cannot affect correctness.
type CreationLogRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCreationLogRepo(pool *pgxpool.Pool, prom *observability.Prom) *CreationLogRepo {
	return &CreationLogRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *CreationLogRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// RecentExists reports whether the client created an event at or after
// the given instant.
func (r *CreationLogRepo) RecentExists(ctx context.Context, clientID string, since time.Time) (bool, error) {
	var exists bool

	err := r.observe("creation_log.recent_exists", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(
				SELECT 1 FROM event_creation_logs
				WHERE client_id = $1 AND created_at >= $2
			)`, clientID, since).Scan(&exists)
	})

	if err != nil {
		return false, err
	}

	return exists, nil
}

// Log records a successful creation. Called only after the event row
// itself persisted.
func (r *CreationLogRepo) Log(ctx context.Context, clientID string) error {
	return r.observe("creation_log.insert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO event_creation_logs(id, client_id, created_at) VALUES($1, $2, $3)`,
			uuid.NewString(), clientID, time.Now().UTC())

		return err
	})
}
