package postgres

import (
	"context"
	"errors"

	"github.com/devevent/api/internal/domain/event"
	"github.com/devevent/api/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, description, overview, venue, location, event_date, event_time, mode, audience, organizer, tags, agenda, image, slug, created_at`

type EventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *EventsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create assigns the slug and createdAt and writes the record. A slug
// collision with an existing event gets one retry with a disambiguated
// slug; the record itself is never mutated after this insert.
func (r *EventsRepo) Create(ctx context.Context, sub event.Submission, imageURL string) (event.Event, error) {
	e := event.NewFromSubmission(sub, imageURL)

	err := r.insert(ctx, e)

	if isUniqueViolation(err) {
		e.Slug = event.DisambiguateSlug(e.Slug)
		err = r.insert(ctx, e)
	}

	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) insert(ctx context.Context, e event.Event) error {
	return r.observe("events.insert", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO events(`+eventColumns+`)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
			e.ID, e.Title, e.Description, e.Overview, e.Venue, e.Location,
			e.Date, e.Time, e.Mode, e.Audience, e.Organizer,
			e.Tags, e.Agenda, e.Image, e.Slug, e.CreatedAt)

		return err
	})
}

// List returns every event, newest first. The ordering ties on id so
// records created within the same instant still come back stably.
func (r *EventsRepo) List(ctx context.Context) ([]event.Event, error) {
	var out []event.Event

	err := r.observe("events.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC, id DESC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]event.Event, 0)

		for rows.Next() {
			e, err := scanEvent(rows)

			if err != nil {
				return err
			}

			out = append(out, e)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// GetBySlugOrID looks a record up by its public slug, falling back to
// the raw id so older links keep working.
func (r *EventsRepo) GetBySlugOrID(ctx context.Context, key string) (event.Event, error) {
	var e event.Event

	err := r.observe("events.get_by_slug_or_id", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+eventColumns+` FROM events WHERE slug = $1 OR id = $1`, key)

		var scanErr error
		e, scanErr = scanEvent(row)

		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}

		return event.Event{}, err
	}

	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var e event.Event

	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Overview, &e.Venue, &e.Location,
		&e.Date, &e.Time, &e.Mode, &e.Audience, &e.Organizer,
		&e.Tags, &e.Agenda, &e.Image, &e.Slug, &e.CreatedAt,
	)

	if err != nil {
		return event.Event{}, err
	}

	// arrays must never come back nil
	if e.Tags == nil {
		e.Tags = []string{}
	}

	if e.Agenda == nil {
		e.Agenda = []string{}
	}

	return e, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
