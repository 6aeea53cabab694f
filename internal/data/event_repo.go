package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

// EventRepo provides database operations for events.
type EventRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(db *sql.DB, cfg RepoConfig) *EventRepo {
	tp, _ := cfg.resolve()
	return &EventRepo{DB: db, timeProvider: tp}
}

var eventColumnList = []string{
	"id", "organizer_id", "title", "description", "location",
	"start_at", "end_at", "capacity", "is_published", "created_at",
}

var eventColumns = strings.Join(eventColumnList, ", ")

// Create inserts a new event. A missing organizer surfaces as a foreign key error.
func (r *EventRepo) Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO events (id, organizer_id, title, description, location, start_at, end_at, capacity, is_published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+eventColumns,
		uuid.NewString(),
		req.OrganizerID,
		strings.TrimSpace(req.Title),
		req.Description,
		req.Location,
		utcPtr(req.StartAt),
		utcPtr(req.EndAt),
		req.Capacity,
		req.IsPublished,
		r.timeProvider.Now().UTC(),
	)
	e, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", apperrors.MapDBError(err))
	}
	return e, nil
}

// GetByID returns an event or model.ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", apperrors.MapDBError(err))
	}
	return e, nil
}

// List returns events matching opts, ordered by start time.
func (r *EventRepo) List(ctx context.Context, opts *model.EventListOptions) ([]*model.Event, error) {
	if opts == nil {
		opts = &model.EventListOptions{}
	}

	q := psql.Select(eventColumnList...).From("events")
	if opts.OrganizerID != nil {
		q = q.Where(sq.Eq{"organizer_id": *opts.OrganizerID})
	}
	if opts.Published != nil {
		q = q.Where(sq.Eq{"is_published": *opts.Published})
	}
	q = q.OrderBy("start_at NULLS LAST", "created_at", "id").
		Limit(clampLimit(opts.Limit)).
		Offset(clampOffset(opts.Offset))

	return r.query(ctx, q)
}

// ListPublishedStartingBetween returns published events with from <= start_at < to.
func (r *EventRepo) ListPublishedStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Event, error) {
	q := psql.Select(eventColumnList...).From("events").
		Where(sq.Eq{"is_published": true}).
		Where(sq.GtOrEq{"start_at": from.UTC()}).
		Where(sq.Lt{"start_at": to.UTC()}).
		OrderBy("start_at", "id")

	return r.query(ctx, q)
}

func (r *EventRepo) query(ctx context.Context, q sq.SelectBuilder) ([]*model.Event, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build events query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(scanner rowScanner) (*model.Event, error) {
	var (
		e                     model.Event
		description, location sql.NullString
		startAt, endAt        sql.NullTime
		capacity              sql.NullInt64
	)
	if err := scanner.Scan(
		&e.ID, &e.OrganizerID, &e.Title, &description, &location,
		&startAt, &endAt, &capacity, &e.IsPublished, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Description = cloneNullableString(description)
	e.Location = cloneNullableString(location)
	e.StartAt = cloneNullableTime(startAt)
	e.EndAt = cloneNullableTime(endAt)
	if capacity.Valid {
		c := int(capacity.Int64)
		e.Capacity = &c
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
