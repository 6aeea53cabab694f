package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/data/pgxutil"
	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

// RegistrationRepo provides database operations for registrations.
type RegistrationRepo struct {
	DB           *sql.DB
	jobs         core.JobRepositoryTx
	timeProvider TimeProvider
}

// NewRegistrationRepo creates a new RegistrationRepo. jobs is used by Enroll to
// queue the follow-up job in the same transaction and may be nil when Enroll is unused.
func NewRegistrationRepo(db *sql.DB, jobs core.JobRepositoryTx, cfg RepoConfig) *RegistrationRepo {
	tp, _ := cfg.resolve()
	return &RegistrationRepo{DB: db, jobs: jobs, timeProvider: tp}
}

var registrationColumnList = []string{
	"id", "event_id", "participant_name", "participant_email",
	"status", "confirmation_code", "created_at", "updated_at",
}

var registrationColumns = strings.Join(registrationColumnList, ", ")

const insertRegistrationSQL = `
  INSERT INTO registrations (id, event_id, participant_name, participant_email, status, created_at, updated_at)
  VALUES ($1, $2, $3, $4, 'pending', $5, $5)
  RETURNING `

// Create inserts a pending registration.
func (r *RegistrationRepo) Create(ctx context.Context, req *model.CreateRegistrationRequest) (*model.Registration, error) {
	return r.insert(ctx, r.DB, req)
}

func (r *RegistrationRepo) insert(
	ctx context.Context,
	q pgxutil.Querier,
	req *model.CreateRegistrationRequest,
) (*model.Registration, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	row := q.QueryRowContext(ctx, insertRegistrationSQL+registrationColumns,
		uuid.NewString(),
		req.EventID,
		strings.TrimSpace(req.ParticipantName),
		strings.TrimSpace(req.ParticipantEmail),
		r.timeProvider.Now().UTC(),
	)
	reg, err := scanRegistration(row)
	if err != nil {
		return nil, fmt.Errorf("create registration: %w", apperrors.MapDBError(err))
	}
	return reg, nil
}

// Enroll creates a registration and queues its follow-up job in one transaction.
// The event row is locked so concurrent enrolments cannot overshoot capacity.
func (r *RegistrationRepo) Enroll(ctx context.Context, params core.EnrollParams) (*model.RegistrationWithJob, error) {
	if r.jobs == nil {
		return nil, errors.New("enroll requires a transactional job repository")
	}
	if params.Registration == nil {
		return nil, apperrors.Validation("registration is required")
	}
	if err := params.Registration.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	out := &model.RegistrationWithJob{}
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			if err := r.checkCapacityLocked(ctx, tx, params.Registration.EventID); err != nil {
				return err
			}

			reg, err := r.insert(ctx, tx, params.Registration)
			if err != nil {
				return err
			}

			job, err := r.jobs.CreateInTx(ctx, tx, &model.CreateJobRequest{
				Type: params.JobType,
				Payload: map[string]string{
					model.PayloadKeyRegistrationID: reg.ID,
					model.PayloadKeyEventID:        reg.EventID,
				},
			})
			if err != nil {
				return fmt.Errorf("enqueue %s job: %w", params.JobType, err)
			}

			out.Registration, out.Job = reg, job
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RegistrationRepo) checkCapacityLocked(ctx context.Context, tx *sql.Tx, eventID string) error {
	var capacity sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("lock event: %w", apperrors.MapDBError(err))
	}
	if !capacity.Valid {
		return nil
	}

	active, err := countActive(ctx, tx, eventID)
	if err != nil {
		return err
	}
	if int64(active) >= capacity.Int64 {
		return model.ErrEventAtCapacity
	}
	return nil
}

// GetByID returns a registration or model.ErrRegistrationNotFound.
func (r *RegistrationRepo) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", apperrors.MapDBError(err))
	}
	return reg, nil
}

// ListByEvent returns every registration of an event.
func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.Registration, error) {
	return r.list(ctx, sq.Eq{"event_id": eventID})
}

// ListActiveByEvent returns the non-cancelled registrations of an event.
func (r *RegistrationRepo) ListActiveByEvent(ctx context.Context, eventID string) ([]*model.Registration, error) {
	return r.list(ctx, sq.And{
		sq.Eq{"event_id": eventID},
		sq.NotEq{"status": string(model.RegistrationStatusCancelled)},
	})
}

// CountActiveByEvent counts the non-cancelled registrations of an event.
func (r *RegistrationRepo) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	return countActive(ctx, r.DB, eventID)
}

func countActive(ctx context.Context, q pgxutil.Querier, eventID string) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("registrations").
		Where(sq.Eq{"event_id": eventID}).
		Where(sq.NotEq{"status": string(model.RegistrationStatusCancelled)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count registrations query: %w", err)
	}

	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count registrations: %w", apperrors.MapDBError(err))
	}
	return n, nil
}

// Confirm marks a registration confirmed. It returns false when the registration does not exist.
func (r *RegistrationRepo) Confirm(ctx context.Context, params model.ConfirmRegistrationParams) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE registrations
		SET status = 'confirmed',
		    confirmation_code = $2,
		    updated_at = $3
		WHERE id = $1`,
		params.ID, params.Code, params.At.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("confirm registration: %w", apperrors.MapDBError(err))
	}
	n, err := pgxutil.RowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RegistrationRepo) list(ctx context.Context, where sq.Sqlizer) ([]*model.Registration, error) {
	query, args, err := psql.Select(registrationColumnList...).From("registrations").
		Where(where).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list registrations query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	var out []*model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func scanRegistration(scanner rowScanner) (*model.Registration, error) {
	var (
		reg  model.Registration
		code sql.NullString
	)
	if err := scanner.Scan(
		&reg.ID, &reg.EventID, &reg.ParticipantName, &reg.ParticipantEmail,
		&reg.Status, &code, &reg.CreatedAt, &reg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	reg.ConfirmationCode = cloneNullableString(code)
	reg.CreatedAt = reg.CreatedAt.UTC()
	reg.UpdatedAt = reg.UpdatedAt.UTC()
	return &reg, nil
}
