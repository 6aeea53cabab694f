package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

// OrganizerRepo provides database operations for organizers.
type OrganizerRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewOrganizerRepo creates a new OrganizerRepo.
func NewOrganizerRepo(db *sql.DB, cfg RepoConfig) *OrganizerRepo {
	tp, _ := cfg.resolve()
	return &OrganizerRepo{DB: db, timeProvider: tp}
}

const organizerColumns = `id, name, email, organization, is_active, created_at`

// Create inserts a new organizer.
func (r *OrganizerRepo) Create(ctx context.Context, req *model.CreateOrganizerRequest) (*model.Organizer, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO organizers (id, name, email, organization, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+organizerColumns,
		uuid.NewString(),
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Email),
		req.Organization,
		req.Active(),
		r.timeProvider.Now().UTC(),
	)
	o, err := scanOrganizer(row)
	if err != nil {
		return nil, fmt.Errorf("create organizer: %w", apperrors.MapDBError(err))
	}
	return o, nil
}

// GetByID returns an organizer or model.ErrOrganizerNotFound.
func (r *OrganizerRepo) GetByID(ctx context.Context, id string) (*model.Organizer, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+organizerColumns+` FROM organizers WHERE id = $1`, id)
	o, err := scanOrganizer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrganizerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organizer: %w", apperrors.MapDBError(err))
	}
	return o, nil
}

// List returns organizers ordered by creation time.
func (r *OrganizerRepo) List(ctx context.Context, limit, offset int) ([]*model.Organizer, error) {
	query, args, err := psql.Select("id", "name", "email", "organization", "is_active", "created_at").
		From("organizers").
		OrderBy("created_at", "id").
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list organizers query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list organizers: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	var out []*model.Organizer
	for rows.Next() {
		o, err := scanOrganizer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organizer: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrganizer(scanner rowScanner) (*model.Organizer, error) {
	var (
		o   model.Organizer
		org sql.NullString
	)
	if err := scanner.Scan(&o.ID, &o.Name, &o.Email, &org, &o.IsActive, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Organization = cloneNullableString(org)
	o.CreatedAt = o.CreatedAt.UTC()
	return &o, nil
}
