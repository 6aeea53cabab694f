package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/domain/model"
	apperrors "github.com/target/competitions-api/internal/errors"
)

// OutboxRepo appends notification records. Records are never updated or deleted.
type OutboxRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(db *sql.DB, cfg RepoConfig) *OutboxRepo {
	tp, _ := cfg.resolve()
	return &OutboxRepo{DB: db, timeProvider: tp}
}

const outboxColumns = `id, type, recipient, subject, body, created_at`

// Append writes a new outbox record.
func (r *OutboxRepo) Append(ctx context.Context, req *model.AppendOutboxRequest) (*model.OutboxRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO outbox (id, type, recipient, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+outboxColumns,
		uuid.NewString(), string(req.Type), req.To, req.Subject, req.Body, r.timeProvider.Now().UTC(),
	)
	rec, err := scanOutbox(row)
	if err != nil {
		return nil, fmt.Errorf("append outbox: %w", apperrors.MapDBError(err))
	}
	return rec, nil
}

// List returns the most recent outbox records first.
func (r *OutboxRepo) List(ctx context.Context, limit int) ([]*model.OutboxRecord, error) {
	query, args, err := psql.Select("id", "type", "recipient", "subject", "body", "created_at").
		From("outbox").
		OrderBy("created_at DESC", "id DESC").
		Limit(clampLimit(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list outbox query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	var out []*model.OutboxRecord
	for rows.Next() {
		rec, err := scanOutbox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanOutbox(scanner rowScanner) (*model.OutboxRecord, error) {
	var rec model.OutboxRecord
	if err := scanner.Scan(&rec.ID, &rec.Type, &rec.To, &rec.Subject, &rec.Body, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
