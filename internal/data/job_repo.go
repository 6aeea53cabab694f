package data

import (
	"database/sql"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
)

// psql builds Postgres statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RepoConfig holds configuration options shared by the Postgres repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

func (c RepoConfig) resolve() (TimeProvider, *slog.Logger) {
	tp := c.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return tp, logger
}

// JobRepo provides database operations for the job queue.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp, logger := cfg.resolve()
	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       logger.With("component", "job_repo"),
	}
}

const jobColumns = `id, type, payload, status, created_at, started_at, finished_at, error`

var jobColumnList = []string{
	"id", "type", "payload", "status", "created_at", "started_at", "finished_at", "error",
}
