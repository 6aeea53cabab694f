package data

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/competitions-api/internal/domain/model"
)

func outboxRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "type", "recipient", "subject", "body", "created_at"})
}

func TestOutboxRepo_AppendAndList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepo(db, testRepoConfig())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO outbox")).
		WithArgs(sqlmock.AnyArg(), "email", "ann@example.com", "Registration confirmed", "body", testNow).
		WillReturnRows(outboxRows().AddRow("x1", "email", "ann@example.com", "Registration confirmed", "body", testNow))

	rec, err := repo.Append(context.Background(), &model.AppendOutboxRequest{
		Type: model.OutboxTypeEmail, To: "ann@example.com", Subject: "Registration confirmed", Body: "body",
	})
	require.NoError(t, err)
	assert.Equal(t, model.OutboxTypeEmail, rec.Type)
	assert.Equal(t, "ann@example.com", rec.To)

	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox ORDER BY created_at DESC, id DESC LIMIT 5")).
		WillReturnRows(outboxRows().AddRow("x1", "email", "ann@example.com", "s", "b", testNow))

	recs, err := repo.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestOutboxRepo_Append_RequiresRecipient(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewOutboxRepo(db, testRepoConfig())

	_, err := repo.Append(context.Background(), &model.AppendOutboxRequest{Type: model.OutboxTypeEmail})
	require.Error(t, err)
}
