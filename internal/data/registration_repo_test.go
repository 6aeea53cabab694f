package data

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
)

func registrationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "event_id", "participant_name", "participant_email",
		"status", "confirmation_code", "created_at", "updated_at",
	})
}

func newEnrollRepo(db *sql.DB) *RegistrationRepo {
	cfg := testRepoConfig()
	return NewRegistrationRepo(db, NewJobRepo(db, cfg), cfg)
}

var enrollReq = &model.CreateRegistrationRequest{
	EventID:          "e1",
	ParticipantName:  "Ann",
	ParticipantEmail: "ann@example.com",
}

func TestRegistrationRepo_Enroll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newEnrollRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM events WHERE id = $1 FOR UPDATE")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status <> $2")).
		WithArgs("e1", "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO registrations")).
		WithArgs(sqlmock.AnyArg(), "e1", "Ann", "ann@example.com", testNow).
		WillReturnRows(registrationRows().AddRow("r1", "e1", "Ann", "ann@example.com", "pending", nil, testNow, testNow))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO jobs")).
		WithArgs(sqlmock.AnyArg(), "post_registration", []byte(`{"event_id":"e1","registration_id":"r1"}`), testNow).
		WillReturnRows(jobRows().AddRow(
			"j1", "post_registration", []byte(`{"event_id":"e1","registration_id":"r1"}`), "pending", testNow, nil, nil, nil,
		))
	mock.ExpectCommit()

	out, err := repo.Enroll(context.Background(), core.EnrollParams{
		Registration: enrollReq,
		JobType:      model.JobTypePostRegistration,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", out.Registration.ID)
	assert.Equal(t, model.RegistrationStatusPending, out.Registration.Status)
	assert.Equal(t, "j1", out.Job.ID)
	assert.Equal(t, "r1", out.Job.PayloadValue(model.PayloadKeyRegistrationID))
}

func TestRegistrationRepo_Enroll_AtCapacityRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newEnrollRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM events")).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registrations")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Enroll(context.Background(), core.EnrollParams{Registration: enrollReq, JobType: model.JobTypePostRegistration})
	require.ErrorIs(t, err, model.ErrEventAtCapacity)
}

func TestRegistrationRepo_Enroll_UnlimitedCapacitySkipsCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newEnrollRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM events")).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO registrations")).
		WillReturnRows(registrationRows().AddRow("r1", "e1", "Ann", "ann@example.com", "pending", nil, testNow, testNow))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO jobs")).
		WillReturnRows(jobRows().AddRow("j1", "post_registration", []byte(`{}`), "pending", testNow, nil, nil, nil))
	mock.ExpectCommit()

	_, err := repo.Enroll(context.Background(), core.EnrollParams{Registration: enrollReq, JobType: model.JobTypePostRegistration})
	require.NoError(t, err)
}

func TestRegistrationRepo_Enroll_EventMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newEnrollRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM events")).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Enroll(context.Background(), core.EnrollParams{Registration: enrollReq, JobType: model.JobTypePostRegistration})
	require.ErrorIs(t, err, model.ErrEventNotFound)
}

func TestRegistrationRepo_Confirm(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newEnrollRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("SET status = 'confirmed'")).
		WithArgs("r1", "CONF-R1", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'confirmed'")).
		WithArgs("missing", "CONF-MISSING", testNow).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Confirm(context.Background(), model.ConfirmRegistrationParams{ID: "r1", Code: "CONF-R1", At: testNow})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Confirm(context.Background(), model.ConfirmRegistrationParams{ID: "missing", Code: "CONF-MISSING", At: testNow})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistrationRepo_ListActiveByEvent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newEnrollRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations WHERE (event_id = $1 AND status <> $2) ORDER BY created_at, id")).
		WithArgs("e1", "cancelled").
		WillReturnRows(registrationRows().
			AddRow("r1", "e1", "Ann", "ann@example.com", "confirmed", "CONF-R1", testNow, testNow))

	regs, err := repo.ListActiveByEvent(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	require.NotNil(t, regs[0].ConfirmationCode)
	assert.Equal(t, "CONF-R1", *regs[0].ConfirmationCode)
}

func TestRegistrationRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newEnrollRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations WHERE id = $1")).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, model.ErrRegistrationNotFound)
}
