package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/target/competitions-api/internal/data"
	"github.com/target/competitions-api/internal/data/memstore"
	"github.com/target/competitions-api/internal/observability/metrics"
	"github.com/target/competitions-api/internal/service"
)

var testNow = time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)

type testServer struct {
	store   *memstore.Store
	handler http.Handler
}

type serverOption func(*RouterServices)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	store := memstore.New(data.NewFixedTimeProvider(testNow))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder("test", reg)
	require.NoError(t, err)

	jobs, err := service.NewJobService(service.JobServiceOptions{Repo: store.Jobs(), Metrics: rec, Logger: logger})
	require.NoError(t, err)
	orgs, err := service.NewOrganizerService(service.OrganizerServiceOptions{Repo: store.Organizers(), Logger: logger})
	require.NoError(t, err)
	events, err := service.NewEventService(service.EventServiceOptions{
		Repos: service.EventServiceRepos{
			Events:        store.Events(),
			Organizers:    store.Organizers(),
			Registrations: store.Registrations(),
		},
		Logger: logger,
	})
	require.NoError(t, err)
	regs, err := service.NewRegistrationService(service.RegistrationServiceOptions{
		Repos:  service.RegistrationServiceRepos{Events: store.Events(), Registrations: store.Registrations()},
		Jobs:   jobs,
		Logger: logger,
	})
	require.NoError(t, err)

	services := RouterServices{
		Organizers:      orgs,
		Events:          events,
		Registrations:   regs,
		Jobs:            jobs,
		Outbox:          store.Outbox(),
		ReadinessChecks: map[string]Pinger{"store": store},
		Gatherer:        reg,
		Metrics:         rec,
		Logger:          logger,
	}
	for _, opt := range opts {
		opt(&services)
	}
	return &testServer{store: store, handler: NewRouter(services)}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

// mustCreate posts body and returns the decoded "id" of the 201 response.
func (s *testServer) mustCreate(t *testing.T, path string, body any) string {
	t.Helper()
	rr := s.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	out := decode[map[string]any](t, rr)
	id, ok := out["id"].(string)
	require.True(t, ok)
	return id
}

func (s *testServer) organizer(t *testing.T) string {
	t.Helper()
	return s.mustCreate(t, "/organizers", map[string]any{"name": "Ada", "email": "ada@example.com"})
}

func (s *testServer) event(t *testing.T, extra map[string]any) string {
	t.Helper()
	body := map[string]any{"organizer_id": s.organizer(t), "title": "Spring Open", "is_published": true}
	for k, v := range extra {
		body[k] = v
	}
	return s.mustCreate(t, "/events", body)
}
