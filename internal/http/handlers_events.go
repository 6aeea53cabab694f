package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/service"
)

// EventHandlers serves the event endpoints.
type EventHandlers struct {
	errorResponder

	Svc *service.EventService
}

// NewEventHandlers creates EventHandlers.
func NewEventHandlers(svc *service.EventService, logger *slog.Logger) *EventHandlers {
	return &EventHandlers{errorResponder: newErrorResponder(logger), Svc: svc}
}

// Create handles POST /events. A missing organizer yields 404.
func (h *EventHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var body createEventBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	req := body.toModel()
	if !validRequest(w, &body, req.Validate) {
		return
	}

	evt, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, evt)
}

// List handles GET /events?organizer_id=&published=.
func (h *EventHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts, err := eventListOptions(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_query", Err: err})
		return
	}

	events, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, events)
}

func eventListOptions(r *http.Request) (*model.EventListOptions, error) {
	limit, offset := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)
	opts := &model.EventListOptions{Limit: limit, Offset: offset}

	if v := strings.TrimSpace(r.URL.Query().Get("organizer_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errors.New("organizer_id must be a valid UUID")
		}
		s := id.String()
		opts.OrganizerID = &s
	}

	published, err := parseBoolQuery(r, "published")
	if err != nil {
		return nil, err
	}
	opts.Published = published
	return opts, nil
}

// Get handles GET /events/{id}, including the active registration count.
func (h *EventHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.Svc.GetDetail(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}
