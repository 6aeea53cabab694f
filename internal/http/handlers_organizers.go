package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/competitions-api/internal/service"
)

// OrganizerHandlers serves the organizer endpoints.
type OrganizerHandlers struct {
	errorResponder

	Svc *service.OrganizerService
}

// NewOrganizerHandlers creates OrganizerHandlers.
func NewOrganizerHandlers(svc *service.OrganizerService, logger *slog.Logger) *OrganizerHandlers {
	return &OrganizerHandlers{errorResponder: newErrorResponder(logger), Svc: svc}
}

// Create handles POST /organizers.
func (h *OrganizerHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var body createOrganizerBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	req := body.toModel()
	if !validRequest(w, &body, req.Validate) {
		return
	}

	org, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, org)
}

// List handles GET /organizers.
func (h *OrganizerHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)
	orgs, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, orgs)
}
