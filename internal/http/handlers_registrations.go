package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/competitions-api/internal/service"
)

// RegistrationHandlers serves sign-ups for an event.
type RegistrationHandlers struct {
	errorResponder

	Svc *service.RegistrationService
}

// NewRegistrationHandlers creates RegistrationHandlers.
func NewRegistrationHandlers(svc *service.RegistrationService, logger *slog.Logger) *RegistrationHandlers {
	return &RegistrationHandlers{errorResponder: newErrorResponder(logger), Svc: svc}
}

// Register handles POST /events/{id}/register. It answers 404 for an unknown event
// and 409 when the event is full.
func (h *RegistrationHandlers) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body createRegistrationBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	req := body.toModel(eventID)
	if !validRequest(w, &body, req.Validate) {
		return
	}

	out, err := h.Svc.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, out.Registration)
}

// List handles GET /events/{id}/registrations.
func (h *RegistrationHandlers) List(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	regs, err := h.Svc.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, regs)
}
