package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
)

// OutboxHandlers exposes the notification log to operators.
type OutboxHandlers struct {
	errorResponder

	Repo core.OutboxRepository
}

// NewOutboxHandlers creates OutboxHandlers.
func NewOutboxHandlers(repo core.OutboxRepository, logger *slog.Logger) *OutboxHandlers {
	return &OutboxHandlers{errorResponder: newErrorResponder(logger), Repo: repo}
}

// List handles GET /outbox?limit=, newest first.
func (h *OutboxHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)
	recs, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*model.OutboxRecord{}
	}
	WriteJSON(w, http.StatusOK, recs)
}
