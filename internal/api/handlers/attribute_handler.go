package handlers

import (
	"net/http"

	"github.com/athujoshi24/legendary-panel/internal/api/middleware"
	"github.com/athujoshi24/legendary-panel/internal/api/types"
	"github.com/athujoshi24/legendary-panel/internal/metrics"
	"github.com/athujoshi24/legendary-panel/internal/models"
	"github.com/athujoshi24/legendary-panel/internal/services"
)

// AttributeHandler serves the owner-scoped list and create endpoints shared
// by tags and ingredients.
type AttributeHandler[T models.Attribute] struct {
	svc     services.AttributeService[T]
	metrics metrics.Recorder
	kind    string
}

func NewAttributeHandler[T models.Attribute](svc services.AttributeService[T], rec metrics.Recorder) *AttributeHandler[T] {
	return &AttributeHandler[T]{svc: svc, metrics: rec, kind: models.AttributeKind[T]()}
}

func (h *AttributeHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    types.NewAttributeList(items),
		Meta:    &types.Meta{Total: int64(len(items))},
	})
}

func (h *AttributeHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var req types.AttributeCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.svc.Create(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.RecordCreated(h.kind)

	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: types.NewAttributeResponse(*item)})
}
