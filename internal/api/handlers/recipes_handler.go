package handlers

import (
	"net/http"

	"github.com/athujoshi24/legendary-panel/internal/api/middleware"
	"github.com/athujoshi24/legendary-panel/internal/api/types"
	"github.com/athujoshi24/legendary-panel/internal/metrics"
	"github.com/athujoshi24/legendary-panel/internal/services"
)

type RecipesHandler struct {
	svc     services.RecipeService
	metrics metrics.Recorder
}

func NewRecipesHandler(svc services.RecipeService, rec metrics.Recorder) *RecipesHandler {
	return &RecipesHandler{svc: svc, metrics: rec}
}

func recipeInput(req *types.RecipeRequest) *services.RecipeInput {
	return &services.RecipeInput{
		Title:              req.Title,
		Type:               req.Type,
		CookingInstruction: req.CookingInstruction,
		Tags:               req.Tags,
		Ingredients:        req.Ingredients,
	}
}

// List supports ?tags=a,b and ?ingredients=c,d filters.
func (h *RecipesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := services.ParseRecipeFilter(r.URL.Query())
	items, err := h.svc.List(r.Context(), middleware.GetUserID(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    types.NewRecipeList(items),
		Meta:    &types.Meta{Total: int64(len(items))},
	})
}

func (h *RecipesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.RecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.svc.Create(r.Context(), middleware.GetUserID(r.Context()), recipeInput(&req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.RecordCreated("recipes")

	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: types.NewRecipeResponse(rec)})
}

func (h *RecipesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.svc.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: types.NewRecipeResponse(rec)})
}

// Update is PUT: omitted fields and lists are cleared.
func (h *RecipesHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

// Patch is PATCH: omitted fields keep their value.
func (h *RecipesHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *RecipesHandler) update(w http.ResponseWriter, r *http.Request, full bool) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req types.RecipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.svc.Update(r.Context(), middleware.GetUserID(r.Context()), id, recipeInput(&req), full)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: types.NewRecipeResponse(rec)})
}

func (h *RecipesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
