package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/divegear/gearbase/internal/model"
	"github.com/divegear/gearbase/internal/store"
)

// CompositionHandler handles composite item endpoints.
type CompositionHandler struct {
	DB *sql.DB
}

type attachPartRequest struct {
	ParentID int64  `json:"parent_id"`
	ChildID  int64  `json:"child_id"`
	AtDate   string `json:"at_date"`
}

// Resolve handles GET /api/composition?type=X: composite roots of the type
// with their currently owned sub-parts, plus the sub-parts owned by no one.
func (h *CompositionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	rootType := r.URL.Query().Get("type")
	gear, ok := model.GearByType(rootType)
	if !ok || !gear.Composite {
		jsonError(w, http.StatusBadRequest, "type is not a composite root")
		return
	}

	composites, orphans, err := store.ResolveComposites(r.Context(), h.DB, rootType)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to resolve composites")
		return
	}
	if composites == nil {
		composites = []model.Composite{}
	}
	if orphans == nil {
		orphans = []model.Item{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"composites": composites,
		"orphans":    orphans,
	})
}

// Attach handles POST /api/composition: appends an ownership edge. Attaching
// a child to its current root is a no-op claim; attaching it elsewhere moves
// it as of the given date.
func (h *CompositionHandler) Attach(w http.ResponseWriter, r *http.Request) {
	var req attachPartRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AtDate == "" {
		req.AtDate = model.Today()
	}
	if !model.ValidDate(req.AtDate) {
		jsonError(w, http.StatusBadRequest, "invalid date")
		return
	}

	parent, err := store.GetItem(r.Context(), h.DB, req.ParentID, false)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get parent")
		return
	}
	child, err := store.GetItem(r.Context(), h.DB, req.ChildID, false)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get child")
		return
	}
	if parent == nil || child == nil {
		jsonError(w, http.StatusNotFound, "parent or child not found")
		return
	}

	gear, ok := model.GearByType(parent.Type)
	if !ok || !gear.Composite {
		jsonError(w, http.StatusBadRequest, "parent is not a composite root")
		return
	}
	if !model.IsSubPart(child.Type) {
		jsonError(w, http.StatusBadRequest, "child is not a sub-part")
		return
	}

	edge, err := store.AttachPart(r.Context(), h.DB, req.ParentID, req.ChildID, req.AtDate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "parent or child not found")
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	jsonResponse(w, http.StatusCreated, edge)
}
