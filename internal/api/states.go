package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/divegear/gearbase/internal/model"
	"github.com/divegear/gearbase/internal/store"
)

// StatesHandler handles item state ledger endpoints.
type StatesHandler struct {
	DB *sql.DB
}

// Record handles POST /api/items/{id}/states.
func (h *StatesHandler) Record(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req model.ItemState
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ItemID = itemID
	if req.Date == "" {
		req.Date = model.Today()
	}

	state, err := store.RecordState(r.Context(), h.DB, &req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			jsonError(w, http.StatusNotFound, "item not found")
		case errors.Is(err, store.ErrDuplicateState):
			jsonError(w, http.StatusConflict, "item already has a state for this date")
		default:
			jsonError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	jsonResponse(w, http.StatusCreated, state)
}

// List handles GET /api/items/{id}/states: the item's full observation
// history, oldest first.
func (h *StatesHandler) List(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	states, err := store.ListStates(r.Context(), h.DB, itemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list states")
		return
	}
	if states == nil {
		states = []model.ItemState{}
	}
	jsonResponse(w, http.StatusOK, states)
}

// Update handles PUT /api/states/{id}: corrects an existing observation.
// The date and item are fixed; only the observed values change.
func (h *StatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid state id")
		return
	}

	var req model.ItemState
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = id

	if err := store.UpdateState(r.Context(), h.DB, &req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "state not found")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to update state")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "state updated"})
}

// Delete handles DELETE /api/states/{id}.
func (h *StatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid state id")
		return
	}

	if err := store.DeleteState(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "state not found")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to delete state")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "state deleted"})
}
