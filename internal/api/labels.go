package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/divegear/gearbase/internal/labels"
	"github.com/divegear/gearbase/internal/store"
)

// LabelsHandler handles QR label endpoints.
type LabelsHandler struct {
	DB *sql.DB
}

type scanRequest struct {
	Code string `json:"code"`
}

// Item handles GET /api/items/{id}/label: a single printable QR label.
func (h *LabelsHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id, false)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	data, err := labels.Label(item.Type, item.Reference)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to render label")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// Sheet handles GET /api/labels/sheet?type=X: a printable grid of labels for
// every live item of the type.
func (h *LabelsHandler) Sheet(w http.ResponseWriter, r *http.Request) {
	itemType := r.URL.Query().Get("type")
	items, err := store.ItemReferences(r.Context(), h.DB, itemType)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if len(items) == 0 {
		jsonError(w, http.StatusNotFound, "no items of this type")
		return
	}

	data, err := labels.Sheet(items)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to render label sheet")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// Scan handles POST /api/labels/scan: resolves a scanned label code to the
// live item carrying it.
func (h *LabelsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	itemType, reference, err := labels.ParseCode(req.Code)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := store.ItemIDByReference(r.Context(), h.DB, itemType, reference)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "no item carries this label")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to resolve label")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id, false)
	if err != nil || item == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}
