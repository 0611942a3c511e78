package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/divegear/gearbase/internal/model"
	"github.com/divegear/gearbase/internal/store"
)

// ItemsHandler handles equipment registry endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

// Catalog handles GET /api/gear: the static equipment catalog, grouped.
func (h *ItemsHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, model.Gear)
}

// List handles GET /api/items?type=X. With ?trashed=true only trashed items
// are returned.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	itemType := r.URL.Query().Get("type")
	if _, ok := model.GearByType(itemType); !ok {
		jsonError(w, http.StatusBadRequest, "unknown item type")
		return
	}

	trashedOnly := r.URL.Query().Get("trashed") == "true"
	items, err := store.ListItems(r.Context(), h.DB, itemType, trashedOnly)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Register handles POST /api/items.
func (h *ItemsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.Item
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Reference < 1 {
		jsonError(w, http.StatusBadRequest, "reference must be positive")
		return
	}
	if req.EntryDate != "" && !model.ValidDate(req.EntryDate) {
		jsonError(w, http.StatusBadRequest, "invalid entry date")
		return
	}

	item, err := store.RegisterItem(r.Context(), h.DB, &req)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateReference) {
			jsonError(w, http.StatusConflict, "reference already in use for this type")
			return
		}
		if errors.Is(err, store.ErrDuplicateSerial) {
			jsonError(w, http.StatusConflict, "serial number already registered for this reference")
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("item registered", "type", item.Type, "reference", item.Reference)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}. The item comes back with its derived
// presence, usability and servicing compliance.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id, true)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	status, err := store.CurrentStatus(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item status")
		return
	}
	item.IsPresent = &status.IsPresent
	item.IsUsable = &status.IsUsable

	compliant, err := store.IsCompliant(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item compliance")
		return
	}
	item.IsServiced = &compliant

	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. The reference is immutable; attributes
// and descriptive fields may change.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req model.Item
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = id

	if err := store.UpdateItem(r.Context(), h.DB, &req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		if errors.Is(err, store.ErrDuplicateSerial) {
			jsonError(w, http.StatusConflict, "serial number already registered for this reference")
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, _ := store.GetItem(r.Context(), h.DB, id, true)
	jsonResponse(w, http.StatusOK, item)
}

// Trash handles POST /api/items/{id}/trash: soft-deletes the item, freeing
// its reference for reuse by a future item.
func (h *ItemsHandler) Trash(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.TrashItem(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to trash item")
		return
	}

	slog.Info("item trashed", "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item trashed"})
}

// Untrash handles POST /api/items/{id}/untrash. Fails if another live item
// took the reference in the meantime.
func (h *ItemsHandler) Untrash(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.UntrashItem(r.Context(), h.DB, id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			jsonError(w, http.StatusNotFound, "item not found")
		case errors.Is(err, store.ErrReferenceConflict):
			jsonError(w, http.StatusConflict, "reference now used by another item")
		default:
			jsonError(w, http.StatusInternalServerError, "failed to restore item")
		}
		return
	}

	item, _ := store.GetItem(r.Context(), h.DB, id, false)
	jsonResponse(w, http.StatusOK, item)
}

// References handles GET /api/items/references?type=X, the reference picker
// behind the loan desk and inventory screens. With ?available=true items
// that cannot be lent right now are filtered out.
func (h *ItemsHandler) References(w http.ResponseWriter, r *http.Request) {
	itemType := r.URL.Query().Get("type")
	if _, ok := model.GearByType(itemType); !ok {
		jsonError(w, http.StatusBadRequest, "unknown item type")
		return
	}

	var items []model.Item
	var err error
	if r.URL.Query().Get("available") == "true" {
		items, err = store.AvailableReferences(r.Context(), h.DB, itemType, true)
	} else {
		items, err = store.ItemReferences(r.Context(), h.DB, itemType)
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list references")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}
