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

// InventoryHandler handles inventory campaign endpoints.
type InventoryHandler struct {
	DB *sql.DB
}

type startCampaignRequest struct {
	Date string `json:"date"`
}

// List handles GET /api/inventory: all campaigns plus the running one, if
// any.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := store.ListCampaigns(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []model.Campaign{}
	}

	running, err := store.RunningCampaign(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"campaigns": campaigns,
		"running":   running,
	})
}

// Start handles POST /api/inventory/start.
func (h *InventoryHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startCampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Date == "" {
		req.Date = model.Today()
	}

	campaign, err := store.StartCampaign(r.Context(), h.DB, req.Date)
	if err != nil {
		if errors.Is(err, store.ErrCampaignRunning) {
			jsonError(w, http.StatusConflict, "an inventory campaign is already running")
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("inventory campaign started", "date", campaign.Date)
	jsonResponse(w, http.StatusCreated, campaign)
}

// Stop handles POST /api/inventory/stop.
func (h *InventoryHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := store.StopCampaign(r.Context(), h.DB); err != nil {
		if errors.Is(err, store.ErrNoCampaignRunning) {
			jsonError(w, http.StatusConflict, "no inventory campaign is running")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to stop campaign")
		return
	}

	slog.Info("inventory campaign stopped")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "campaign stopped"})
}

// Restart handles POST /api/inventory/{id}/restart: reopens a past campaign
// for corrections.
func (h *InventoryHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	if err := store.RestartCampaign(r.Context(), h.DB, id); err != nil {
		switch {
		case errors.Is(err, store.ErrCampaignRunning):
			jsonError(w, http.StatusConflict, "another campaign is already running")
		case errors.Is(err, store.ErrNotFound):
			jsonError(w, http.StatusNotFound, "campaign not found")
		default:
			jsonError(w, http.StatusInternalServerError, "failed to restart campaign")
		}
		return
	}

	slog.Info("inventory campaign restarted", "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "campaign restarted"})
}

// Remaining handles GET /api/inventory/remaining?type=X: the items of a type
// still to count in the running campaign. Operators on separate laptops poll
// this list, so an item counted by one disappears for the others.
func (h *InventoryHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	itemType := r.URL.Query().Get("type")
	if _, ok := model.GearByType(itemType); !ok {
		jsonError(w, http.StatusBadRequest, "unknown item type")
		return
	}

	items, err := store.RemainingItems(r.Context(), h.DB, itemType)
	if err != nil {
		if errors.Is(err, store.ErrNoCampaignRunning) {
			jsonError(w, http.StatusConflict, "no inventory campaign is running")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to list remaining items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Select handles GET /api/inventory/select?preferred=X: the type selector
// for the running campaign, with remaining counts. The preferred type, when
// still uncounted, sorts first so an operator can keep working down a shelf.
func (h *InventoryHandler) Select(w http.ResponseWriter, r *http.Request) {
	running, err := store.RunningCampaign(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if running == nil {
		jsonError(w, http.StatusConflict, "no inventory campaign is running")
		return
	}

	list, err := store.SelectList(r.Context(), h.DB, running.Date, r.URL.Query().Get("preferred"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to build select list")
		return
	}
	if list == nil {
		list = []model.TypeRemaining{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Report handles GET /api/inventory/report?date=X: the campaign's outcome in
// one response.
func (h *InventoryHandler) Report(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !model.ValidDate(date) {
		jsonError(w, http.StatusBadRequest, "invalid date")
		return
	}

	missing, err := store.MissingItems(r.Context(), h.DB, date)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	unusable, err := store.UnusableItems(r.Context(), h.DB, date)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	uninventoried, err := store.UninventoriedItems(r.Context(), h.DB, date)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	total, err := store.EstimationsTotal(r.Context(), h.DB, date)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	estimations, err := store.EstimationsByType(r.Context(), h.DB, date)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	counts, err := store.CountByType(r.Context(), h.DB, date)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	if missing == nil {
		missing = []string{}
	}
	if unusable == nil {
		unusable = []string{}
	}
	if uninventoried == nil {
		uninventoried = []string{}
	}
	if estimations == nil {
		estimations = []model.TypeAmount{}
	}
	if counts == nil {
		counts = []model.TypeAmount{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"date":                  date,
		"missing":               missing,
		"unusable":              unusable,
		"uninventoried":         uninventoried,
		"estimation_total":      total,
		"estimations_by_type":   estimations,
		"present_count_by_type": counts,
	})
}
