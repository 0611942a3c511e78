package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/divegear/gearbase/internal/imaging"
	"github.com/divegear/gearbase/internal/model"
	"github.com/divegear/gearbase/internal/store"
)

// ServicingHandler handles maintenance endpoints. Report photos are
// normalized and stored under ReportsDir.
type ServicingHandler struct {
	DB         *sql.DB
	ReportsDir string
}

type sendToServicingRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

// Send handles POST /api/servicing/send: flags a batch of items as away at
// the workshop. Refused while an inventory campaign runs, since the items
// must stay countable.
func (h *ServicingHandler) Send(w http.ResponseWriter, r *http.Request) {
	running, err := store.RunningCampaign(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if running != nil {
		jsonError(w, http.StatusConflict, "cannot send items to servicing during an inventory")
		return
	}

	var req sendToServicingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.ItemIDs) == 0 {
		jsonError(w, http.StatusBadRequest, "item_ids required")
		return
	}

	if err := store.SendToServicing(r.Context(), h.DB, req.ItemIDs); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, err.Error())
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to send items to servicing")
		return
	}

	slog.Info("items sent to servicing", "count", len(req.ItemIDs))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "items sent to servicing"})
}

// Return handles POST /api/servicing/return/{id}: a multipart form with the
// servicing date and the workshop's report photo. The item's usage counter
// resets and a servicing record is appended.
func (h *ServicingHandler) Return(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	date := r.FormValue("date")
	if date == "" {
		date = model.Today()
	}
	if !model.ValidDate(date) {
		jsonError(w, http.StatusBadRequest, "invalid servicing date")
		return
	}

	reportFile := ""
	if file, _, err := r.FormFile("report"); err == nil {
		defer file.Close()

		photo, err := imaging.Process(file)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}

		reportFile = fmt.Sprintf("servicing-%d-%s-%d.jpg", itemID, date, time.Now().UnixNano())
		if err := os.WriteFile(filepath.Join(h.ReportsDir, reportFile), photo.Data, 0o644); err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to store report")
			return
		}
	}

	servicing, err := store.ReturnFromServicing(r.Context(), h.DB, itemID, date, reportFile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "item not found or not in servicing")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to return item from servicing")
		return
	}

	slog.Info("item returned from servicing", "item_id", itemID, "date", date)
	jsonResponse(w, http.StatusCreated, servicing)
}

// Due handles GET /api/servicing/due: items approaching their usage limit,
// with the number of dives remaining.
func (h *ServicingHandler) Due(w http.ResponseWriter, r *http.Request) {
	threshold := int64(model.UsageMax)
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, _ = strconv.ParseInt(raw, 10, 64)
		if threshold < 1 {
			jsonError(w, http.StatusBadRequest, "invalid threshold")
			return
		}
	}

	due, err := store.ItemsNeedingService(r.Context(), h.DB, threshold)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items needing service")
		return
	}
	if due == nil {
		due = []model.ServiceDue{}
	}
	jsonResponse(w, http.StatusOK, due)
}

// Out handles GET /api/servicing/out: the items currently at the workshop.
func (h *ServicingHandler) Out(w http.ResponseWriter, r *http.Request) {
	items, err := store.ItemsInServicing(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items in servicing")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

type servicingRecordRequest struct {
	Date string `json:"date"`
}

// Record handles POST /api/items/{id}/servicings: files a past maintenance
// record, for paperwork that predates the system or was done off-site. The
// item's flag and usage counter are left alone.
func (h *ServicingHandler) Record(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req servicingRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidDate(req.Date) {
		jsonError(w, http.StatusBadRequest, "invalid servicing date")
		return
	}

	servicing, err := store.AddServicing(r.Context(), h.DB, itemID, req.Date, "")
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to record servicing")
		return
	}

	jsonResponse(w, http.StatusCreated, servicing)
}

// History handles GET /api/items/{id}/servicings.
func (h *ServicingHandler) History(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	servicings, err := store.ListServicings(r.Context(), h.DB, itemID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list servicings")
		return
	}
	if servicings == nil {
		servicings = []model.Servicing{}
	}
	jsonResponse(w, http.StatusOK, servicings)
}

// Report handles GET /api/servicing/reports/{file}: serves a stored report
// photo.
func (h *ServicingHandler) Report(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.PathValue("file"))
	if name == "." || name == "/" {
		jsonError(w, http.StatusBadRequest, "invalid report file")
		return
	}

	data, err := os.ReadFile(filepath.Join(h.ReportsDir, name))
	if err != nil {
		jsonError(w, http.StatusNotFound, "report not found")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
