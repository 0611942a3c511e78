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

// MembersHandler handles club member endpoints.
type MembersHandler struct {
	DB *sql.DB
}

type setGuaranteeRequest struct {
	HasGuarantee     bool   `json:"has_guarantee"`
	GuaranteeEndDate string `json:"guarantee_end_date"`
}

// List handles GET /api/members. With ?guarantee_only=true only members who
// deposited a guarantee are returned.
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	guaranteeOnly := r.URL.Query().Get("guarantee_only") == "true"
	members, err := store.ListMembers(r.Context(), h.DB, guaranteeOnly)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	jsonResponse(w, http.StatusOK, members)
}

// Create handles POST /api/members.
func (h *MembersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Member
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.LastName == "" || req.FirstName == "" {
		jsonError(w, http.StatusBadRequest, "last and first name required")
		return
	}
	if req.GuaranteeEndDate != "" && !model.ValidDate(req.GuaranteeEndDate) {
		jsonError(w, http.StatusBadRequest, "invalid guarantee end date")
		return
	}

	member, err := store.CreateMember(r.Context(), h.DB, &req)
	if err != nil {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}

	jsonResponse(w, http.StatusCreated, member)
}

// Get handles GET /api/members/{id}.
func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := store.GetMember(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		jsonError(w, http.StatusNotFound, "member not found")
		return
	}
	jsonResponse(w, http.StatusOK, member)
}

// SetGuarantee handles PUT /api/members/{id}/guarantee.
func (h *MembersHandler) SetGuarantee(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req setGuaranteeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GuaranteeEndDate != "" && !model.ValidDate(req.GuaranteeEndDate) {
		jsonError(w, http.StatusBadRequest, "invalid guarantee end date")
		return
	}

	if err := store.SetMemberGuarantee(r.Context(), h.DB, id, req.HasGuarantee, req.GuaranteeEndDate); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "member not found")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to update guarantee")
		return
	}

	member, _ := store.GetMember(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, member)
}

// Import handles POST /api/members/import: a multipart CSV upload from the
// federation's member export. With ?flush=true the members table is emptied
// first, the usual start-of-season workflow.
func (h *MembersHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "CSV file required")
		return
	}
	defer file.Close()

	var flushed int64
	if r.URL.Query().Get("flush") == "true" {
		flushed, err = store.DeleteAllMembers(r.Context(), h.DB)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to flush members")
			return
		}
	}

	imported, err := store.ImportMembersCSV(r.Context(), h.DB, file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("members imported", "imported", imported, "flushed", flushed)
	jsonResponse(w, http.StatusOK, map[string]int64{
		"imported": int64(imported),
		"flushed":  flushed,
	})
}
