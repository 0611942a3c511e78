package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/divegear/gearbase/internal/model"
	"github.com/divegear/gearbase/internal/store"
)

// LoansHandler handles the loan desk endpoints.
type LoansHandler struct {
	DB *sql.DB
}

type borrowRequest struct {
	ItemID int64 `json:"item_id"`

	// Alternative item lookup, for scanned labels.
	ItemType      string `json:"item_type"`
	ItemReference int64  `json:"item_reference"`

	MemberID int64 `json:"member_id"`

	// Alternative member lookup, for scanned license cards.
	LicenseNb string `json:"license_nb"`

	// Dives this loan will count for; defaults to 1.
	UsageIncrement int64 `json:"usage_increment"`
}

type giveBackRequest struct {
	ItemID int64 `json:"item_id"`

	ItemType      string `json:"item_type"`
	ItemReference int64  `json:"item_reference"`

	// Optional correction when the diver reports a different dive count
	// than estimated at borrow time.
	UsageCounter *int64 `json:"usage_counter"`
}

func (h *LoansHandler) resolveItemID(r *http.Request, itemID int64, itemType string, reference int64) (int64, error) {
	if itemID != 0 {
		return itemID, nil
	}
	if itemType == "" || reference == 0 {
		return 0, errors.New("item_id or item_type and item_reference required")
	}
	return store.ItemIDByReference(r.Context(), h.DB, itemType, reference)
}

// Borrow handles POST /api/loans.
func (h *LoansHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req borrowRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	itemID, err := h.resolveItemID(r, req.ItemID, req.ItemType, req.ItemReference)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, itemID, false)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if !model.IsBorrowable(item.Type) {
		jsonError(w, http.StatusBadRequest, "this item type cannot be lent on its own")
		return
	}

	memberID := req.MemberID
	if memberID == 0 && req.LicenseNb != "" {
		memberID, err = store.MemberIDByLicense(r.Context(), h.DB, req.LicenseNb)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				jsonError(w, http.StatusNotFound, "no member with this license number")
				return
			}
			jsonError(w, http.StatusInternalServerError, "failed to resolve member")
			return
		}
	}
	if memberID == 0 {
		jsonError(w, http.StatusBadRequest, "member_id or license_nb required")
		return
	}

	member, err := store.GetMember(r.Context(), h.DB, memberID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil {
		jsonError(w, http.StatusNotFound, "member not found")
		return
	}
	if !member.HasGuarantee {
		jsonError(w, http.StatusBadRequest, "member has no guarantee on deposit")
		return
	}

	increment := req.UsageIncrement
	if increment < 1 {
		increment = 1
	}

	loan, err := store.BorrowItem(r.Context(), h.DB, itemID, claims.UserID, memberID, time.Now(), increment)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyBorrowed) {
			jsonError(w, http.StatusConflict, "item is already out on loan")
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("item borrowed",
		"item", item.Label(),
		"member", member.FullName(),
		"lender", claims.Username,
	)
	jsonResponse(w, http.StatusCreated, loan)
}

// GiveBack handles POST /api/loans/return.
func (h *LoansHandler) GiveBack(w http.ResponseWriter, r *http.Request) {
	var req giveBackRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	itemID, err := h.resolveItemID(r, req.ItemID, req.ItemType, req.ItemReference)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.GiveBackItem(r.Context(), h.DB, itemID, time.Now(), req.UsageCounter); err != nil {
		if errors.Is(err, store.ErrNotBorrowed) {
			jsonError(w, http.StatusConflict, "item is not out on loan")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to return item")
		return
	}

	slog.Info("item returned", "item_id", itemID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item returned"})
}

// List handles GET /api/loans: the open loans, grouped per member in display
// order.
func (h *LoansHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := store.ListLoans(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list loans")
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// Borrowed handles GET /api/loans/borrowed: the items currently out, ordered
// by label for the return desk picker.
func (h *LoansHandler) Borrowed(w http.ResponseWriter, r *http.Request) {
	loans, err := store.BorrowedItems(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list borrowed items")
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// History handles GET /api/loans/history: the closed loans, ordered by item
// then start time.
func (h *LoansHandler) History(w http.ResponseWriter, r *http.Request) {
	loans, err := store.LoanHistory(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list loan history")
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}
