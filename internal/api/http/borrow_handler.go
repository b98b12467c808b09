package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/service"
)

// BorrowHandler exposes the lending lifecycle over HTTP.
type BorrowHandler struct {
	borrowSvc service.BorrowService
}

func NewBorrowHandler(borrowSvc service.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowSvc: borrowSvc}
}

type borrowLineRequest struct {
	EquipmentID int32   `json:"equipment_id"`
	Quantity    int32   `json:"quantity,omitempty"`
	ItemIDs     []int32 `json:"item_ids,omitempty"`
}

type createBorrowRequest struct {
	MemberID       int32               `json:"member_id"`
	Equipment      []borrowLineRequest `json:"equipment"`
	BorrowDate     time.Time           `json:"borrow_date"`
	ExpectedReturn time.Time           `json:"expected_return_date"`
	Purpose        string              `json:"purpose"`
	Location       string              `json:"location"`
}

// CreateRequest handles POST /api/v1/borrow/requests with partial
// success semantics: 201 when every line was accepted, 207 when some
// lines were skipped.
func (h *BorrowHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req createBorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Wrap(domain.KindValidation, "invalid request body", err))
		return
	}
	if req.MemberID <= 0 {
		writeError(w, domain.E(domain.KindValidation, "member_id is required"))
		return
	}

	lines := make([]domain.BorrowLine, len(req.Equipment))
	for i, e := range req.Equipment {
		lines[i] = domain.BorrowLine{
			EquipmentID: e.EquipmentID,
			Quantity:    e.Quantity,
			ItemIDs:     e.ItemIDs,
		}
	}

	result, err := h.borrowSvc.CreateRequest(r.Context(), req.MemberID, &domain.BorrowRequest{
		Lines:          lines,
		BorrowDate:     req.BorrowDate,
		ExpectedReturn: req.ExpectedReturn,
		Purpose:        req.Purpose,
		Location:       req.Location,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if len(result.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

type approvalRequest struct {
	Notes string `json:"notes"`
}

func (h *BorrowHandler) Approve(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	actorID, err := StaffIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var req approvalRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.borrowSvc.Approve(r.Context(), actorID, transactionID, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *BorrowHandler) Reject(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	actorID, err := StaffIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Wrap(domain.KindValidation, "invalid request body", err))
		return
	}

	if err := h.borrowSvc.Reject(r.Context(), actorID, transactionID, req.Notes); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type cancelRequest struct {
	MemberID int32 `json:"member_id"`
}

func (h *BorrowHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Wrap(domain.KindValidation, "invalid request body", err))
		return
	}
	if req.MemberID <= 0 {
		writeError(w, domain.E(domain.KindValidation, "member_id is required"))
		return
	}

	if err := h.borrowSvc.Cancel(r.Context(), req.MemberID, transactionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type settleReturnRequest struct {
	Quantity          int32           `json:"quantity_returned,omitempty"`
	ItemIDs           []int32         `json:"item_ids,omitempty"`
	ActualReturnDate  time.Time       `json:"actual_return_date"`
	Notes             string          `json:"notes,omitempty"`
	DamageCost        decimal.Decimal `json:"damage_cost,omitempty"`
	DamageDescription string          `json:"damage_description,omitempty"`
	AdditionalPenalty decimal.Decimal `json:"additional_penalty,omitempty"`
}

func (h *BorrowHandler) SettleReturn(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	actorID, err := StaffIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var req settleReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Wrap(domain.KindValidation, "invalid request body", err))
		return
	}

	result, err := h.borrowSvc.SettleReturn(r.Context(), actorID, transactionID, &domain.ReturnRequest{
		Quantity:          req.Quantity,
		ItemIDs:           req.ItemIDs,
		ActualReturnDate:  req.ActualReturnDate,
		Notes:             req.Notes,
		DamageCost:        req.DamageCost,
		DamageDescription: req.DamageDescription,
		AdditionalPenalty: req.AdditionalPenalty,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type transactionResponse struct {
	Transaction *domain.BorrowTransaction `json:"transaction"`
	Items       []domain.BorrowedItem     `json:"items"`
	Returns     []domain.ReturnRecord     `json:"returns"`
}

func (h *BorrowHandler) Get(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	t, items, returns, err := h.borrowSvc.Get(r.Context(), transactionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse{Transaction: t, Items: items, Returns: returns})
}

type listResponse struct {
	Transactions []domain.BorrowTransaction `json:"transactions"`
	TotalCount   int32                      `json:"total_count"`
}

func (h *BorrowHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	memberID64, err := strconv.ParseInt(q.Get("member_id"), 10, 32)
	if err != nil {
		writeError(w, domain.E(domain.KindValidation, "member_id query parameter is required"))
		return
	}
	page := queryInt32(q.Get("page"), 1)
	pageSize := queryInt32(q.Get("page_size"), 20)

	transactions, count, err := h.borrowSvc.List(r.Context(), int32(memberID64), q.Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Transactions: transactions, TotalCount: count})
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.Ef(domain.KindValidation, "invalid %s: %q", name, raw)
	}
	return int32(id), nil
}

func queryInt32(raw string, fallback int32) int32 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}
