package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/service"
)

type LedgerHandler struct {
	ledgerSvc service.LedgerService
}

func NewLedgerHandler(ledgerSvc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

type balanceResponse struct {
	MemberID int32           `json:"member_id"`
	Balance  decimal.Decimal `json:"balance"`
}

func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.ledgerSvc.GetBalance(r.Context(), memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{MemberID: memberID, Balance: balance})
}

type ledgerPageResponse struct {
	Entries    []domain.CreditLedgerEntry `json:"entries"`
	TotalCount int32                      `json:"total_count"`
}

func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	page := queryInt32(q.Get("page"), 1)
	pageSize := queryInt32(q.Get("page_size"), 20)

	entries, count, err := h.ledgerSvc.ListEntries(r.Context(), memberID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerPageResponse{Entries: entries, TotalCount: count})
}

func (h *LedgerHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.ledgerSvc.GetSummary(r.Context(), memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
