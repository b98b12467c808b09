package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"equiplend-backend/internal/security"
)

// NewRouter wires every API route. All /api/v1 routes sit behind the
// bearer-token middleware; /healthz is public.
func NewRouter(borrowH *BorrowHandler, ledgerH *LedgerHandler, equipmentH *EquipmentHandler, tm security.TokenManager) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tm))

	api.HandleFunc("/borrow/requests", borrowH.CreateRequest).Methods(http.MethodPost)
	api.HandleFunc("/borrow/{id:[0-9]+}/approve", borrowH.Approve).Methods(http.MethodPost)
	api.HandleFunc("/borrow/{id:[0-9]+}/reject", borrowH.Reject).Methods(http.MethodPost)
	api.HandleFunc("/borrow/{id:[0-9]+}/cancel", borrowH.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/borrow/{id:[0-9]+}/return", borrowH.SettleReturn).Methods(http.MethodPost)
	api.HandleFunc("/borrow/{id:[0-9]+}", borrowH.Get).Methods(http.MethodGet)
	api.HandleFunc("/borrow", borrowH.List).Methods(http.MethodGet)

	api.HandleFunc("/members/{id:[0-9]+}/balance", ledgerH.GetBalance).Methods(http.MethodGet)
	api.HandleFunc("/members/{id:[0-9]+}/ledger", ledgerH.ListEntries).Methods(http.MethodGet)
	api.HandleFunc("/members/{id:[0-9]+}/summary", ledgerH.GetSummary).Methods(http.MethodGet)

	api.HandleFunc("/equipment/{id:[0-9]+}/availability", equipmentH.GetAvailability).Methods(http.MethodGet)

	return r
}
