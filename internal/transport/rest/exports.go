package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/transport/auth"
)

func (h *Handler) exportPayments(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "unauthorized")
		return
	}

	var req PaymentsExportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "export payments", err)
		return
	}
	if err := aggregate.Validator().Struct(req); err != nil {
		writeError(w, "export payments", err)
		return
	}

	filter, err := req.ToRepositoryFilter()
	if err != nil {
		writeError(w, "export payments", err)
		return
	}

	exportID, err := h.exports.StartPaymentsExport(r.Context(), req.Fields, filter, userID)
	if err != nil {
		writeError(w, "export payments", err)
		return
	}

	SuccessAccepted(w, "export started", map[string]string{"export_id": exportID})
}

func (h *Handler) listExports(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "unauthorized")
		return
	}

	exports, err := h.exports.GetExports(r.Context(), userID)
	if err != nil {
		writeError(w, "list exports", err)
		return
	}
	Success(w, "", exports)
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "unauthorized")
		return
	}

	export, err := h.exports.GetExport(r.Context(), chi.URLParam(r, "export_id"), userID)
	if err != nil {
		writeError(w, "get export", err)
		return
	}
	Success(w, "", export)
}
