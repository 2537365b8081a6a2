package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/service"
	"classroom-ledger/internal/transport/auth"
)

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.Get(r.Context(), chi.URLParam(r, "payment_id"))
	if err != nil {
		writeError(w, "get payment", err)
		return
	}
	Success(w, "", p)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "unauthorized")
		return
	}

	var in aggregate.NewPaymentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, "create payment", err)
		return
	}

	p, err := h.payments.Create(r.Context(), in, userID)
	if err != nil {
		writeError(w, "create payment", err)
		return
	}
	SuccessCreated(w, "payment created", p)
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "unauthorized")
		return
	}

	var in service.ProcessInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, "process payment", err)
		return
	}

	p, err := h.payments.Process(r.Context(), chi.URLParam(r, "payment_id"), in, userID)
	if err != nil {
		writeError(w, "process payment", err)
		return
	}
	Success(w, "payment processed", p)
}

func (h *Handler) editPayment(w http.ResponseWriter, r *http.Request) {
	var edits aggregate.PaymentEdit
	if err := decodeJSON(r, &edits); err != nil {
		writeError(w, "edit payment", err)
		return
	}

	p, err := h.payments.Edit(r.Context(), chi.URLParam(r, "payment_id"), edits)
	if err != nil {
		writeError(w, "edit payment", err)
		return
	}
	Success(w, "payment updated", p)
}
