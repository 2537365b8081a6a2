package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"classroom-ledger/internal/aggregate"
)

type payInstallmentRequest struct {
	PaymentID *string `json:"paymentId"`
}

func (h *Handler) createPlan(w http.ResponseWriter, r *http.Request) {
	var in aggregate.NewPlanInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, "create plan", err)
		return
	}

	plan, err := h.plans.Create(r.Context(), in)
	if err != nil {
		writeError(w, "create plan", err)
		return
	}
	SuccessCreated(w, "plan created", plan)
}

func (h *Handler) getPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.plans.Get(r.Context(), chi.URLParam(r, "plan_id"))
	if err != nil {
		writeError(w, "get plan", err)
		return
	}
	Success(w, "", plan)
}

func (h *Handler) payInstallment(w http.ResponseWriter, r *http.Request) {
	number, err := parsePositiveInt("number", chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, "pay installment", err)
		return
	}

	var req payInstallmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "pay installment", err)
		return
	}

	plan, err := h.plans.PayInstallment(r.Context(), chi.URLParam(r, "plan_id"), number, req.PaymentID)
	if err != nil {
		writeError(w, "pay installment", err)
		return
	}
	Success(w, "installment paid", plan)
}
