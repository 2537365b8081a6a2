package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) studentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.payments.StudentSummary(r.Context(), chi.URLParam(r, "student_id"))
	if err != nil {
		writeError(w, "student summary", err)
		return
	}
	Success(w, "", summary)
}

func (h *Handler) classOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.payments.ClassOverview(r.Context(), chi.URLParam(r, "class_id"))
	if err != nil {
		writeError(w, "class overview", err)
		return
	}
	Success(w, "", overview)
}

func (h *Handler) classReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.reminders.Reminders(r.Context(), chi.URLParam(r, "class_id"))
	if err != nil {
		writeError(w, "class reminders", err)
		return
	}
	Success(w, "", reminders)
}

func (h *Handler) paymentStats(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r).ToRepositoryFilter()
	if err != nil {
		writeError(w, "payment stats", err)
		return
	}

	stats, err := h.payments.Stats(r.Context(), filter)
	if err != nil {
		writeError(w, "payment stats", err)
		return
	}
	Success(w, "", stats)
}
