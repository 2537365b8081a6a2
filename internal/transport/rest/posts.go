package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) postStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.posts.Stats(r.Context(), chi.URLParam(r, "class_id"))
	if err != nil {
		writeError(w, "post stats", err)
		return
	}
	Success(w, "", stats)
}

func (h *Handler) studentEngagement(w http.ResponseWriter, r *http.Request) {
	scores, err := h.posts.StudentEngagement(r.Context(), chi.URLParam(r, "class_id"))
	if err != nil {
		writeError(w, "student engagement", err)
		return
	}
	Success(w, "", scores)
}

func (h *Handler) classEngagement(w http.ResponseWriter, r *http.Request) {
	scores, err := h.posts.ClassEngagement(r.Context())
	if err != nil {
		writeError(w, "class engagement", err)
		return
	}
	Success(w, "", scores)
}
