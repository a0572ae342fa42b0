package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	items, err := h.users.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := make([]userResponse, len(items))
	for i := range items {
		resp[i] = toUserResponse(&items[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
