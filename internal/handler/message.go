package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openkart/storefront/internal/domain/message"
)

type sendMessageRequest struct {
	Content string `json:"content"`
	// UserID targets a buyer's thread when an admin replies. Ignored for
	// buyer-sent messages, which always land in their own thread.
	UserID string `json:"user_id"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	SenderType string    `json:"sender_type"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMessageResponse(m *message.Message) messageResponse {
	return messageResponse{
		ID:         m.ID,
		UserID:     m.UserID,
		Content:    m.Content,
		SenderType: string(m.SenderType),
		CreatedAt:  m.CreatedAt,
	}
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		h.respondError(w, r, message.ErrEmptyContent)
		return
	}

	claims := claimsFrom(r.Context())
	m := &message.Message{
		ID:         uuid.New().String(),
		UserID:     claims.UserID,
		Content:    req.Content,
		SenderType: message.SenderUser,
	}
	if claims.IsAdmin && req.UserID != "" {
		m.UserID = req.UserID
		m.SenderType = message.SenderAdmin
	}

	created, err := h.messages.Create(r.Context(), m)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(created))
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	userID := claims.UserID
	if claims.IsAdmin {
		if v := r.URL.Query().Get("user_id"); v != "" {
			userID = v
		}
	}

	items, err := h.messages.ListForUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := make([]messageResponse, len(items))
	for i := range items {
		resp[i] = toMessageResponse(&items[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) latestMessage(w http.ResponseWriter, r *http.Request) {
	m, err := h.messages.Latest(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if m == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponse(m))
}
