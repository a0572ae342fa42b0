package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkart/storefront/internal/domain/message"
)

func TestSendMessage(t *testing.T) {
	e := newEnv(t)

	t.Run("buyer posts to own thread", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodPost, "/api/messages/send", e.tokenFor(t, "u1", false),
			sendMessageRequest{Content: "Is the A56 in stock?"})
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := decode[messageResponse](t, rec)
		assert.Equal(t, "u1", resp.UserID)
		assert.Equal(t, string(message.SenderUser), resp.SenderType)
	})

	t.Run("buyer cannot target another thread", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodPost, "/api/messages/send", e.tokenFor(t, "u1", false),
			sendMessageRequest{Content: "hello", UserID: "u2"})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "u1", decode[messageResponse](t, rec).UserID)
	})

	t.Run("admin replies into buyer thread", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodPost, "/api/messages/send", e.tokenFor(t, "a1", true),
			sendMessageRequest{Content: "Yes, ships tomorrow.", UserID: "u1"})
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := decode[messageResponse](t, rec)
		assert.Equal(t, "u1", resp.UserID)
		assert.Equal(t, string(message.SenderAdmin), resp.SenderType)
	})

	t.Run("blank content rejected", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodPost, "/api/messages/send", e.tokenFor(t, "u1", false),
			sendMessageRequest{Content: "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListMessages(t *testing.T) {
	e := newEnv(t)
	e.messages.items = []message.Message{
		{ID: "m1", UserID: "u1", Content: "hi", SenderType: message.SenderUser},
		{ID: "m2", UserID: "u1", Content: "hello", SenderType: message.SenderAdmin},
		{ID: "m3", UserID: "u2", Content: "other", SenderType: message.SenderUser},
	}

	t.Run("buyer sees only own thread", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodGet, "/api/messages", e.tokenFor(t, "u1", false), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]messageResponse](t, rec), 2)
	})

	t.Run("admin reads any thread by user_id", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodGet, "/api/messages?user_id=u2", e.tokenFor(t, "a1", true), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		items := decode[[]messageResponse](t, rec)
		require.Len(t, items, 1)
		assert.Equal(t, "m3", items[0].ID)
	})
}

func TestLatestMessage(t *testing.T) {
	e := newEnv(t)
	admin := e.tokenFor(t, "a1", true)

	t.Run("empty inbox", func(t *testing.T) {
		rec := doJSON(t, e.router, http.MethodGet, "/api/admin/messages/latest", admin, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("newest buyer message wins", func(t *testing.T) {
		e.messages.items = []message.Message{
			{ID: "m1", UserID: "u1", Content: "first", SenderType: message.SenderUser},
			{ID: "m2", UserID: "u1", Content: "reply", SenderType: message.SenderAdmin},
			{ID: "m3", UserID: "u2", Content: "newest", SenderType: message.SenderUser},
		}

		rec := doJSON(t, e.router, http.MethodGet, "/api/admin/messages/latest", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "m3", decode[messageResponse](t, rec).ID)
	})
}
