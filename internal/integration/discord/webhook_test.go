package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSend(t *testing.T) {
	var got WebhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, srv.Client())
	err := wh.Send(context.Background(), WebhookMessage{Embeds: []Embed{{Title: "PIREP filed", Color: ColorInfo}}})

	require.NoError(t, err)
	assert.Equal(t, "VA Operations", got.Username)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "PIREP filed", got.Embeds[0].Title)
}

func TestWebhookRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL, srv.Client()).Send(context.Background(), WebhookMessage{Content: "x"})
	assert.Error(t, err)
}

func TestNilWebhookIsNoop(t *testing.T) {
	wh := NewWebhook("", http.DefaultClient)
	assert.Nil(t, wh)
	assert.NoError(t, wh.Send(context.Background(), WebhookMessage{Content: "x"}))
}
