package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecturequiz/internal/pkg/logger"
)

func TestNotifierSend(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, logger.Nop())
	n.send(context.Background(), DiscordEmbed{Title: "boom"})

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "boom", got.Embeds[0].Title)
	assert.NotEmpty(t, got.Embeds[0].Timestamp)
	assert.Equal(t, "LectureQuiz Notifier", got.Username)
}

func TestNotifierDisabled(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() { n.Notify(DiscordEmbed{Title: "x"}) })
	assert.NotPanics(t, func() { NewNotifier("", logger.Nop()).Notify(DiscordEmbed{Title: "x"}) })
}
