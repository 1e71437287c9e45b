package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoID(t *testing.T) {
	tests := map[string]string{
		"dQw4w9WgXcQ":                                     "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":     "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                    "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":       "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?t=1&v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
	}
	for in, want := range tests {
		got, err := VideoID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := VideoID("https://example.com/video")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func newTestServer(t *testing.T, watchPage func(base string) string, transcript string) *Client {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, watchPage(srv.URL))
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lang") != "pt" {
			fmt.Fprint(w, `<transcript><text start="0" dur="1">wrong track</text></transcript>`)
			return
		}
		fmt.Fprint(w, transcript)
	})

	c := New()
	c.baseURL = srv.URL
	return c
}

func TestTranscriptPicksLanguage(t *testing.T) {
	c := newTestServer(t, func(base string) string {
		return `<html>..."captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
			`{"baseUrl":"` + base + `/timedtext?lang=en","languageCode":"en"},` +
			`{"baseUrl":"` + base + `/timedtext?lang=pt","languageCode":"pt"}]}},"videoDetails":{}...</html>`
	}, `<transcript><text start="0" dur="2.5">Olá &amp; bem-vindos</text><text start="2.5" dur="1">à aula</text></transcript>`)

	text, err := c.Transcript(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "pt")
	require.NoError(t, err)
	assert.Equal(t, "Olá & bem-vindos à aula", text)
}

func TestTranscriptNoCaptions(t *testing.T) {
	c := newTestServer(t, func(string) string { return "<html>no captions here</html>" }, "")
	_, err := c.Transcript(context.Background(), "dQw4w9WgXcQ", "pt")
	assert.ErrorIs(t, err, ErrNoCaptions)
}
