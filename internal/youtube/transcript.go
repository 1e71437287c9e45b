// Package youtube turns a lecture video URL into transcript text, so a
// recorded class can be quizzed like an uploaded document.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://www.youtube.com"
	maxPageBytes    = 8 << 20
	reYouTubeURL    = `(?:youtube\.com\/(?:[^\/]+\/.+\/|(?:v|e(?:mbed)?)\/|.*[?&]v=)|youtu\.be\/)([^"&?\/\s]{11})`
	reXMLTranscript = `<text start="([^"]*)" dur="([^"]*)">([^<]*)<\/text>`
)

var (
	ErrInvalidURL = errors.New("invalid YouTube URL or video ID")
	ErrNoCaptions = errors.New("no captions available for video")

	videoIDRe    = regexp.MustCompile(reYouTubeURL)
	bareIDRe     = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	transcriptRe = regexp.MustCompile(reXMLTranscript)
)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

// Client scrapes the caption track list from the watch page.
type Client struct {
	http    *http.Client
	baseURL string
}

func New() *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
	}
}

// Transcript returns the transcript of the video at url in lang, falling back
// to the first track when lang has none.
func (c *Client) Transcript(ctx context.Context, url, lang string) (string, error) {
	videoID, err := VideoID(url)
	if err != nil {
		return "", err
	}

	page, err := c.get(ctx, fmt.Sprintf("%s/watch?v=%s", c.baseURL, videoID))
	if err != nil {
		return "", fmt.Errorf("failed to fetch video page: %w", err)
	}
	tracks, err := captionTracks(page)
	if err != nil {
		return "", fmt.Errorf("video %s: %w", videoID, err)
	}

	track := tracks[0]
	for _, t := range tracks {
		if t.LanguageCode == lang {
			track = t
			break
		}
	}

	body, err := c.get(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch transcript: %w", err)
	}

	var text strings.Builder
	for _, m := range transcriptRe.FindAllStringSubmatch(string(body), -1) {
		line := strings.TrimSpace(html.UnescapeString(m[3]))
		if line == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString(" ")
		}
		text.WriteString(line)
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("video %s: %w", videoID, ErrNoCaptions)
	}
	return text.String(), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}

func captionTracks(page []byte) ([]captionTrack, error) {
	_, rest, ok := strings.Cut(string(page), `"captions":`)
	if !ok {
		return nil, ErrNoCaptions
	}
	end := strings.Index(rest, `,"videoDetails`)
	if end < 0 {
		return nil, ErrNoCaptions
	}

	var captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	if err := json.Unmarshal([]byte(rest[:end]), &captions); err != nil {
		return nil, fmt.Errorf("failed to parse captions data: %w", err)
	}
	tracks := captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

// VideoID accepts a watch, short or embed URL, or a bare 11-character id.
func VideoID(url string) (string, error) {
	url = strings.TrimSpace(url)
	if bareIDRe.MatchString(url) {
		return url, nil
	}
	if m := videoIDRe.FindStringSubmatch(url); m != nil {
		return m[1], nil
	}
	return "", ErrInvalidURL
}
