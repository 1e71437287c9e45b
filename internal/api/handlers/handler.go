package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lecturequiz/internal/extract"
	"lecturequiz/internal/llm"
	"lecturequiz/internal/normalize"
	"lecturequiz/internal/pkg/logger"
	"lecturequiz/internal/prompt"
	"lecturequiz/internal/session"
)

// SessionIDKey is the gin context key under which the session middleware
// stores the caller's session id.
const SessionIDKey = "sessionID"

// ObjectSource fetches stored lecture material by key.
type ObjectSource interface {
	Fetch(ctx context.Context, key string, maxBytes int64) (string, []byte, error)
}

// TranscriptSource turns a video URL into text.
type TranscriptSource interface {
	Transcript(ctx context.Context, url, lang string) (string, error)
}

// Deps are the collaborators a Handler needs. Objects and Videos are
// optional.
type Deps struct {
	Log            *logger.Logger
	Sessions       session.Store
	Generator      llm.Generator
	Models         []llm.Model
	DefaultModel   string
	Objects        ObjectSource
	Videos         TranscriptSource
	Notifier       *Notifier
	MaxUploadBytes int64
}

// Handler contains the API handlers dependencies
type Handler struct {
	Deps
	validator *prompt.Validator
}

func NewHandler(deps Deps) *Handler {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 32 << 20
	}
	return &Handler{Deps: deps, validator: prompt.NewValidator()}
}

var (
	errNoSessionID = errors.New("session id missing from request context")
	errNoSource    = errors.New("no source material: upload files, or give an object key or video URL")
	errNoObjects   = errors.New("object storage is not configured")
	errNoVideos    = errors.New("video transcripts are not available")
	errBadForm     = errors.New("malformed multipart form")

	errBadAnswerRequest = errors.New("malformed answer request")
)

func sessionID(c *gin.Context) (string, error) {
	id := c.GetString(SessionIDKey)
	if id == "" {
		return "", errNoSessionID
	}
	return id, nil
}

// classify maps an error onto an HTTP status and a stable code for clients.
func classify(err error) (int, string) {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, "upload_too_large"
	case errors.Is(err, prompt.ErrInvalidOptions),
		errors.Is(err, llm.ErrUnknownModel),
		errors.Is(err, errNoSource),
		errors.Is(err, errNoObjects),
		errors.Is(err, errNoVideos):
		return http.StatusBadRequest, "invalid_options"
	case errors.Is(err, errBadForm):
		return http.StatusBadRequest, "invalid_form"
	case errors.Is(err, llm.ErrNoAPIKey):
		return http.StatusBadRequest, "missing_api_key"
	case errors.Is(err, extract.ErrFileRead):
		return http.StatusBadRequest, "file_read"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream_timeout"
	case errors.Is(err, llm.ErrUpstream):
		return http.StatusBadGateway, "upstream"
	case errors.Is(err, normalize.ErrMalformedResponse):
		return http.StatusUnprocessableEntity, "malformed_response"
	case errors.Is(err, normalize.ErrNoQuestionList):
		return http.StatusUnprocessableEntity, "no_question_list"
	case errors.Is(err, session.ErrNoQuiz):
		return http.StatusNotFound, "no_quiz"
	case errors.Is(err, session.ErrStaleQuiz):
		return http.StatusConflict, "stale_quiz"
	case errors.Is(err, session.ErrQuestionIndex),
		errors.Is(err, session.ErrUnknownOption),
		errors.Is(err, errBadAnswerRequest):
		return http.StatusBadRequest, "invalid_answer"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// abortWithError logs err, notifies on server-side failures and aborts the
// request with a JSON error body.
func (h *Handler) abortWithError(c *gin.Context, errorContext string, err error) {
	status, code := classify(err)
	body := gin.H{"error": fmt.Sprintf("%s: %v", errorContext, err), "code": code}

	var mre *normalize.MalformedResponseError
	if errors.As(err, &mre) {
		body["raw"] = mre.Raw
	}

	fields := []interface{}{"context", errorContext, "error", err, "status", status, "path", c.Request.URL.Path}
	if id := c.GetString(SessionIDKey); id != "" {
		fields = append(fields, "session", id)
	}
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed", fields...)
		h.notifyFailure(c, status, errorContext, err)
	} else {
		h.Log.Warn("request rejected", fields...)
	}

	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) notifyFailure(c *gin.Context, status int, errorContext string, err error) {
	h.Notifier.Notify(DiscordEmbed{
		Title:       fmt.Sprintf("🚨 API Error: %s", errorContext),
		Description: fmt.Sprintf("**Error Details:**\n```%s```", err.Error()),
		Color:       0xFF0000,
		Fields: []DiscordEmbedField{
			{Name: "HTTP Status", Value: fmt.Sprintf("%d", status), Inline: true},
			{Name: "Path", Value: c.Request.URL.Path},
		},
	})
}
