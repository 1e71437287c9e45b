package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lecturequiz/internal/extract"
	"lecturequiz/internal/llm"
	"lecturequiz/internal/models"
	"lecturequiz/internal/normalize"
	"lecturequiz/internal/prompt"
	"lecturequiz/internal/session"
	"lecturequiz/internal/youtube"
)

const transcriptLang = "pt"

// generateForm carries the non-option fields of a generate request.
type generateForm struct {
	opts      prompt.Options
	apiKey    string
	objectKey string
	videoURL  string
}

// HandleGenerateQuiz extracts the uploaded material, asks the model for a
// quiz and, only if the reply normalizes, replaces the session's quiz.
func (h *Handler) HandleGenerateQuiz(c *gin.Context) {
	startTime := time.Now()
	ctx := c.Request.Context()

	sid, err := sessionID(c)
	if err != nil {
		h.abortWithError(c, "Resolve session", err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	if err := c.Request.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		h.abortWithError(c, "Failed to parse multipart form", errors.Join(errBadForm, err))
		return
	}

	form, err := h.parseGenerateForm(c)
	if err != nil {
		h.abortWithError(c, "Invalid quiz options", err)
		return
	}

	docs, err := h.collectDocuments(c, form)
	if err != nil {
		h.abortWithError(c, "Collect source material", err)
		return
	}
	source, err := extract.Documents(ctx, docs)
	if err != nil {
		h.abortWithError(c, "Extract text", err)
		return
	}
	h.Log.Info("extracted source text", "session", sid, "documents", len(docs), "chars", len(source))

	p := prompt.Build(form.opts, source)
	raw, err := h.Generator.Generate(ctx, llm.Request{
		System: p.System,
		User:   p.User,
		Model:  form.opts.Model,
		APIKey: form.apiKey,
	})
	if err != nil {
		h.abortWithError(c, "Generate quiz", err)
		return
	}

	res, err := normalize.Normalize(raw, form.opts.Count)
	if err != nil {
		h.abortWithError(c, "Normalize model reply", err)
		return
	}
	for _, adv := range res.Advisories {
		h.Log.Warn("quiz advisory", "session", sid, "code", adv.Code, "index", adv.Index, "message", adv.Message)
	}

	st, err := h.Sessions.Update(ctx, sid, func(st *session.State) error {
		st.SetQuiz(res.Questions)
		return nil
	})
	if err != nil {
		h.abortWithError(c, "Store quiz in session", err)
		return
	}

	h.Log.Info("quiz generated",
		"session", sid,
		"quiz", st.QuizID,
		"model", form.opts.Model,
		"questions", len(res.Questions),
		"advisories", len(res.Advisories),
		"duration", time.Since(startTime),
	)
	c.JSON(http.StatusCreated, quizView(st, res.Advisories))
}

// HandleGetQuiz returns the current quiz with its answers and score.
func (h *Handler) HandleGetQuiz(c *gin.Context) {
	sid, err := sessionID(c)
	if err != nil {
		h.abortWithError(c, "Resolve session", err)
		return
	}
	st, err := h.Sessions.Load(c.Request.Context(), sid)
	if err != nil {
		h.abortWithError(c, "Load session", err)
		return
	}
	if !st.HasQuiz() {
		h.abortWithError(c, "Get quiz", session.ErrNoQuiz)
		return
	}
	c.JSON(http.StatusOK, quizView(st, nil))
}

// HandleClearQuiz drops the quiz and its answers.
func (h *Handler) HandleClearQuiz(c *gin.Context) {
	sid, err := sessionID(c)
	if err != nil {
		h.abortWithError(c, "Resolve session", err)
		return
	}
	if _, err := h.Sessions.Update(c.Request.Context(), sid, func(st *session.State) error {
		st.ClearQuiz()
		return nil
	}); err != nil {
		h.abortWithError(c, "Clear quiz", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) parseGenerateForm(c *gin.Context) (generateForm, error) {
	opts := prompt.DefaultOptions()

	intField := func(name string, dst *int) error {
		raw := strings.TrimSpace(c.PostForm(name))
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", prompt.ErrInvalidOptions, name)
		}
		*dst = n
		return nil
	}
	if err := intField("count", &opts.Count); err != nil {
		return generateForm{}, err
	}
	if err := intField("alternatives", &opts.Alternatives); err != nil {
		return generateForm{}, err
	}
	if d := strings.TrimSpace(c.PostForm("difficulty")); d != "" {
		opts.Difficulty = models.Difficulty(d)
	}
	if kinds := formList(c.PostFormArray("kinds")); len(kinds) > 0 {
		opts.Kinds = nil
		for _, k := range kinds {
			opts.Kinds = append(opts.Kinds, models.Kind(k))
		}
	}
	opts.Focus = strings.TrimSpace(c.PostForm("focus"))
	opts.Model = strings.TrimSpace(c.PostForm("model"))
	if opts.Model == "" {
		opts.Model = h.DefaultModel
	}

	if err := h.validator.Validate(opts); err != nil {
		return generateForm{}, err
	}
	if !h.knownModel(opts.Model) {
		return generateForm{}, fmt.Errorf("%w: model %q is not available", prompt.ErrInvalidOptions, opts.Model)
	}

	return generateForm{
		opts:      opts,
		apiKey:    strings.TrimSpace(c.PostForm("api_key")),
		objectKey: strings.TrimSpace(c.PostForm("object_key")),
		videoURL:  strings.TrimSpace(c.PostForm("video_url")),
	}, nil
}

func (h *Handler) knownModel(id string) bool {
	for _, m := range h.Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// formList accepts repeated fields as well as comma separated values.
func formList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// collectDocuments gathers uploads, then the stored object, then the video
// transcript, in that order.
func (h *Handler) collectDocuments(c *gin.Context, form generateForm) ([]extract.Document, error) {
	ctx := c.Request.Context()
	var docs []extract.Document

	if c.Request.MultipartForm != nil {
		for _, fh := range c.Request.MultipartForm.File["files"] {
			data, err := readUpload(fh)
			if err != nil {
				return nil, &extract.FileReadError{Name: fh.Filename, Err: err}
			}
			docs = append(docs, extract.Document{Name: fh.Filename, Data: data})
		}
	}

	if form.objectKey != "" {
		if h.Objects == nil {
			return nil, errNoObjects
		}
		name, data, err := h.Objects.Fetch(ctx, form.objectKey, h.MaxUploadBytes)
		if err != nil {
			return nil, &extract.FileReadError{Name: form.objectKey, Err: err}
		}
		docs = append(docs, extract.Document{Name: name, Data: data})
	}

	if form.videoURL != "" {
		if h.Videos == nil {
			return nil, errNoVideos
		}
		text, err := h.Videos.Transcript(ctx, form.videoURL, transcriptLang)
		if err != nil {
			return nil, &extract.FileReadError{Name: form.videoURL, Err: err}
		}
		name := "transcript.txt"
		if id, err := youtube.VideoID(form.videoURL); err == nil {
			name = id + ".txt"
		}
		docs = append(docs, extract.Document{Name: name, Data: []byte(text)})
	}

	if len(docs) == 0 {
		return nil, errNoSource
	}
	return docs, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
