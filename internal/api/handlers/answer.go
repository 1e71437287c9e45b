package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lecturequiz/internal/models"
	"lecturequiz/internal/session"
)

// SubmitAnswerRequest selects one option of one question. QuizID is optional;
// when present it must name the current quiz.
type SubmitAnswerRequest struct {
	QuizID uuid.UUID `json:"quiz_id"`
	Index  *int      `json:"index" binding:"required"`
	Option string    `json:"option" binding:"required"`
}

// HandleSubmitAnswer records (or replaces) the answer to one question.
func (h *Handler) HandleSubmitAnswer(c *gin.Context) {
	sid, err := sessionID(c)
	if err != nil {
		h.abortWithError(c, "Resolve session", err)
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortWithError(c, "Bind answer request", errors.Join(errBadAnswerRequest, err))
		return
	}

	var rec models.AnswerRecord
	var q models.Question
	st, err := h.Sessions.Update(c.Request.Context(), sid, func(st *session.State) error {
		if err := st.CheckQuiz(req.QuizID); err != nil {
			return err
		}
		r, err := st.RecordAnswer(*req.Index, req.Option)
		if err != nil {
			return err
		}
		rec, q = r, st.Questions[*req.Index]
		return nil
	})
	if err != nil {
		h.abortWithError(c, "Record answer", err)
		return
	}

	h.Log.Debug("answer recorded", "session", sid, "quiz", st.QuizID, "index", *req.Index, "correct", rec.IsCorrect)
	c.JSON(http.StatusOK, AnswerResponse{
		QuizID: st.QuizID,
		Index:  *req.Index,
		Answer: answerView(q, rec),
		Score:  scoreView(st),
	})
}
