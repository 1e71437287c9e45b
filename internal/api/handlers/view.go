package handlers

import (
	"time"

	"github.com/google/uuid"

	"lecturequiz/internal/models"
	"lecturequiz/internal/normalize"
	"lecturequiz/internal/segment"
	"lecturequiz/internal/session"
)

// AnswerView is the recorded answer plus the feedback it unlocks.
type AnswerView struct {
	SelectedOption string    `json:"selected_option"`
	SelectedLabel  string    `json:"selected_label,omitempty"`
	IsCorrect      bool      `json:"is_correct"`
	AnsweredAt     time.Time `json:"answered_at"`
	CorrectLabel   string    `json:"correct_label"`
	Explanation    string    `json:"explanation"`
}

type QuestionView struct {
	Index     int            `json:"index"`
	Kind      models.Kind    `json:"kind"`
	KindLabel string         `json:"kind_label"`
	Body      string         `json:"body"`
	Layout    segment.Layout `json:"layout"`
	Options   []string       `json:"options"`
	Answer    *AnswerView    `json:"answer,omitempty"`
}

type ScoreView struct {
	models.Score
	Complete bool `json:"complete"`
}

type QuizView struct {
	QuizID     uuid.UUID            `json:"quiz_id"`
	Questions  []QuestionView       `json:"questions"`
	Score      ScoreView            `json:"score"`
	Advisories []normalize.Advisory `json:"advisories,omitempty"`
}

// AnswerResponse is returned after an answer is recorded.
type AnswerResponse struct {
	QuizID uuid.UUID  `json:"quiz_id"`
	Index  int        `json:"index"`
	Answer AnswerView `json:"answer"`
	Score  ScoreView  `json:"score"`
}

func scoreView(st *session.State) ScoreView {
	s := st.Score()
	return ScoreView{Score: s, Complete: s.Complete()}
}

func answerView(q models.Question, rec models.AnswerRecord) AnswerView {
	return AnswerView{
		SelectedOption: rec.SelectedOption,
		SelectedLabel:  rec.SelectedLabel,
		IsCorrect:      rec.IsCorrect,
		AnsweredAt:     rec.AnsweredAt,
		CorrectLabel:   q.CorrectLabel,
		Explanation:    q.Explanation,
	}
}

// quizView renders the session's quiz. Correct answers and explanations are
// only included for answered questions.
func quizView(st *session.State, advisories []normalize.Advisory) QuizView {
	view := QuizView{
		QuizID:     st.QuizID,
		Questions:  make([]QuestionView, len(st.Questions)),
		Score:      scoreView(st),
		Advisories: advisories,
	}
	for i, q := range st.Questions {
		qv := QuestionView{
			Index:     i,
			Kind:      q.Kind,
			KindLabel: q.KindLabel,
			Body:      q.Body,
			Layout:    segment.Split(q.Body),
			Options:   q.Options,
		}
		if rec, ok := st.Answer(i); ok && rec.Answered {
			av := answerView(q, rec)
			qv.Answer = &av
		}
		view.Questions[i] = qv
	}
	return view
}
