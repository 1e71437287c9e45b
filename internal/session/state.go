// Package session holds the per-browser-session quiz and answer state.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"lecturequiz/internal/models"
	"lecturequiz/internal/normalize"
)

var (
	ErrNoQuiz        = errors.New("no quiz in session")
	ErrQuestionIndex = errors.New("question index out of range")
	ErrUnknownOption = errors.New("option is not one of the question's options")
	ErrStaleQuiz     = errors.New("quiz was replaced")
)

// State is the quiz and answer state of one interactive session. It is a
// plain value: stores hand out copies and persist whole states.
type State struct {
	QuizID    uuid.UUID                   `json:"quiz_id"`
	Questions []models.Question           `json:"questions"`
	Answers   map[int]models.AnswerRecord `json:"answers"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

func newState(now time.Time) *State {
	return &State{
		Answers:   map[int]models.AnswerRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasQuiz reports whether a quiz has been accepted into the session.
func (s *State) HasQuiz() bool {
	return s.QuizID != uuid.Nil
}

// SetQuiz replaces the quiz and drops every answer recorded for the
// previous one. It returns the new quiz id.
func (s *State) SetQuiz(questions []models.Question) uuid.UUID {
	s.QuizID = uuid.New()
	s.Questions = append([]models.Question(nil), questions...)
	s.Answers = map[int]models.AnswerRecord{}
	s.UpdatedAt = time.Now()
	return s.QuizID
}

// ClearQuiz drops the quiz and its answers.
func (s *State) ClearQuiz() {
	s.QuizID = uuid.Nil
	s.Questions = nil
	s.Answers = map[int]models.AnswerRecord{}
	s.UpdatedAt = time.Now()
}

// CheckQuiz fails with ErrStaleQuiz when quizID is set and no longer names
// the current quiz.
func (s *State) CheckQuiz(quizID uuid.UUID) error {
	if !s.HasQuiz() {
		return ErrNoQuiz
	}
	if quizID != uuid.Nil && quizID != s.QuizID {
		return ErrStaleQuiz
	}
	return nil
}

// RecordAnswer scores option against question index. Answering again
// recomputes the record from the newly selected option.
func (s *State) RecordAnswer(index int, option string) (models.AnswerRecord, error) {
	if !s.HasQuiz() {
		return models.AnswerRecord{}, ErrNoQuiz
	}
	if index < 0 || index >= len(s.Questions) {
		return models.AnswerRecord{}, ErrQuestionIndex
	}
	q := s.Questions[index]

	selected := ""
	for _, o := range q.Options {
		if o == option {
			selected = o
			break
		}
	}
	if selected == "" {
		return models.AnswerRecord{}, ErrUnknownOption
	}

	letter, ok := normalize.ExtractLetter(selected)
	rec := models.AnswerRecord{
		SelectedOption: selected,
		SelectedLabel:  letter,
		IsCorrect:      ok && letter == q.CorrectLabel,
		Answered:       true,
		AnsweredAt:     time.Now(),
	}
	if s.Answers == nil {
		s.Answers = map[int]models.AnswerRecord{}
	}
	s.Answers[index] = rec
	s.UpdatedAt = rec.AnsweredAt
	return rec, nil
}

// Answer returns the record for index, if one exists.
func (s *State) Answer(index int) (models.AnswerRecord, bool) {
	rec, ok := s.Answers[index]
	return rec, ok
}

// Score is recomputed from the records on every call.
func (s *State) Score() models.Score {
	score := models.Score{Total: len(s.Questions)}
	for i := range s.Questions {
		rec, ok := s.Answers[i]
		if !ok || !rec.Answered {
			continue
		}
		score.Answered++
		if rec.IsCorrect {
			score.Correct++
		}
	}
	return score
}

func (s *State) clone() *State {
	c := *s
	c.Questions = append([]models.Question(nil), s.Questions...)
	c.Answers = make(map[int]models.AnswerRecord, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v
	}
	return &c
}
