package models

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind is the closed set of question layouts the renderer knows about.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindTrueFalse      Kind = "true_false"
	KindMatching       Kind = "matching"
	KindUnknown        Kind = "unknown"
)

// Kinds lists the kinds a user may request, in display order.
var Kinds = []Kind{KindMultipleChoice, KindTrueFalse, KindMatching}

var kindLabels = map[Kind]string{
	KindMultipleChoice: "Múltipla Escolha",
	KindTrueFalse:      "Verdadeiro ou Falso",
	KindMatching:       "Associação de Colunas",
	KindUnknown:        "Pergunta",
}

// Label returns the display label used in prompts and in the UI.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return kindLabels[KindUnknown]
}

// Valid reports whether k is one of the requestable kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// kindAliases maps folded (lowercase, accentless, punctuation collapsed) labels to kinds.
var kindAliases = map[string]Kind{
	"multipla escolha":      KindMultipleChoice,
	"escolha multipla":      KindMultipleChoice,
	"multiple choice":       KindMultipleChoice,
	"multiple_choice":       KindMultipleChoice,
	"mcq":                   KindMultipleChoice,
	"verdadeiro ou falso":   KindTrueFalse,
	"verdadeiro falso":      KindTrueFalse,
	"v f":                   KindTrueFalse,
	"true false":            KindTrueFalse,
	"true or false":         KindTrueFalse,
	"true_false":            KindTrueFalse,
	"associacao de colunas": KindMatching,
	"associacao":            KindMatching,
	"correspondencia":       KindMatching,
	"matching":              KindMatching,
}

// ParseKind maps a free-text kind label, as emitted by the model, onto the
// closed enum. Anything unrecognised is KindUnknown.
func ParseKind(label string) Kind {
	folded := foldLabel(label)
	if folded == "" {
		return KindUnknown
	}
	if k, ok := kindAliases[folded]; ok {
		return k
	}
	if k, ok := kindAliases[strings.ReplaceAll(folded, " ", "_")]; ok {
		return k
	}
	return KindUnknown
}

func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	fields := strings.FieldsFunc(out, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	return strings.Join(fields, " ")
}

// Difficulty is the fixed difficulty scale offered to the user.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists difficulties in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

var difficultyLabels = map[Difficulty]string{
	DifficultyEasy:   "Fácil (Memorização)",
	DifficultyMedium: "Médio (Aplicação)",
	DifficultyHard:   "Difícil (Análise Crítica)",
}

func (d Difficulty) Label() string {
	return difficultyLabels[d]
}

func (d Difficulty) Valid() bool {
	_, ok := difficultyLabels[d]
	return ok
}

// NoExplanation is shown when the model omitted the explanation field.
const NoExplanation = "Sem explicação disponível."

// Question is one normalized quiz question.
type Question struct {
	Kind         Kind     `json:"kind"`
	KindLabel    string   `json:"kind_label"` // label as the model wrote it
	Body         string   `json:"body"`
	Options      []string `json:"options"`
	CorrectLabel string   `json:"correct_label"`
	Explanation  string   `json:"explanation"`
}

// AnswerRecord is the per-question answer state of a session.
type AnswerRecord struct {
	SelectedOption string    `json:"selected_option"`
	SelectedLabel  string    `json:"selected_label,omitempty"`
	IsCorrect      bool      `json:"is_correct"`
	Answered       bool      `json:"answered"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// Score is derived on demand from the answer records.
type Score struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
	Total    int `json:"total"`
}

// Complete reports whether every question has been answered.
func (s Score) Complete() bool {
	return s.Total > 0 && s.Answered == s.Total
}
