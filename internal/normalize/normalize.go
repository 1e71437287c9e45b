// Package normalize turns a model's free-text quiz reply into validated
// questions with a canonical single-letter answer key.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"lecturequiz/internal/models"
)

// Result is a validated question list plus non-fatal advisories.
type Result struct {
	Questions  []models.Question `json:"questions"`
	Advisories []Advisory        `json:"advisories"`
}

// Field names as requested by the prompt, followed by tolerated aliases.
var (
	kindFields        = []string{"tipo", "type", "kind"}
	bodyFields        = []string{"pergunta", "question", "body", "enunciado"}
	optionFields      = []string{"opcoes", "opções", "options", "alternativas"}
	correctFields     = []string{"resposta_correta", "correct_answer", "answer", "resposta"}
	explanationFields = []string{"explicacao", "explicação", "explanation"}
)

// Normalize parses raw and returns at most requested questions. A
// requested value <= 0 disables the count checks.
//
// Errors are *MalformedResponseError (no payload, or it does not parse) or
// ErrNoQuestionList. Individual bad elements never fail the call; they are
// dropped and reported as advisories.
func Normalize(raw string, requested int) (Result, error) {
	payload, err := locatePayload(StripFences(raw))
	if err != nil {
		return Result{}, &MalformedResponseError{Raw: raw, Err: err}
	}

	list, ok := firstList(payload)
	if !ok {
		return Result{}, ErrNoQuestionList
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(list, &elements); err != nil {
		return Result{}, &MalformedResponseError{Raw: raw, Err: err}
	}

	res := Result{Questions: make([]models.Question, 0, len(elements))}
	for i, el := range elements {
		q, adv := parseQuestion(i, el)
		if adv != nil {
			res.Advisories = append(res.Advisories, *adv)
			continue
		}
		res.Questions = append(res.Questions, q)
	}

	if len(res.Questions) == 0 {
		return Result{}, fmt.Errorf("%w: none of %d element(s) is a usable question", ErrNoQuestionList, len(elements))
	}

	if requested > 0 {
		switch n := len(res.Questions); {
		case n > requested:
			res.Questions = res.Questions[:requested]
			res.Advisories = append(res.Advisories, Advisory{
				Code:    AdvisoryTooMany,
				Index:   -1,
				Message: fmt.Sprintf("model returned %d questions, kept the first %d", n, requested),
			})
		case n < requested:
			res.Advisories = append(res.Advisories, Advisory{
				Code:    AdvisoryTooFew,
				Index:   -1,
				Message: fmt.Sprintf("model returned %d of %d requested questions", n, requested),
			})
		}
	}
	return res, nil
}

func parseQuestion(index int, raw json.RawMessage) (models.Question, *Advisory) {
	incomplete := func(format string, args ...any) (models.Question, *Advisory) {
		return models.Question{}, &Advisory{
			Code:    AdvisoryIncompleteQuestion,
			Index:   index,
			Message: fmt.Sprintf(format, args...),
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return incomplete("element %d is not an object", index)
	}
	lowered := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}

	kindLabel, ok := stringField(lowered, kindFields)
	if !ok {
		return incomplete("element %d: missing %q", index, kindFields[0])
	}
	body, ok := stringField(lowered, bodyFields)
	if !ok || strings.TrimSpace(body) == "" {
		return incomplete("element %d: missing %q", index, bodyFields[0])
	}
	options, ok := optionsField(lowered)
	if !ok {
		return incomplete("element %d: missing or invalid %q", index, optionFields[0])
	}
	correctRaw, ok := stringField(lowered, correctFields)
	if !ok || strings.TrimSpace(correctRaw) == "" {
		return incomplete("element %d: missing %q", index, correctFields[0])
	}

	label, ok := resolveCorrectLabel(correctRaw, options)
	if !ok {
		return models.Question{}, &Advisory{
			Code:    AdvisoryAnswerExtractionFailure,
			Index:   index,
			Message: fmt.Sprintf("element %d: cannot map answer %q to an option label", index, correctRaw),
		}
	}

	explanation, _ := stringField(lowered, explanationFields)
	explanation = strings.TrimSpace(explanation)
	if explanation == "" {
		explanation = models.NoExplanation
	}

	return models.Question{
		Kind:         models.ParseKind(kindLabel),
		KindLabel:    strings.TrimSpace(kindLabel),
		Body:         strings.TrimSpace(body),
		Options:      options,
		CorrectLabel: label,
		Explanation:  explanation,
	}, nil
}

func stringField(fields map[string]json.RawMessage, names []string) (string, bool) {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}

func optionsField(fields map[string]json.RawMessage) ([]string, bool) {
	for _, name := range optionFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var options []string
		if err := json.Unmarshal(raw, &options); err != nil {
			return nil, false
		}
		if len(options) < 2 {
			return nil, false
		}
		for i, o := range options {
			o = strings.TrimSpace(o)
			if o == "" {
				return nil, false
			}
			options[i] = o
		}
		return options, true
	}
	return nil, false
}

// resolveCorrectLabel maps the raw answer field onto one of the options'
// labels. An explicit label wins, then a full option text ("Diamante",
// "B) Diamante"), and only then the loose first letter of raw.
func resolveCorrectLabel(raw string, options []string) (string, bool) {
	labels := make(map[string]bool, len(options))
	for _, o := range options {
		if l, ok := OptionLabel(o); ok {
			labels[l] = true
		}
	}
	if l, ok := labelLetter(raw); ok && labels[l] {
		return l, true
	}

	want := StripLabel(raw)
	for _, o := range options {
		if !strings.EqualFold(StripLabel(o), want) {
			continue
		}
		if l, ok := OptionLabel(o); ok {
			return l, true
		}
	}

	if l, ok := ExtractLetter(raw); ok && labels[l] {
		return l, true
	}
	return "", false
}
