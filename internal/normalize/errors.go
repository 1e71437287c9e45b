package normalize

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse means no parseable JSON payload was found.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrNoQuestionList means the payload parsed but holds no usable question list.
	ErrNoQuestionList = errors.New("no question list in model response")
)

// MalformedResponseError carries the raw reply for manual inspection.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return ErrMalformedResponse.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformedResponse, e.Err)
}

func (e *MalformedResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedResponse}
	}
	return []error{ErrMalformedResponse, e.Err}
}

// AdvisoryCode classifies a non-fatal diagnostic.
type AdvisoryCode string

const (
	AdvisoryTooMany                 AdvisoryCode = "too_many"
	AdvisoryTooFew                  AdvisoryCode = "too_few"
	AdvisoryIncompleteQuestion      AdvisoryCode = "incomplete_question"
	AdvisoryAnswerExtractionFailure AdvisoryCode = "answer_extraction_failure"
)

// Advisory is returned alongside a successful result. Index is the position
// of the element in the model's list, or -1 when it concerns the whole list.
type Advisory struct {
	Code    AdvisoryCode `json:"code"`
	Index   int          `json:"index"`
	Message string       `json:"message"`
}
