// Package prompt turns the user's quiz options and the extracted source text
// into the system and user prompts sent to the model.
package prompt

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"lecturequiz/internal/models"
)

const (
	MinCount        = 3
	MaxCount        = 20
	MinAlternatives = 3
	MaxAlternatives = 6
)

var ErrInvalidOptions = errors.New("invalid quiz options")

// Options are the user-chosen generation settings.
type Options struct {
	Count        int               `json:"count" validate:"min=3,max=20"`
	Difficulty   models.Difficulty `json:"difficulty" validate:"required,difficulty"`
	Kinds        []models.Kind     `json:"kinds" validate:"min=1,unique,dive,quizkind"`
	Alternatives int               `json:"alternatives" validate:"min=3,max=6"`
	Focus        string            `json:"focus" validate:"max=500"`
	Model        string            `json:"model"`
}

// DefaultOptions mirrors the preselected values of the settings form.
func DefaultOptions() Options {
	return Options{
		Count:        5,
		Difficulty:   models.DifficultyMedium,
		Kinds:        []models.Kind{models.KindMultipleChoice, models.KindTrueFalse},
		Alternatives: 4,
	}
}

// Validator checks Options. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator panics if a custom tag cannot be registered.
func NewValidator() *Validator {
	v := validator.New()
	if err := registerValidations(v, map[string]validator.Func{
		"difficulty": validateDifficulty,
		"quizkind":   validateKind,
	}); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

func registerValidations(v *validator.Validate, fns map[string]validator.Func) error {
	for tag, fn := range fns {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return nil
}

// Validate returns an error wrapping ErrInvalidOptions that names every
// offending field.
func (v *Validator) Validate(opts Options) error {
	err := v.validate.Struct(opts)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "unique":
		return fmt.Sprintf("%s must not repeat values", fe.Field())
	default:
		return fmt.Sprintf("%s has unsupported value %q", fe.Field(), fmt.Sprint(fe.Value()))
	}
}

func validateDifficulty(fl validator.FieldLevel) bool {
	return models.Difficulty(fl.Field().String()).Valid()
}

func validateKind(fl validator.FieldLevel) bool {
	return models.Kind(fl.Field().String()).Valid()
}
