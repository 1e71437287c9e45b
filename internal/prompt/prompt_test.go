package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecturequiz/internal/models"
	"lecturequiz/internal/segment"
)

func TestValidate(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(DefaultOptions()))

	tests := []struct {
		name   string
		mutate func(*Options)
		field  string
	}{
		{"count too low", func(o *Options) { o.Count = 2 }, "count"},
		{"count too high", func(o *Options) { o.Count = 21 }, "count"},
		{"alternatives too low", func(o *Options) { o.Alternatives = 2 }, "alternatives"},
		{"alternatives too high", func(o *Options) { o.Alternatives = 7 }, "alternatives"},
		{"no kinds", func(o *Options) { o.Kinds = nil }, "kinds"},
		{"unknown kind", func(o *Options) { o.Kinds = []models.Kind{models.KindUnknown} }, "kinds"},
		{"repeated kind", func(o *Options) {
			o.Kinds = []models.Kind{models.KindTrueFalse, models.KindTrueFalse}
		}, "kinds"},
		{"bad difficulty", func(o *Options) { o.Difficulty = "insane" }, "difficulty"},
		{"missing difficulty", func(o *Options) { o.Difficulty = "" }, "difficulty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := v.Validate(opts)
			require.ErrorIs(t, err, ErrInvalidOptions)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateBounds(t *testing.T) {
	v := NewValidator()
	for _, n := range []int{MinCount, MaxCount} {
		opts := DefaultOptions()
		opts.Count = n
		assert.NoError(t, v.Validate(opts))
	}
	for _, n := range []int{MinAlternatives, MaxAlternatives} {
		opts := DefaultOptions()
		opts.Alternatives = n
		assert.NoError(t, v.Validate(opts))
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	opts := Options{
		Count:        7,
		Difficulty:   models.DifficultyHard,
		Kinds:        []models.Kind{models.KindMultipleChoice, models.KindMatching},
		Alternatives: 5,
		Focus:        "  Normalização de bases de dados ",
	}
	p := Build(opts, "texto")

	assert.Contains(t, p.System, "Quantidade: 7 perguntas.")
	assert.Contains(t, p.System, "Dificuldade: Difícil (Análise Crítica).")
	assert.Contains(t, p.System, "Foco: Normalização de bases de dados.")
	assert.Contains(t, p.System, "Tipos permitidos: Múltipla Escolha, Associação de Colunas")
	assert.Contains(t, p.System, "5 opções")
	assert.Contains(t, p.System, segment.MatchingSeparator)
	assert.NotContains(t, p.System, `"B) Falso"`)
	assert.Contains(t, p.System, `"resposta_correta": "A"`)
}

func TestBuildDefaultFocus(t *testing.T) {
	opts := DefaultOptions()
	p := Build(opts, "texto")
	assert.Contains(t, p.System, "Foco: Geral.")
	assert.Contains(t, p.System, `Opções ["A) Verdadeiro", "B) Falso"]`)
	assert.Equal(t, "Texto base para o quiz: texto", p.User)
}

func TestBuildCapsSource(t *testing.T) {
	source := strings.Repeat("ç", MaxSourceChars+100)
	p := Build(DefaultOptions(), source)
	body := strings.TrimPrefix(p.User, "Texto base para o quiz: ")
	assert.Equal(t, MaxSourceChars, utf8.RuneCountInString(body))
	assert.True(t, utf8.ValidString(body))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "ãé", Truncate("ãéí", 2))
}

func TestRegisterValidations(t *testing.T) {
	assert.NotPanics(t, func() { NewValidator() })

	err := registerValidations(validator.New(), map[string]validator.Func{"": validateKind})
	assert.Error(t, err)

	require.NoError(t, registerValidations(validator.New(), map[string]validator.Func{"quizkind": validateKind}))
}
