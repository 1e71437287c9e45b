package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		label string
		want  Kind
	}{
		{"Múltipla Escolha", KindMultipleChoice},
		{"MULTIPLA ESCOLHA", KindMultipleChoice},
		{"  múltipla-escolha ", KindMultipleChoice},
		{"multiple_choice", KindMultipleChoice},
		{"Verdadeiro ou Falso", KindTrueFalse},
		{"VERDADEIRO OU FALSO", KindTrueFalse},
		{"true/false", KindTrueFalse},
		{"V/F", KindTrueFalse},
		{"Associação de Colunas", KindMatching},
		{"associacao de colunas", KindMatching},
		{"Correspondência", KindMatching},
		{"Ensaio", KindUnknown},
		{"", KindUnknown},
		{"¿?", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKind(tt.label))
		})
	}
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "Múltipla Escolha", KindMultipleChoice.Label())
	assert.Equal(t, kindLabels[KindUnknown], Kind("essay").Label())
	assert.True(t, KindMatching.Valid())
	assert.False(t, KindUnknown.Valid())
}

func TestScoreComplete(t *testing.T) {
	assert.False(t, Score{}.Complete())
	assert.False(t, Score{Answered: 4, Total: 5}.Complete())
	assert.True(t, Score{Answered: 5, Correct: 2, Total: 5}.Complete())
}

func TestDifficulty(t *testing.T) {
	assert.Equal(t, "Difícil (Análise Crítica)", DifficultyHard.Label())
	assert.True(t, DifficultyEasy.Valid())
	assert.False(t, Difficulty("extreme").Valid())
}
