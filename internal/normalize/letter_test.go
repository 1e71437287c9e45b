package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLetter(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"bare letter", "A", "A", true},
		{"lowercase with paren", "a) verdadeiro", "A", true},
		{"uppercase with paren", "B) Texto", "B", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"padded lowercase", "  c  ", "C", true},
		{"dash separated", "D - outra coisa", "D", true},
		{"parenthesised", "(b) Falso", "B", true},
		{"leading digit", "1) um", "", false},
		{"non ascii letter", "É verdade", "", false},
		{"punctuation", "-) nada", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractLetter(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractLetterIdempotent(t *testing.T) {
	inputs := []string{"A", "a) verdadeiro", "B) Texto", "  c  ", "D - x", "(e) y", "zeta", "Falso"}
	for _, in := range inputs {
		first, ok := ExtractLetter(in)
		if !assert.True(t, ok, in) {
			continue
		}
		second, ok := ExtractLetter(first)
		assert.True(t, ok, in)
		assert.Equal(t, first, second, in)
	}
}

func TestStripLabel(t *testing.T) {
	assert.Equal(t, "Verdadeiro", StripLabel("A) Verdadeiro"))
	assert.Equal(t, "Falso", StripLabel("(B) Falso"))
	assert.Equal(t, "texto", StripLabel("c. texto"))
	assert.Equal(t, "Sem rótulo", StripLabel("  Sem rótulo "))
}
