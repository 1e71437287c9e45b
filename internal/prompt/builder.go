package prompt

import (
	"fmt"
	"strings"

	"lecturequiz/internal/models"
	"lecturequiz/internal/segment"
)

// MaxSourceChars caps the source text sent to the model, in runes.
const MaxSourceChars = 30000

const (
	defaultFocus = "Geral"
	userPrefix   = "Texto base para o quiz: "
)

// Prompt is the pair of messages sent for one generation.
type Prompt struct {
	System string
	User   string
}

// Build renders the prompts for opts. It does not validate opts.
func Build(opts Options, source string) Prompt {
	return Prompt{
		System: systemPrompt(opts),
		User:   userPrefix + Truncate(source, MaxSourceChars),
	}
}

// Truncate keeps at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func systemPrompt(opts Options) string {
	focus := strings.TrimSpace(opts.Focus)
	if focus == "" {
		focus = defaultFocus
	}

	labels := make([]string, 0, len(opts.Kinds))
	for _, k := range opts.Kinds {
		labels = append(labels, k.Label())
	}

	var b strings.Builder
	b.WriteString("Atua como um professor universitário. Vais receber um texto e deves criar um quiz.\n\n")

	b.WriteString("CONFIGURAÇÕES:\n")
	fmt.Fprintf(&b, "- Quantidade: %d perguntas.\n", opts.Count)
	fmt.Fprintf(&b, "- Dificuldade: %s.\n", opts.Difficulty.Label())
	fmt.Fprintf(&b, "- Foco: %s.\n", focus)
	fmt.Fprintf(&b, "- Tipos permitidos: %s\n\n", strings.Join(labels, ", "))

	b.WriteString("REGRAS DE FORMATAÇÃO:\n")
	rule := 1
	for _, k := range opts.Kinds {
		switch k {
		case models.KindMultipleChoice:
			fmt.Fprintf(&b, "%d. %s: %d opções, rotuladas \"A) ...\", \"B) ...\" e assim por diante.\n", rule, k.Label(), opts.Alternatives)
		case models.KindTrueFalse:
			fmt.Fprintf(&b, "%d. %s: Opções [\"A) Verdadeiro\", \"B) Falso\"].\n", rule, k.Label())
		case models.KindMatching:
			fmt.Fprintf(&b, "%d. %s: a pergunta lista a coluna 1, depois uma linha só com \"%s\", depois a coluna 2. As opções são sequências de pares (ex.: \"A) 1-B, 2-A, 3-C\").\n", rule, k.Label(), segment.MatchingSeparator)
		default:
			continue
		}
		rule++
	}
	fmt.Fprintf(&b, "%d. Código-fonte dentro de uma pergunta vai num bloco ```linguagem ... ```.\n", rule)
	fmt.Fprintf(&b, "%d. \"resposta_correta\" é apenas a letra da opção correta.\n\n", rule+1)

	b.WriteString("OUTPUT JSON OBRIGATÓRIO:\n")
	b.WriteString("Retorna APENAS um JSON com esta estrutura exata:\n")
	b.WriteString(`{
    "quiz": [
        {
            "tipo": "...",
            "pergunta": "...",
            "opcoes": ["A) ...", "B) ..."],
            "resposta_correta": "A",
            "explicacao": "..."
        }
    ]
}
`)
	return b.String()
}
