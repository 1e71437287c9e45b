// Package segment splits a question body into prose and code segments, and
// matching-layout bodies into two columns.
package segment

import (
	"regexp"
	"strings"
)

// MatchingSeparator divides the two columns of a matching question. The
// prompt template tells the model to emit it verbatim.
const MatchingSeparator = "--- Separador ---"

const fence = "```"

type Kind string

const (
	Prose Kind = "prose"
	Code  Kind = "code"
)

type Segment struct {
	Kind     Kind   `json:"kind"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// Layout is the render-ready shape of a question body. When Matching is set
// Columns holds exactly two sides and Segments is empty.
type Layout struct {
	Matching bool        `json:"matching"`
	Segments []Segment   `json:"segments,omitempty"`
	Columns  [][]Segment `json:"columns,omitempty"`
}

// statementKeywords start lines treated as code when the body has no fences.
var statementKeywords = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"CREATE": true, "ALTER": true, "DROP": true, "TRUNCATE": true,
	"FROM": true, "WHERE": true, "JOIN": true, "INNER": true, "LEFT": true,
	"RIGHT": true, "FULL": true, "GROUP": true, "ORDER": true, "HAVING": true,
	"VALUES": true, "SET": true, "INTO": true, "UNION": true, "LIMIT": true,
	"WITH": true, "GRANT": true, "REVOKE": true, "BEGIN": true, "COMMIT": true,
	"ROLLBACK": true, "ON": true, "AND": true, "OR": true,
}

var langTag = regexp.MustCompile(`^[A-Za-z0-9_+#.-]+$`)

// Split builds the layout for a question body.
func Split(body string) Layout {
	body = normalizeBreaks(body)

	if left, right, ok := strings.Cut(body, MatchingSeparator); ok {
		return Layout{
			Matching: true,
			Columns:  [][]Segment{Segments(left), Segments(right)},
		}
	}
	return Layout{Segments: Segments(body)}
}

// Segments splits text into ordered prose/code segments. Empty segments are
// never emitted.
func Segments(text string) []Segment {
	text = normalizeBreaks(text)
	if strings.Contains(text, fence) {
		return fenced(text)
	}
	return byKeyword(text)
}

func normalizeBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, `\n`, "\n")
}

func fenced(text string) []Segment {
	parts := strings.Split(text, fence)
	markers := len(parts) - 1

	var out []Segment
	for i, part := range parts {
		isCode := i%2 == 1
		// An opening fence with no closing partner: keep its text, marker
		// included, as prose.
		if isCode && markers%2 == 1 && i == len(parts)-1 {
			out = appendProse(out, fence+part)
			continue
		}
		if !isCode {
			out = appendProse(out, part)
			continue
		}
		lang, code := splitLanguage(part)
		code = strings.Trim(code, "\n")
		if strings.TrimSpace(code) == "" {
			continue
		}
		out = append(out, Segment{Kind: Code, Text: code, Language: lang})
	}
	return out
}

// knownLanguages are the tags recognised on a fence with no line break
// ("```sql SELECT 1;```"). Names that double as commands (go, python, java,
// bash) are left out so "```go run .```" stays code.
var knownLanguages = map[string]bool{
	"sql": true, "mysql": true, "postgresql": true, "plsql": true, "tsql": true,
	"javascript": true, "js": true, "typescript": true, "ts": true, "json": true,
	"xml": true, "html": true, "css": true, "yaml": true, "cpp": true,
	"csharp": true, "plaintext": true,
}

// splitLanguage separates an optional language tag on the opening fence
// line from the code that follows. A statement keyword on that line is code,
// not a tag.
func splitLanguage(part string) (string, string) {
	first, rest, ok := strings.Cut(part, "\n")
	if !ok {
		return inlineLanguage(part)
	}
	tag := strings.TrimSpace(first)
	if tag == "" {
		return "", rest
	}
	if langTag.MatchString(tag) && !statementKeywords[strings.ToUpper(tag)] {
		return strings.ToLower(tag), rest
	}
	return "", part
}

func inlineLanguage(part string) (string, string) {
	trimmed := strings.TrimLeft(part, " \t")
	tag, rest, ok := strings.Cut(trimmed, " ")
	if !ok || strings.TrimSpace(rest) == "" {
		return "", part
	}
	if lang := strings.ToLower(tag); knownLanguages[lang] {
		return lang, strings.TrimSpace(rest)
	}
	return "", part
}

func byKeyword(text string) []Segment {
	lines := strings.Split(text, "\n")

	var out []Segment
	var buf []string
	current := Prose
	flush := func() {
		joined := strings.Join(buf, "\n")
		buf = buf[:0]
		if current == Code {
			joined = strings.Trim(joined, "\n")
			if strings.TrimSpace(joined) != "" {
				out = append(out, Segment{Kind: Code, Text: joined})
			}
			return
		}
		out = appendProse(out, joined)
	}

	for _, line := range lines {
		kind := current
		if strings.TrimSpace(line) != "" {
			kind = Prose
			if hasStatementKeyword(line) {
				kind = Code
			}
		}
		if kind != current {
			flush()
			current = kind
		}
		buf = append(buf, line)
	}
	flush()
	return out
}

func hasStatementKeyword(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	word := strings.TrimRight(fields[0], ";,(")
	return statementKeywords[word]
}

func appendProse(out []Segment, text string) []Segment {
	text = strings.TrimSpace(text)
	if text == "" {
		return out
	}
	return append(out, Segment{Kind: Prose, Text: text})
}
