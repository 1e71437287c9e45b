package normalize

import (
	"strings"
)

// ExtractLetter reduces a free-form answer label ("A", "a) verdadeiro",
// "B - texto", "(C) ...") to a single uppercase ASCII letter.
//
// The same function is applied to the model's answer key and to the option
// the user selected, so whatever it extracts from one side it extracts from
// the other.
func ExtractLetter(s string) (string, bool) {
	if l, ok := labelLetter(s); ok {
		return l, true
	}
	s = strings.TrimSpace(s)
	if s != "" && isASCIILetter(s[0]) {
		return upper(s[0]), true
	}
	return "", false
}

// labelLetter accepts only explicit label forms: "A", "A) ..." and
// "(A) ...".
func labelLetter(s string) (string, bool) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) == 1 && isASCIILetter(s[0]):
		return upper(s[0]), true
	case len(s) >= 2 && isASCIILetter(s[0]) && s[1] == ')':
		return upper(s[0]), true
	// "(A) ..." is common enough in model output to accept.
	case len(s) >= 3 && s[0] == '(' && isASCIILetter(s[1]) && s[2] == ')':
		return upper(s[1]), true
	}
	return "", false
}

// OptionLabel is the label of a rendered option, e.g. "B" for "B) Falso".
func OptionLabel(option string) (string, bool) {
	return ExtractLetter(option)
}

// StripLabel removes a leading "A)", "A." or "(A)" label from an option.
func StripLabel(option string) string {
	s := strings.TrimSpace(option)
	switch {
	case len(s) >= 3 && s[0] == '(' && isASCIILetter(s[1]) && s[2] == ')':
		s = s[3:]
	case len(s) >= 2 && isASCIILetter(s[0]) && (s[1] == ')' || s[1] == '.'):
		s = s[2:]
	default:
		return s
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimPrefix(s, "-"))
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func upper(b byte) string {
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	return string(b)
}
