package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const fence = "```"

// maxScanAttempts bounds the fallback scan so a long reply full of brackets
// stays cheap to re-run on every redraw.
const maxScanAttempts = 64

var errNoBoundary = errors.New("no JSON array or object boundary found")

// StripFences removes markdown code-fence markers, with their optional
// language tag, wherever they appear outside JSON string literals. Fences
// inside string values are content and are kept.
func StripFences(text string) string {
	if !strings.Contains(text, fence) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	inString, escaped := false, false
	for i := 0; i < len(text); {
		c := text[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}
		if strings.HasPrefix(text[i:], fence) {
			i += len(fence)
			for i < len(text) && isTagByte(text[i]) {
				i++
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func isTagByte(b byte) bool {
	return isASCIILetter(b) || (b >= '0' && b <= '9') || b == '_' || b == '-' || b == '+'
}

// locatePayload finds the JSON value to parse. The first opening bracket and
// the last matching closing bracket are tried first; when that span does not
// parse, each opening bracket is tried in turn with a streaming decoder that
// stops at the end of the first complete value.
func locatePayload(text string) (json.RawMessage, error) {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return nil, errNoBoundary
	}
	closing := byte(']')
	if text[start] == '{' {
		closing = '}'
	}

	var firstErr error
	if end := strings.LastIndexByte(text, closing); end > start {
		raw, err := parseCandidate(text[start : end+1])
		if err == nil {
			return raw, nil
		}
		firstErr = err
	} else {
		firstErr = fmt.Errorf("no closing %q after offset %d", closing, start)
	}

	// A list of objects wins over any other list ("[1]" in a footnote),
	// which wins over a value with no list at all.
	var listFallback, fallback json.RawMessage
	attempts := 0
	for i := start; i < len(text) && attempts < maxScanAttempts; i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		attempts++
		raw, err := decodeFirstValue(text[i:])
		if err != nil {
			continue
		}
		if list, ok := firstList(raw); ok {
			if hasObjectElement(list) {
				return raw, nil
			}
			if listFallback == nil {
				listFallback = raw
			}
			continue
		}
		if fallback == nil {
			fallback = raw
		}
	}
	switch {
	case listFallback != nil:
		return listFallback, nil
	case fallback != nil:
		return fallback, nil
	}
	return nil, firstErr
}

// hasObjectElement reports whether the JSON array list holds at least one
// object.
func hasObjectElement(list json.RawMessage) bool {
	dec := json.NewDecoder(bytes.NewReader(list))
	if _, err := dec.Token(); err != nil {
		return false
	}
	for dec.More() {
		var el json.RawMessage
		if err := dec.Decode(&el); err != nil {
			return false
		}
		if v := bytes.TrimSpace(el); len(v) > 0 && v[0] == '{' {
			return true
		}
	}
	return false
}

func parseCandidate(candidate string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := json.Unmarshal([]byte(candidate), &raw)
	if err == nil {
		return raw, nil
	}
	repaired := escapeControlChars(candidate)
	if repaired == candidate {
		return nil, err
	}
	if rerr := json.Unmarshal([]byte(repaired), &raw); rerr != nil {
		return nil, err
	}
	return raw, nil
}

func decodeFirstValue(text string) (json.RawMessage, error) {
	decode := func(s string) (json.RawMessage, error) {
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(s)).Decode(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
	raw, err := decode(text)
	if err == nil {
		return raw, nil
	}
	if repaired := escapeControlChars(text); repaired != text {
		if raw, rerr := decode(repaired); rerr == nil {
			return raw, nil
		}
	}
	return nil, err
}

// escapeControlChars escapes raw line breaks and other control characters
// that models sometimes leave inside JSON string literals.
func escapeControlChars(s string) string {
	var b strings.Builder
	changed := false
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = false
		case c < 0x20:
			changed = true
			switch c {
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				fmt.Fprintf(&b, `\u%04x`, c)
			}
			continue
		}
		b.WriteByte(c)
	}
	if !changed {
		return s
	}
	return b.String()
}

// firstList returns raw itself when it is an array, or the first
// array-valued field of an object in document order.
func firstList(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}
	switch trimmed[0] {
	case '[':
		return trimmed, true
	case '{':
	default:
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		if v := bytes.TrimSpace(value); len(v) > 0 && v[0] == '[' {
			return v, true
		}
	}
	return nil, false
}
