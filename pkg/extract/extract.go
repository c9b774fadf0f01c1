// Package extract pulls JSON objects out of free-form language-model output.
package extract

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// JSONObject returns the first JSON object found in text. A fenced code
// block (optionally tagged "json") wins and its interior is returned as-is;
// otherwise the text is scanned for a balanced brace pair that parses as
// JSON. The bool is false when neither is found. Pure function, no I/O.
func JSONObject(text string) (string, bool) {
	if block, ok := fencedBlock(text); ok {
		return block, true
	}
	return balancedObject(text)
}

func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, fence)
	if start == -1 {
		return "", false
	}
	rest := text[start+len(fence):]
	end := strings.Index(rest, fence)
	if end == -1 {
		return "", false
	}
	block := rest[:end]

	// A short brace-free opening line is a language tag, not content.
	if nl := strings.IndexByte(block, '\n'); nl != -1 {
		tag := strings.TrimSpace(block[:nl])
		if tag != "" && len(tag) <= 8 && !strings.ContainsAny(tag, "{}") {
			block = block[nl+1:]
		}
	}
	return strings.TrimSpace(block), true
}

// balancedObject tries each '{' in turn and returns the first balanced,
// valid JSON object. Scanning per candidate keeps stray braces in the
// surrounding prose from corrupting the slice.
func balancedObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start != -1; {
		if candidate, ok := matchBraces(text[start:]); ok && json.Valid([]byte(candidate)) {
			return candidate, true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next == -1 {
			break
		}
		start += 1 + next
	}
	return "", false
}

// matchBraces returns the prefix of s up to the brace that closes the one s
// starts with, tracking string literals and escapes so braces inside quoted
// values do not count.
func matchBraces(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1], true
				}
			}
		}
	}
	return "", false
}
