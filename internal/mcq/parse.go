package mcq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Model output is best-effort JSON: sometimes clean, sometimes fenced in
// markdown, sometimes surrounded by commentary. ParseCandidates recovers
// the question list in stages:
//
//  1. Strip code-fence markers if present.
//  2. Attempt a direct parse.
//  3. On failure, extract the first balanced object or array substring
//     and parse that.
//
// Accepted shapes are a bare array of question objects, or a wrapper
// object keyed "questions" or "preguntas". Anything else is an error.

var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// ErrNoQuestions indicates the response parsed as JSON but exposed no
// question list in any accepted shape.
var ErrNoQuestions = errors.New("response contains no question list")

// ParseCandidates extracts raw question objects from model output.
func ParseCandidates(text string) ([]json.RawMessage, error) {
	s := stripFences(text)
	if s == "" {
		return nil, errors.New("empty response")
	}

	items, err := unwrap([]byte(s))
	if err == nil || errors.Is(err, ErrNoQuestions) {
		return items, err
	}

	// Direct parse failed: the model wrapped the JSON in prose.
	sub := balancedSubstring(s)
	if sub == "" {
		return nil, fmt.Errorf("no JSON value found in response: %w", err)
	}
	return unwrap([]byte(sub))
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// unwrap normalizes both accepted shapes to a flat list.
func unwrap(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty JSON value")
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parse question array: %w", err)
		}
		return items, nil
	}

	var wrapper struct {
		Questions []json.RawMessage `json:"questions"`
		Preguntas []json.RawMessage `json:"preguntas"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("parse question wrapper: %w", err)
	}
	if wrapper.Questions != nil {
		return wrapper.Questions, nil
	}
	if wrapper.Preguntas != nil {
		return wrapper.Preguntas, nil
	}
	return nil, ErrNoQuestions
}

// balancedSubstring returns the first balanced {...} or [...] in s,
// respecting JSON string literals and escapes. Empty when none closes.
func balancedSubstring(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
