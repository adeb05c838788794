// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// ExtractJSONValue returns the first balanced JSON object or array in text,
// skipping any conversational preamble or trailing prose. Returns "" if none.
func ExtractJSONValue(text string) string {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	end := matchClosing(text, start)
	if end < 0 {
		return ""
	}
	return text[start : end+1]
}

// JSONSpan is a balanced {...} substring and its byte offsets in the source text
type JSONSpan struct {
	Start int
	End   int // exclusive
	Text  string
}

// FindJSONObjects returns every balanced {...} substring of text, outermost first
// at each position, including objects nested inside other candidates. Candidates
// are not parsed; an unbalanced opening brace (e.g. truncated output) is skipped.
// Each brace rescans to its match, so cost is quadratic in the worst case;
// inputs are single model responses bounded by MaxOutputTokens.
func FindJSONObjects(text string) []JSONSpan {
	var spans []JSONSpan
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end := matchClosing(text, i)
		if end < 0 {
			continue
		}
		spans = append(spans, JSONSpan{Start: i, End: end + 1, Text: text[i : end+1]})
	}
	return spans
}

// matchClosing returns the index of the bracket closing the one at start,
// ignoring brackets inside JSON strings. Returns -1 when unbalanced.
func matchClosing(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
			if depth < 0 {
				return -1
			}
		}
	}
	return -1
}
