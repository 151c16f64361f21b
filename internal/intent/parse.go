package intent

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

type rawResult struct {
	Intent   *string `json:"intent"`
	Task     *string `json:"task"`
	Datetime *string `json:"datetime"`
	Timezone *string `json:"timezone"`
}

// ErrMalformedReply marks model output that is not a JSON object carrying an intent.
var ErrMalformedReply = errors.New("reply is not a JSON object with an intent")

// Parse turns model output into a Result. It never fails: anything that is not a
// JSON object with a recognizable intent comes back as KindUnknown.
func Parse(content string) Result {
	result, _ := parseReply(content)
	return result
}

// parseReply is Parse that also reports whether the reply was malformed.
// A well-formed object whose intent is not create_reminder is a valid answer.
func parseReply(content string) (Result, error) {
	candidate := extractJSON(stripFences(content))
	if candidate == "" {
		return Unknown(), ErrMalformedReply
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr != nil {
			return Unknown(), ErrMalformedReply
		}
		raw = rawResult{}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return Unknown(), ErrMalformedReply
		}
	}

	if raw.Intent == nil || strings.TrimSpace(*raw.Intent) == "" {
		return Unknown(), ErrMalformedReply
	}
	if Kind(strings.ToLower(strings.TrimSpace(*raw.Intent))) != KindCreateReminder {
		return Unknown(), nil
	}

	return Result{
		Intent:   KindCreateReminder,
		Task:     deref(raw.Task),
		Datetime: deref(raw.Datetime),
		Timezone: deref(raw.Timezone),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	value := strings.TrimSpace(*s)
	if strings.EqualFold(value, "null") {
		return ""
	}
	return value
}

// stripFences removes markdown code fences such as ```json ... ```.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "```") {
		return text
	}

	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}

// extractJSON returns the first balanced {...} block, or the text from the
// first brace onward when the object is truncated.
func extractJSON(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}
