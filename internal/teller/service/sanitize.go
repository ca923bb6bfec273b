package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// disallowedChars are stripped from every argument key and string value
// before a tool sees them. The set targets markup and quoting characters
// that could smuggle injection payloads through model-generated arguments.
var disallowedChars = regexp.MustCompile(`[<>"';\\]`)

// toolNamePattern is the only shape a tool name may take.
var toolNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Sanitizer cleans tool argument maps: disallowed characters are removed and
// strings truncated to the configured maximum, recursively through nested
// maps and slices.
type Sanitizer struct {
	MaxStringLength int
}

func (s *Sanitizer) Clean(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[s.cleanString(k)] = s.cleanValue(v)
	}
	return out
}

func (s *Sanitizer) cleanValue(v any) any {
	switch val := v.(type) {
	case string:
		return s.cleanString(val)
	case map[string]any:
		return s.Clean(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = s.cleanValue(item)
		}
		return out
	default:
		return v
	}
}

func (s *Sanitizer) cleanString(str string) string {
	str = disallowedChars.ReplaceAllString(str, "")

	// Truncation counts characters, not bytes, so a multi-byte rune is
	// never split into invalid UTF-8.
	if s.MaxStringLength > 0 && utf8.RuneCountInString(str) > s.MaxStringLength {
		runes := []rune(str)
		str = string(runes[:s.MaxStringLength])
	}
	return strings.TrimSpace(str)
}

// ValidToolName reports whether a tool name contains only allowed characters.
func ValidToolName(name string) bool {
	return toolNamePattern.MatchString(name)
}
