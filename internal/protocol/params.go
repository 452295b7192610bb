package protocol

import (
	"encoding/json"
	"regexp"
	"strings"
)

var numberPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// DecodeParams re-applies Extract at one level to the given fragment
// content and builds a map from child tag name to decoded value.
// Duplicate child names overwrite earlier ones.
func DecodeParams(content string) map[string]any {
	params := make(map[string]any)
	for _, frag := range Extract(content) {
		params[frag.TagName] = decodeValue(frag.Content)
	}
	return params
}

// decodeValue turns a raw parameter string into a typed value. Values that
// look like JSON literals (true/false/null, signed numbers, and
// brace/bracket-delimited structures) are parsed strictly; everything
// else, including failed parses, stays the raw trimmed string.
func decodeValue(raw string) any {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	if looksLikeJSON(v) {
		var out any
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return out
		}
	}
	return v
}

func looksLikeJSON(v string) bool {
	switch v {
	case "true", "false", "null":
		return true
	}
	if numberPattern.MatchString(v) {
		return true
	}
	if len(v) >= 2 {
		if v[0] == '{' && v[len(v)-1] == '}' {
			return true
		}
		if v[0] == '[' && v[len(v)-1] == ']' {
			return true
		}
	}
	return false
}
