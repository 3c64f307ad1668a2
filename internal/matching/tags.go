package matching

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

var tagNameKeys = []string{"name", "label", "title", "text"}

// NormalizeTag turns one upstream tag value into display text. Objects are read
// through name, label, title, text, then the first string field in document order.
// Anything else yields "".
func NormalizeTag(raw json.RawMessage) string {
	if s, ok := stringValue(raw); ok {
		return s
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	for _, key := range tagNameKeys {
		if s, ok := stringValue(obj[key]); ok && s != "" {
			return s
		}
	}

	var first string
	gjson.ParseBytes(raw).ForEach(func(_, value gjson.Result) bool {
		if value.Type == gjson.String {
			first = strings.TrimSpace(value.String())
		}
		return first == ""
	})
	return first
}

func stringValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// NormalizeTags decodes a cached tag list, dropping entries with no text.
func NormalizeTags(cached []byte) []string {
	if len(cached) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(cached, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if t := NormalizeTag(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// FormatTags renders a cached tag list for a prompt.
func FormatTags(cached []byte) string {
	tags := NormalizeTags(cached)
	if len(tags) == 0 {
		return "no tags available"
	}
	return strings.Join(tags, ", ")
}
