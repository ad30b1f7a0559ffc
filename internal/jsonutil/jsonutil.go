package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Unmarshal decodes model output into v with best effort:
// 1) direct unmarshal
// 2) strip markdown code fences and retry
// 3) slice out the outermost JSON object/array and retry
// Models occasionally wrap JSON in fences or prose despite the contract.
func Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err == nil {
		return nil
	}
	trimmed := StripFences(string(data))
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}
	if carved, ok := carve(trimmed); ok {
		return json.Unmarshal([]byte(carved), v)
	}
	return json.Unmarshal([]byte(trimmed), v)
}

// UnmarshalRaw accepts json.RawMessage directly.
func UnmarshalRaw(raw json.RawMessage, v any) error {
	return Unmarshal([]byte(raw), v)
}

// StripFences removes a leading ```json / ``` fence pair if present.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		t = t[i+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

// carve returns the substring between the first '{' or '[' and its matching
// closing bracket at the end of the text.
func carve(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}
	var closer byte = '}'
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// MarshalNoEscape encodes v into JSON without escaping <, >, and &.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
