package insight

import (
	"encoding/json"
	"reflect"
	"strings"
)

// stripFences removes a surrounding ``` or ```json code fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		if tag := strings.TrimSpace(s[:nl]); tag == "" || !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractObject returns the text from the first '{' to the last '}'.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// jsonKeys lists the json field names of struct type T.
func jsonKeys[T any]() []string {
	var keys []string
	t := reflect.TypeFor[T]()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys = append(keys, name)
	}
	return keys
}

// decodeReply parses raw endpoint text into T. Every field of T must be
// present in the reply.
func decodeReply[T any](raw string) (T, error) {
	var zero T
	obj, ok := extractObject(stripFences(raw))
	if !ok {
		return zero, &MalformedReplyError{Reason: "no JSON object in reply"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return zero, &MalformedReplyError{Reason: "reply is not a JSON object", Err: err}
	}
	var missing []string
	for _, k := range jsonKeys[T]() {
		if v, ok := fields[k]; !ok || string(v) == "null" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return zero, &MalformedReplyError{Reason: "missing keys " + strings.Join(missing, ", ")}
	}

	var out T
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return zero, &MalformedReplyError{Reason: "reply has wrong field types", Err: err}
	}
	return out, nil
}
