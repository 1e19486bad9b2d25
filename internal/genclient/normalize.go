// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// ContentCarrier is a response that exposes its text as content.
type ContentCarrier interface {
	GetContent() string
}

// TextCarrier is a response that exposes its text as text.
type TextCarrier interface {
	GetText() string
}

// Normalize reduces a backend response to its content string. Accepted
// shapes, checked in order: a plain string; JSON bytes holding a string or
// an object with a string "content" or "text" field; a map with a string
// "content" or "text" entry; a ContentCarrier; a TextCarrier. Anything else,
// or blank content, is an InvalidResponse.
func Normalize(raw any) (string, error) {
	var content string
	switch v := raw.(type) {
	case nil:
		return "", invalidResponse("empty response")
	case string:
		content = v
	case json.RawMessage:
		c, err := fromJSON(v)
		if err != nil {
			return "", err
		}
		content = c
	case []byte:
		c, err := fromJSON(v)
		if err != nil {
			return "", err
		}
		content = c
	case map[string]any:
		c, ok := fromMap(v)
		if !ok {
			return "", invalidResponse("response object has no content or text field")
		}
		content = c
	case ContentCarrier:
		content = v.GetContent()
		if content == "" {
			if tc, ok := raw.(TextCarrier); ok {
				content = tc.GetText()
			}
		}
	case TextCarrier:
		content = v.GetText()
	default:
		return "", invalidResponse("unexpected response format %T", raw)
	}

	if strings.TrimSpace(content) == "" {
		return "", invalidResponse("response content is empty")
	}
	return content, nil
}

func fromJSON(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", invalidResponse("response is not valid JSON")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.String {
		return res.Str, nil
	}
	if !res.IsObject() {
		return "", invalidResponse("unexpected JSON response type %s", res.Type)
	}
	for _, field := range []string{"content", "text"} {
		if f := res.Get(field); f.Type == gjson.String && f.Str != "" {
			return f.Str, nil
		}
	}
	return "", invalidResponse("response object has no content or text field")
}

func fromMap(m map[string]any) (string, bool) {
	for _, field := range []string{"content", "text"} {
		if s, ok := m[field].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
