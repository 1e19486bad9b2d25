// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contentResp struct{ content string }

func (c contentResp) GetContent() string { return c.content }

type textResp struct{ text string }

func (t textResp) GetText() string { return t.text }

type bothResp struct{ content, text string }

func (b bothResp) GetContent() string { return b.content }
func (b bothResp) GetText() string    { return b.text }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    string
		wantErr bool
	}{
		{"plain string", "Intro text.", "Intro text.", false},
		{"json string", json.RawMessage(`"from gateway"`), "from gateway", false},
		{"json content object", []byte(`{"content":"c body","text":"ignored"}`), "c body", false},
		{"json text object", []byte(`{"text":"t body"}`), "t body", false},
		{"json empty content falls back to text", []byte(`{"content":"","text":"t body"}`), "t body", false},
		{"json non-string content", []byte(`{"content":[{"type":"text"}]}`), "", true},
		{"json array", []byte(`["a","b"]`), "", true},
		{"invalid json", []byte(`{"content":`), "", true},
		{"map content", map[string]any{"content": "m body"}, "m body", false},
		{"map text", map[string]any{"text": "m text"}, "m text", false},
		{"map without fields", map[string]any{"data": "x"}, "", true},
		{"content carrier", contentResp{"carried"}, "carried", false},
		{"text carrier", textResp{"texted"}, "texted", false},
		{"carrier prefers content", bothResp{content: "c", text: "t"}, "c", false},
		{"carrier falls back to text", bothResp{text: "t"}, "t", false},
		{"blank string", "   \n", "", true},
		{"nil", nil, "", true},
		{"unsupported type", 42, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindInvalidResponse, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
