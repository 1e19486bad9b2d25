// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pdiddy/docforge/internal/httputil"
)

// anthropicAPIURL is the Messages API endpoint. Package-level var for test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicClient calls the Claude Messages API.
type AnthropicClient struct {
	APIKey    string
	URL       string
	MaxTokens int
	Client    *http.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
}

// anthropicBlock is a content block in the response.
type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (b anthropicBlock) GetText() string { return b.Text }

// Invoke posts one message. Claude caps temperature at 1, so higher values
// are clamped.
func (a *AnthropicClient) Invoke(ctx context.Context, req Request) (string, error) {
	maxTokens := a.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	temp := req.Temperature
	if temp > 1 {
		temp = 1
	}
	url := a.URL
	if url == "" {
		url = anthropicAPIURL
	}

	body := anthropicRequest{
		Model:       req.ModelID,
		MaxTokens:   maxTokens,
		Temperature: temp,
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Human}},
	}
	headers := map[string]string{
		"x-api-key":         a.APIKey,
		"anthropic-version": "2023-06-01",
	}

	data, err := httputil.PostJSON(ctx, a.Client, url, headers, body)
	if err != nil {
		return "", Classify(err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", invalidResponse("decoding Claude response: %v", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return Normalize(block)
		}
	}
	return "", invalidResponse("no text content in Claude response")
}
