// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/docforge/internal/httputil"
)

// GatewayClient posts to a self-hosted JSON generation endpoint. Gateways
// answer in different shapes (a bare JSON string, {"content": ...} or
// {"text": ...}); Normalize accepts all of them.
type GatewayClient struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

type gatewayRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
}

// NewGatewayClient creates a gateway client for endpoint.
func NewGatewayClient(endpoint, apiKey string) (*GatewayClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("http provider requires providers.http.base_url")
	}
	return &GatewayClient{Endpoint: endpoint, APIKey: apiKey}, nil
}

// Invoke posts the request and normalizes the raw JSON body.
func (g *GatewayClient) Invoke(ctx context.Context, req Request) (string, error) {
	var headers map[string]string
	if g.APIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + g.APIKey}
	}
	data, err := httputil.PostJSON(ctx, g.Client, g.Endpoint, headers, gatewayRequest{
		Model:       req.ModelID,
		Temperature: req.Temperature,
		System:      req.System,
		Prompt:      req.Human,
	})
	if err != nil {
		return "", Classify(err)
	}
	return Normalize(json.RawMessage(data))
}
