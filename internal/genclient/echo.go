// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genclient

import (
	"context"
	"fmt"
	"strings"
)

// EchoClient answers without calling a model. It is used for dry runs of a
// pipeline and echoes the start of the human prompt.
type EchoClient struct{}

// Invoke returns a short placeholder derived from the prompt.
func (EchoClient) Invoke(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Classify(err)
	}
	prompt := strings.Join(strings.Fields(req.Human), " ")
	if r := []rune(prompt); len(r) > 160 {
		prompt = string(r[:160]) + "..."
	}
	return fmt.Sprintf("[%s@%.1f] %s", req.ModelID, req.Temperature, prompt), nil
}
