// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fanout runs every variant of a section concurrently and collects
// each outcome independently. A failed or panicking variant becomes a failed
// VariantResult; it never cancels or hides its siblings. GenerateSection
// returns only when every variant has settled.
package fanout

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/pdiddy/docforge/internal/genclient"
	"github.com/pdiddy/docforge/internal/pipeline"
	"github.com/pdiddy/docforge/pkg/types"
)

// Event is one settled variant, delivered to a Sink for display.
type Event struct {
	SectionName  string
	VariantIndex int
	Variant      types.VariantConfig
	Content      string
	Err          error
}

// Sink receives settled variants. It is never given partial output.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f.
func (f SinkFunc) Emit(e Event) { f(e) }

// Recorder observes individual calls, typically for metrics.
type Recorder interface {
	ObserveCall(v types.VariantConfig, err error, d time.Duration)
}

// Options tunes a fan-out. The zero value is usable.
type Options struct {
	// CallTimeout bounds each call. Zero leaves calls bounded only by ctx.
	CallTimeout time.Duration

	Sink     Sink
	Recorder Recorder
	Logger   *zap.Logger
}

// GenerateSection invokes client once per config and returns one result per
// config, index-aligned with configs.
func GenerateSection(ctx context.Context, client genclient.Client, section types.SectionSpec, prompt pipeline.Prompt, configs []types.VariantConfig, opts Options) []types.VariantResult {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]types.VariantResult, len(configs))
	var wg conc.WaitGroup
	for i, vc := range configs {
		wg.Go(func() {
			results[i] = invoke(ctx, client, section, prompt, i, vc, opts)
		})
	}
	wg.Wait()

	ok := Succeeded(results)
	logger.Info("section settled",
		zap.String("section", section.Name),
		zap.Int("variants", len(results)),
		zap.Int("succeeded", ok),
		zap.Int("failed", len(results)-ok),
	)

	if opts.Sink != nil {
		for _, r := range results {
			opts.Sink.Emit(Event{
				SectionName:  r.SectionName,
				VariantIndex: r.VariantIndex,
				Variant:      r.Variant,
				Content:      r.Content,
				Err:          r.Err,
			})
		}
	}
	return results
}

// invoke runs a single variant. Errors are classified and panics recovered
// so the result always settles.
func invoke(ctx context.Context, client genclient.Client, section types.SectionSpec, prompt pipeline.Prompt, idx int, vc types.VariantConfig, opts Options) types.VariantResult {
	res := types.VariantResult{VariantIndex: idx, SectionName: section.Name, Variant: vc}

	if err := vc.Validate(); err != nil {
		res.Err = &genclient.GenerationError{Kind: genclient.KindUnexpected, Detail: err.Error(), Err: err}
		return res
	}

	callCtx := ctx
	if opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.CallTimeout)
		defer cancel()
	}

	req := genclient.Request{
		Provider:    vc.Provider,
		ModelID:     vc.ModelID,
		Temperature: vc.Temperature,
		System:      prompt.System,
		Human:       prompt.Human,
	}

	start := time.Now()
	var content string
	var err error
	if r := panics.Try(func() { content, err = client.Invoke(callCtx, req) }); r != nil {
		err = &genclient.GenerationError{
			Kind:   genclient.KindUnexpected,
			Detail: fmt.Sprintf("variant panicked: %v", r.Value),
			Err:    r.AsError(),
		}
	}
	if err == nil {
		content, err = genclient.Normalize(content)
	}
	if err != nil {
		err = genclient.Classify(err)
	}
	if opts.Recorder != nil {
		opts.Recorder.ObserveCall(vc, err, time.Since(start))
	}

	if err != nil {
		res.Err = err
		return res
	}
	res.Content = content
	return res
}

// Succeeded counts results that carry content.
func Succeeded(results []types.VariantResult) int {
	n := 0
	for _, r := range results {
		if r.OK() {
			n++
		}
	}
	return n
}

// FirstSuccess returns the index of the first successful result, or -1.
func FirstSuccess(results []types.VariantResult) int {
	for i, r := range results {
		if r.OK() {
			return i
		}
	}
	return -1
}
