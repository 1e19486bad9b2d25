// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrator runs a document through the section pipeline. An
// Orchestrator holds the static parts (sections, model client, variant
// slots); each submitted DocumentRequest gets its own Session, which owns
// the winner state and runs sections one at a time in pipeline order.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/docforge/internal/corpus"
	"github.com/pdiddy/docforge/internal/fanout"
	"github.com/pdiddy/docforge/internal/genclient"
	"github.com/pdiddy/docforge/internal/pipeline"
	"github.com/pdiddy/docforge/internal/session"
	"github.com/pdiddy/docforge/pkg/types"
)

// ErrSectionBusy means a fan-out for the section is already in flight.
var ErrSectionBusy = errors.New("section generation already in progress")

// SectionFailedError reports a section where every variant failed. Results
// carries each variant's error.
type SectionFailedError struct {
	Section string
	Results []types.VariantResult
}

func (e *SectionFailedError) Error() string {
	parts := make([]string, len(e.Results))
	for i, r := range e.Results {
		parts[i] = fmt.Sprintf("[%d] %s: %v", r.VariantIndex, r.Variant, r.Err)
	}
	return fmt.Sprintf("section %q: all %d variants failed: %s", e.Section, len(e.Results), strings.Join(parts, "; "))
}

// Metrics receives call and section observations.
type Metrics interface {
	fanout.Recorder
	ObserveSection(succeeded int)
}

// Options configures an Orchestrator.
type Options struct {
	Pipeline   *pipeline.Pipeline
	Client     genclient.Client
	Generation types.GenerationConfig
	Context    types.ContextConfig

	// Sink receives every settled variant.
	Sink    fanout.Sink
	Metrics Metrics
	Logger  *zap.Logger
}

// Orchestrator starts sessions that share one configuration.
type Orchestrator struct {
	opts   Options
	logger *zap.Logger
}

// providerSet is implemented by clients that route by provider name.
type providerSet interface {
	Has(types.Provider) bool
}

// New validates opts: every section must have at least one valid variant
// slot, and named providers must be registered with the client.
func New(opts Options) (*Orchestrator, error) {
	if opts.Pipeline == nil {
		return nil, fmt.Errorf("orchestrator needs a pipeline")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("orchestrator needs a generation client")
	}
	providers, _ := opts.Client.(providerSet)
	for _, name := range opts.Pipeline.Names() {
		variants := opts.Generation.VariantsFor(name)
		if len(variants) == 0 {
			return nil, fmt.Errorf("section %q has no variants configured", name)
		}
		for i, v := range variants {
			if err := v.Validate(); err != nil {
				return nil, fmt.Errorf("section %q variant %d: %w", name, i, err)
			}
			if v.Provider != "" && providers != nil && !providers.Has(v.Provider) {
				return nil, fmt.Errorf("section %q variant %d: provider %q is not configured", name, i, v.Provider)
			}
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{opts: opts, logger: logger}, nil
}

// Sections returns the pipeline section names in order.
func (o *Orchestrator) Sections() []string {
	return o.opts.Pipeline.Names()
}

// Start validates req and opens a session for it. Nothing is generated.
func (o *Orchestrator) Start(req types.DocumentRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	state, err := session.New(req.Title, o.opts.Pipeline.Names(), o.opts.Generation.AutoSelect)
	if err != nil {
		return nil, err
	}
	index, err := corpus.New(req.DatabaseText, o.opts.Context, o.logger)
	if err != nil {
		return nil, fmt.Errorf("indexing database text: %w", err)
	}
	return &Session{
		o:        o,
		req:      req,
		state:    state,
		index:    index,
		inflight: make(map[int]bool),
	}, nil
}

// Session is one document being generated. Its methods are safe for
// concurrent use; the state lock is never held across model calls.
type Session struct {
	o     *Orchestrator
	req   types.DocumentRequest
	index *corpus.Index

	mu       sync.Mutex
	state    *session.State
	inflight map[int]bool
}

// Request returns the document request the session was started with.
func (s *Session) Request() types.DocumentRequest { return s.req }

// Close releases the session's database index.
func (s *Session) Close() error { return s.index.Close() }

// GenerateSection fans out section i and records the results. It fails
// with *pipeline.UpstreamUnresolvedError when section i-1 has no accepted
// content or is still generating, with ErrSectionBusy when section i or
// section i+1 is already generating, and with *SectionFailedError when
// every variant fails. Calling it again regenerates the section.
//
// Once started, the fan-out runs to completion even if ctx is cancelled;
// each call is bounded by the configured call timeout.
func (s *Session) GenerateSection(ctx context.Context, i int) ([]types.VariantResult, error) {
	sec, prompt, err := s.begin(i)
	if err != nil {
		return nil, err
	}
	defer s.finish(i)

	variants := s.o.opts.Generation.VariantsFor(sec.Name)
	s.o.logger.Info("generating section",
		zap.Int("index", i),
		zap.String("section", sec.Name),
		zap.Int("variants", len(variants)),
	)

	fopts := fanout.Options{
		CallTimeout: s.o.opts.Generation.CallTimeout,
		Sink:        s.o.opts.Sink,
		Logger:      s.o.logger,
	}
	if s.o.opts.Metrics != nil {
		fopts.Recorder = s.o.opts.Metrics
	}
	results := fanout.GenerateSection(context.WithoutCancel(ctx), s.o.opts.Client, sec, prompt, variants, fopts)

	s.mu.Lock()
	err = s.state.RecordResults(sec.Name, results)
	s.mu.Unlock()
	if err != nil {
		return results, err
	}

	ok := fanout.Succeeded(results)
	if s.o.opts.Metrics != nil {
		s.o.opts.Metrics.ObserveSection(ok)
	}
	if ok == 0 {
		s.o.logger.Warn("section failed", zap.String("section", sec.Name), zap.Int("variants", len(results)))
		return results, &SectionFailedError{Section: sec.Name, Results: results}
	}
	return results, nil
}

// begin checks the barrier, builds the prompt and marks section i in flight.
func (s *Session) begin(i int) (types.SectionSpec, pipeline.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.o.opts.Pipeline
	sec, err := p.Section(i)
	if err != nil {
		return sec, pipeline.Prompt{}, err
	}
	if s.inflight[i] {
		return sec, pipeline.Prompt{}, fmt.Errorf("%w: %q", ErrSectionBusy, sec.Name)
	}
	if i > 0 && s.inflight[i-1] {
		upstream, _ := p.Section(i - 1)
		return sec, pipeline.Prompt{}, &pipeline.UpstreamUnresolvedError{Section: sec.Name, Upstream: upstream.Name, Err: ErrSectionBusy}
	}
	if s.inflight[i+1] {
		downstream, _ := p.Section(i + 1)
		return sec, pipeline.Prompt{}, fmt.Errorf("%w: %q is being built from %q", ErrSectionBusy, downstream.Name, sec.Name)
	}
	prompt, err := p.PromptFor(i, s.req, s.state, s.index)
	if err != nil {
		return sec, pipeline.Prompt{}, err
	}
	s.inflight[i] = true
	return sec, prompt, nil
}

func (s *Session) finish(i int) {
	s.mu.Lock()
	delete(s.inflight, i)
	s.mu.Unlock()
}

// Run generates every section in pipeline order. Each section starts only
// after its predecessor has settled and resolved. Run stops at the first
// section that fails or cannot be built, and between sections when ctx is
// done.
func (s *Session) Run(ctx context.Context) error {
	n := s.o.opts.Pipeline.Len()
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.GenerateSection(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) name(i int) (string, error) {
	sec, err := s.o.opts.Pipeline.Section(i)
	if err != nil {
		return "", err
	}
	return sec.Name, nil
}

// Select accepts variant v of section i.
func (s *Session) Select(i, v int) (types.Winner, error) {
	name, err := s.name(i)
	if err != nil {
		return types.Winner{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Select(name, v)
}

// Edit replaces the accepted content of section i.
func (s *Session) Edit(i int, content string) (types.Winner, error) {
	name, err := s.name(i)
	if err != nil {
		return types.Winner{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Edit(name, content)
}

// Resolve returns the accepted content of section i.
func (s *Session) Resolve(i int) (string, error) {
	name, err := s.name(i)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Resolve(name)
}

// GoTo moves to section i.
func (s *Session) GoTo(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GoTo(i)
}

// Next moves forward one section and returns the new index.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Next()
}

// Prev moves back one section and returns the new index.
func (s *Session) Prev() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Prev()
}

// Current returns the index of the section being viewed.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Current()
}

// Export renders the accepted content as plain text.
func (s *Session) Export() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Export()
}

// WriteExport writes the export into dir and returns the file path.
func (s *Session) WriteExport(dir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.WriteExport(dir)
}

// Snapshot returns a detached copy of the session state.
func (s *Session) Snapshot() session.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}
