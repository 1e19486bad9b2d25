// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline defines the ordered sections of a document and builds
// each section's prompt. Section i is built from the accepted content of
// section i-1, so the pipeline refuses to build a section whose predecessor
// has nothing to offer.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/pdiddy/docforge/pkg/types"
)

// Resolver supplies the accepted content of a section: its winner, or the
// sole generated content in single-path mode.
type Resolver interface {
	Resolve(section string) (string, error)
}

// ExcerptSource narrows the database text placed in a section's prompt.
type ExcerptSource interface {
	Excerpt(query string) (string, error)
}

// UpstreamUnresolvedError reports that a section's predecessor has no
// content. It matches types.ErrUpstreamUnresolved.
type UpstreamUnresolvedError struct {
	Section  string
	Upstream string
	Err      error
}

func (e *UpstreamUnresolvedError) Error() string {
	msg := fmt.Sprintf("section %q: upstream section %q has no resolved content", e.Section, e.Upstream)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamUnresolvedError) Unwrap() error { return e.Err }

func (e *UpstreamUnresolvedError) Is(target error) bool {
	return target == types.ErrUpstreamUnresolved
}

// Pipeline is an ordered, validated list of sections.
type Pipeline struct {
	sections []types.SectionSpec
}

// New validates sections and returns a pipeline. Orders are reassigned to
// list position; names must be unique and templates must parse.
func New(sections []types.SectionSpec) (*Pipeline, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("pipeline has no sections")
	}
	seen := make(map[string]bool, len(sections))
	out := make([]types.SectionSpec, len(sections))
	for i, s := range sections {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, fmt.Errorf("section %d: name is required", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("section %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if strings.TrimSpace(s.Human) == "" {
			return nil, fmt.Errorf("section %q: human prompt template is required", s.Name)
		}
		if _, err := parseTemplate(s.Name+"/human", s.Human); err != nil {
			return nil, err
		}
		if s.System != "" {
			if _, err := parseTemplate(s.Name+"/system", s.System); err != nil {
				return nil, err
			}
		}
		s.Order = i
		out[i] = s
	}
	return &Pipeline{sections: out}, nil
}

// Len returns the number of sections.
func (p *Pipeline) Len() int {
	return len(p.sections)
}

// Sections returns a copy of the sections in order.
func (p *Pipeline) Sections() []types.SectionSpec {
	out := make([]types.SectionSpec, len(p.sections))
	copy(out, p.sections)
	return out
}

// Names returns the section names in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.sections))
	for i, s := range p.sections {
		names[i] = s.Name
	}
	return names
}

// Section returns the section at index i.
func (p *Pipeline) Section(i int) (types.SectionSpec, error) {
	if i < 0 || i >= len(p.sections) {
		return types.SectionSpec{}, fmt.Errorf("%w: %d not in [0,%d)", types.ErrOutOfRange, i, len(p.sections))
	}
	return p.sections[i], nil
}

// PromptFor builds the prompt for section i. For i > 0 it resolves section
// i-1 first and fails with *UpstreamUnresolvedError rather than build from
// empty text. When excerpts is non-nil the database text in the prompt is
// replaced by the excerpt selected for this section.
func (p *Pipeline) PromptFor(i int, req types.DocumentRequest, prior Resolver, excerpts ExcerptSource) (Prompt, error) {
	sec, err := p.Section(i)
	if err != nil {
		return Prompt{}, err
	}

	var priorContent string
	if i > 0 {
		upstream := p.sections[i-1].Name
		if prior == nil {
			return Prompt{}, &UpstreamUnresolvedError{Section: sec.Name, Upstream: upstream}
		}
		content, err := prior.Resolve(upstream)
		if err != nil {
			return Prompt{}, &UpstreamUnresolvedError{Section: sec.Name, Upstream: upstream, Err: err}
		}
		if strings.TrimSpace(content) == "" {
			return Prompt{}, &UpstreamUnresolvedError{Section: sec.Name, Upstream: upstream}
		}
		priorContent = content
	}

	if excerpts != nil {
		text, err := excerpts.Excerpt(sec.Name + " " + req.Title)
		if err != nil {
			return Prompt{}, fmt.Errorf("selecting database excerpt for %q: %w", sec.Name, err)
		}
		req.DatabaseText = text
	}

	return BuildPrompt(sec, req, priorContent)
}
