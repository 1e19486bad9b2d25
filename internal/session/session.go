// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the state of one document-generation session: the
// settled variant results of each section, the accepted winner per section,
// and the section the user is looking at.
//
// State is a plain value with explicit transition methods. It does no
// locking; callers that share a State across goroutines serialize access.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/docforge/pkg/types"
)

var (
	// ErrNoWinner means the section has no accepted variant to edit.
	ErrNoWinner = errors.New("section has no selected variant")

	// ErrVariantFailed means the chosen variant produced no content.
	ErrVariantFailed = errors.New("variant failed")

	// ErrUnknownSection means the section name is not part of the session.
	ErrUnknownSection = errors.New("unknown section")
)

// Status is the lifecycle position of one section.
type Status int

const (
	// StatusUnresolved: no fan-out has produced content yet.
	StatusUnresolved Status = iota
	// StatusGenerated: results are present but none is accepted.
	StatusGenerated
	// StatusSelected: a variant is accepted with its original content.
	StatusSelected
	// StatusEdited: a variant is accepted and its content was changed.
	StatusEdited
)

func (s Status) String() string {
	switch s {
	case StatusGenerated:
		return "generated"
	case StatusSelected:
		return "selected"
	case StatusEdited:
		return "edited"
	default:
		return "unresolved"
	}
}

// MarshalText renders the status name in JSON and YAML output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for _, st := range []Status{StatusUnresolved, StatusGenerated, StatusSelected, StatusEdited} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown section status %q", b)
}

type sectionState struct {
	results []types.VariantResult
	settled bool
	winner  *types.Winner
}

// State is the per-session pipeline state.
type State struct {
	title      string
	names      []string
	index      map[string]int
	sections   []sectionState
	current    int
	autoSelect bool
}

// New returns an empty state for the named sections. When autoSelect is
// set, Resolve promotes the first successful variant of a section that has
// no explicit winner.
func New(title string, names []string, autoSelect bool) (*State, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("session needs at least one section")
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := index[n]; dup {
			return nil, fmt.Errorf("section %q listed twice", n)
		}
		index[n] = i
	}
	return &State{
		title:      title,
		names:      append([]string(nil), names...),
		index:      index,
		sections:   make([]sectionState, len(names)),
		autoSelect: autoSelect,
	}, nil
}

// Title returns the document title.
func (s *State) Title() string { return s.title }

// Len returns the number of sections.
func (s *State) Len() int { return len(s.names) }

// Names returns the section names in pipeline order.
func (s *State) Names() []string { return append([]string(nil), s.names...) }

// AutoSelect reports whether first-success promotion is enabled.
func (s *State) AutoSelect() bool { return s.autoSelect }

func (s *State) section(name string) (*sectionState, error) {
	i, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return &s.sections[i], nil
}

// RecordResults stores the settled fan-out results of a section, replacing
// any earlier results. The previous winner is cleared because its variant
// index refers to the replaced results.
func (s *State) RecordResults(section string, results []types.VariantResult) error {
	sec, err := s.section(section)
	if err != nil {
		return err
	}
	sec.results = append([]types.VariantResult(nil), results...)
	sec.settled = true
	sec.winner = nil
	return nil
}

// Results returns a copy of the section's recorded results.
func (s *State) Results(section string) ([]types.VariantResult, error) {
	sec, err := s.section(section)
	if err != nil {
		return nil, err
	}
	return append([]types.VariantResult(nil), sec.results...), nil
}

// Status returns the section's lifecycle position.
func (s *State) Status(section string) (Status, error) {
	sec, err := s.section(section)
	if err != nil {
		return StatusUnresolved, err
	}
	return sec.status(), nil
}

func (sec *sectionState) status() Status {
	switch {
	case sec.winner != nil && sec.winner.Edited:
		return StatusEdited
	case sec.winner != nil:
		return StatusSelected
	case sec.firstSuccess() >= 0:
		return StatusGenerated
	default:
		return StatusUnresolved
	}
}

// Failed reports whether the section was generated and every variant failed.
func (s *State) Failed(section string) bool {
	sec, err := s.section(section)
	if err != nil {
		return false
	}
	return sec.settled && sec.firstSuccess() < 0
}

func (sec *sectionState) firstSuccess() int {
	for i, r := range sec.results {
		if r.OK() {
			return i
		}
	}
	return -1
}

// Select accepts variant i of the section. Re-selecting discards edits.
// The recorded results are never modified.
func (s *State) Select(section string, variant int) (types.Winner, error) {
	sec, err := s.section(section)
	if err != nil {
		return types.Winner{}, err
	}
	if variant < 0 || variant >= len(sec.results) {
		return types.Winner{}, fmt.Errorf("%w: section %q has no variant %d", types.ErrOutOfRange, section, variant)
	}
	r := sec.results[variant]
	if !r.OK() {
		return types.Winner{}, fmt.Errorf("%w: section %q variant %d: %v", ErrVariantFailed, section, variant, r.Err)
	}
	sec.winner = &types.Winner{SectionName: section, VariantIndex: variant, Content: r.Content}
	return *sec.winner, nil
}

// Edit replaces the accepted content of the section. The chosen variant
// stays the same.
func (s *State) Edit(section, content string) (types.Winner, error) {
	sec, err := s.section(section)
	if err != nil {
		return types.Winner{}, err
	}
	if sec.winner == nil {
		return types.Winner{}, fmt.Errorf("%w: %q", ErrNoWinner, section)
	}
	sec.winner.Content = content
	sec.winner.Edited = true
	return *sec.winner, nil
}

// Winner returns the section's accepted variant, if any.
func (s *State) Winner(section string) (types.Winner, bool) {
	sec, err := s.section(section)
	if err != nil || sec.winner == nil {
		return types.Winner{}, false
	}
	return *sec.winner, true
}

// Resolve returns the content a downstream section builds on: the winner's
// content, or the sole result in single-path mode. With auto-select on and
// no winner, the first successful variant becomes the winner. Anything else
// fails with types.ErrUpstreamUnresolved.
func (s *State) Resolve(section string) (string, error) {
	sec, err := s.section(section)
	if err != nil {
		return "", err
	}
	if sec.winner != nil {
		return sec.winner.Content, nil
	}
	first := sec.firstSuccess()
	switch {
	case first < 0:
		return "", fmt.Errorf("%w: %q has no successful variant", types.ErrUpstreamUnresolved, section)
	case s.autoSelect:
		w, err := s.Select(section, first)
		if err != nil {
			return "", err
		}
		return w.Content, nil
	case len(sec.results) == 1:
		return sec.results[0].Content, nil
	default:
		return "", fmt.Errorf("%w: %q has %d variants and none is selected", types.ErrUpstreamUnresolved, section, len(sec.results))
	}
}

// accepted is the read-only counterpart of Resolve used by export. It never
// promotes a winner.
func (s *State) accepted(i int) (string, bool) {
	sec := &s.sections[i]
	if sec.winner != nil {
		return sec.winner.Content, strings.TrimSpace(sec.winner.Content) != ""
	}
	first := sec.firstSuccess()
	if first < 0 {
		return "", false
	}
	if s.autoSelect || len(sec.results) == 1 {
		return sec.results[first].Content, true
	}
	return "", false
}

// Current returns the index of the section being viewed.
func (s *State) Current() int { return s.current }

// GoTo moves to section i. Winners are untouched.
func (s *State) GoTo(i int) error {
	if i < 0 || i >= len(s.names) {
		return fmt.Errorf("%w: %d not in [0,%d)", types.ErrOutOfRange, i, len(s.names))
	}
	s.current = i
	return nil
}

// Next moves forward one section, stopping at the last.
func (s *State) Next() int {
	if s.current < len(s.names)-1 {
		s.current++
	}
	return s.current
}

// Prev moves back one section, stopping at the first.
func (s *State) Prev() int {
	if s.current > 0 {
		s.current--
	}
	return s.current
}
