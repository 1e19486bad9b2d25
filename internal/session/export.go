// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pdiddy/docforge/pkg/types"
)

// Placeholder stands in for a section with no accepted content.
const Placeholder = "No content generated for this section."

// Export renders the document as plain text: the title, then each section
// in pipeline order as "Name:\n\n<content>\n\n". It only reads state.
func (s *State) Export() string {
	var b strings.Builder
	b.WriteString(s.title)
	b.WriteString("\n\n")
	for i, name := range s.names {
		content, ok := s.accepted(i)
		if !ok {
			content = Placeholder
		}
		b.WriteString(name)
		b.WriteString(":\n\n")
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// ExportFilename returns a filesystem-safe .txt name derived from title.
func ExportFilename(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	stem := strings.TrimSuffix(b.String(), "-")
	if stem == "" {
		stem = "document"
	}
	return stem + ".txt"
}

// WriteExport writes the export to dir under ExportFilename and returns the
// file path.
func (s *State) WriteExport(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(s.title))
	if err := os.WriteFile(path, []byte(s.Export()), 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

// VariantView is one recorded result in a Snapshot.
type VariantView struct {
	Index       int            `json:"index" yaml:"index"`
	Model       string         `json:"model" yaml:"model"`
	Provider    types.Provider `json:"provider,omitempty" yaml:"provider,omitempty"`
	Temperature float64        `json:"temperature" yaml:"temperature"`
	Content     string         `json:"content,omitempty" yaml:"content,omitempty"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// SectionView is one section in a Snapshot.
type SectionView struct {
	Name     string        `json:"name" yaml:"name"`
	Status   Status        `json:"status" yaml:"status"`
	Failed   bool          `json:"failed,omitempty" yaml:"failed,omitempty"`
	Winner   *types.Winner `json:"winner,omitempty" yaml:"winner,omitempty"`
	Variants []VariantView `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// Snapshot is a detached, read-only copy of the state.
type Snapshot struct {
	Title      string        `json:"title" yaml:"title"`
	Current    int           `json:"current" yaml:"current"`
	AutoSelect bool          `json:"auto_select" yaml:"auto_select"`
	Sections   []SectionView `json:"sections" yaml:"sections"`
}

// Snapshot copies the state for display.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Title:      s.title,
		Current:    s.current,
		AutoSelect: s.autoSelect,
		Sections:   make([]SectionView, len(s.names)),
	}
	for i, name := range s.names {
		sec := &s.sections[i]
		view := SectionView{
			Name:   name,
			Status: sec.status(),
			Failed: sec.settled && sec.firstSuccess() < 0,
		}
		if sec.winner != nil {
			w := *sec.winner
			view.Winner = &w
		}
		if len(sec.results) > 0 {
			view.Variants = Views(sec.results)
		}
		snap.Sections[i] = view
	}
	return snap
}

// Views converts results for display.
func Views(results []types.VariantResult) []VariantView {
	views := make([]VariantView, len(results))
	for i, r := range results {
		views[i] = VariantView{
			Index:       r.VariantIndex,
			Model:       r.Variant.ModelID,
			Provider:    r.Variant.Provider,
			Temperature: r.Variant.Temperature,
			Content:     r.Content,
		}
		if r.Err != nil {
			views[i].Error = r.Err.Error()
		}
	}
	return views
}
