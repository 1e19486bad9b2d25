// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docforge/pkg/types"
)

// --- mock resolver ---

type mapResolver map[string]string

func (m mapResolver) Resolve(section string) (string, error) {
	if c, ok := m[section]; ok {
		return c, nil
	}
	return "", types.ErrUpstreamUnresolved
}

type fixedExcerpt struct {
	text    string
	queries []string
}

func (f *fixedExcerpt) Excerpt(query string) (string, error) {
	f.queries = append(f.queries, query)
	return f.text, nil
}

func twoSections() []types.SectionSpec {
	return []types.SectionSpec{
		{Name: "Intro", Human: "Introduce {{.Title}} from: {{.DatabaseText}}"},
		{Name: "Conclusion", Human: "After '{{.PriorContent}}', conclude {{.Title}}."},
	}
}

func testRequest() types.DocumentRequest {
	return types.DocumentRequest{Title: "Climate Report", DatabaseText: "CO2 rose 2%."}
}

// --- BuildPrompt ---

func TestBuildPrompt(t *testing.T) {
	sec := types.SectionSpec{Name: "Body", Order: 1, Human: "Continue '{{.PriorContent}}' for {{.Title}} using {{.DatabaseText}}"}
	req := types.DocumentRequest{Title: "T", DatabaseText: "DB", Style: types.StyleAcademic, Length: types.LengthShort}

	p, err := BuildPrompt(sec, req, "prior words")
	require.NoError(t, err)

	assert.Equal(t, "Continue 'prior words' for T using DB", p.Human)
	assert.Contains(t, p.System, `"Body" section`)
	assert.Contains(t, p.System, "formal academic register")
	assert.Contains(t, p.System, "roughly 150 words")
}

func TestBuildPrompt_FirstSectionIgnoresPrior(t *testing.T) {
	sec := types.SectionSpec{Name: "Intro", Order: 0, Human: "[{{.PriorContent}}]"}
	p, err := BuildPrompt(sec, testRequest(), "should not appear")
	require.NoError(t, err)
	assert.Equal(t, "[]", p.Human)
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	sec := DefaultSections()[1]
	a, err := BuildPrompt(sec, testRequest(), "x")
	require.NoError(t, err)
	b, err := BuildPrompt(sec, testRequest(), "x")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildPrompt_CustomSystem(t *testing.T) {
	sec := types.SectionSpec{Name: "S", System: "Style={{.Style}} {{.LengthGuide}}", Human: "h"}
	p, err := BuildPrompt(sec, types.DocumentRequest{Style: "poetic", Length: types.LengthLong}, "")
	require.NoError(t, err)
	assert.Equal(t, "Style=poetic Aim for roughly 800 words.", p.System)
}

func TestBuildPrompt_UnknownField(t *testing.T) {
	sec := types.SectionSpec{Name: "S", Human: "{{.Nope}}"}
	_, err := BuildPrompt(sec, testRequest(), "")
	assert.Error(t, err)
}

func TestGuides(t *testing.T) {
	assert.Equal(t, "", StyleGuide(""))
	assert.Equal(t, "Write in a poetic style.", StyleGuide("poetic"))
	assert.Equal(t, "", LengthGuide(""))
	assert.Equal(t, "Aim for roughly 400 words.", LengthGuide(types.LengthMedium))
	assert.Equal(t, "Keep the section brief.", LengthGuide("brief"))
}

// --- New ---

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		sections []types.SectionSpec
		errMsg   string
	}{
		{"empty", nil, "no sections"},
		{"missing name", []types.SectionSpec{{Human: "x"}}, "name is required"},
		{"duplicate", []types.SectionSpec{{Name: "A", Human: "x"}, {Name: "A", Human: "y"}}, "duplicate name"},
		{"missing human", []types.SectionSpec{{Name: "A"}}, "human prompt template is required"},
		{"bad template", []types.SectionSpec{{Name: "A", Human: "{{.Title"}}, "parsing template"},
		{"bad system", []types.SectionSpec{{Name: "A", Human: "x", System: "{{"}}, "parsing template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sections)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestNew_ReassignsOrder(t *testing.T) {
	p, err := New([]types.SectionSpec{{Name: " B ", Order: 7, Human: "x"}, {Name: "A", Order: 3, Human: "y"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, p.Names())
	secs := p.Sections()
	assert.Equal(t, 0, secs[0].Order)
	assert.Equal(t, 1, secs[1].Order)

	_, err = p.Section(2)
	assert.ErrorIs(t, err, types.ErrOutOfRange)
	_, err = p.Section(-1)
	assert.ErrorIs(t, err, types.ErrOutOfRange)
}

// --- PromptFor ---

func TestPromptFor_EmbedsPriorVerbatim(t *testing.T) {
	p, err := New(twoSections())
	require.NoError(t, err)

	prompt, err := p.PromptFor(1, testRequest(), mapResolver{"Intro": "Intro text."}, nil)
	require.NoError(t, err)
	assert.Equal(t, "After 'Intro text.', conclude Climate Report.", prompt.Human)
}

func TestPromptFor_FirstSectionNeedsNoResolver(t *testing.T) {
	p, err := New(twoSections())
	require.NoError(t, err)

	prompt, err := p.PromptFor(0, testRequest(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Introduce Climate Report from: CO2 rose 2%.", prompt.Human)
}

func TestPromptFor_UpstreamUnresolved(t *testing.T) {
	p, err := New(twoSections())
	require.NoError(t, err)

	tests := []struct {
		name     string
		resolver Resolver
	}{
		{"no resolver", nil},
		{"resolver error", mapResolver{}},
		{"blank content", mapResolver{"Intro": "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.PromptFor(1, testRequest(), tt.resolver, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrUpstreamUnresolved)

			var ue *UpstreamUnresolvedError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, "Conclusion", ue.Section)
			assert.Equal(t, "Intro", ue.Upstream)
		})
	}
}

func TestPromptFor_OutOfRange(t *testing.T) {
	p, err := New(twoSections())
	require.NoError(t, err)
	_, err = p.PromptFor(5, testRequest(), nil, nil)
	assert.ErrorIs(t, err, types.ErrOutOfRange)
}

func TestPromptFor_UsesExcerpt(t *testing.T) {
	p, err := New(twoSections())
	require.NoError(t, err)

	ex := &fixedExcerpt{text: "relevant chunk"}
	prompt, err := p.PromptFor(0, testRequest(), nil, ex)
	require.NoError(t, err)

	assert.Equal(t, "Introduce Climate Report from: relevant chunk", prompt.Human)
	assert.Equal(t, []string{"Intro Climate Report"}, ex.queries)
}

// --- sections ---

func TestDefaultSections(t *testing.T) {
	p, err := New(DefaultSections())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Introduction",
		"Background and Context",
		"Key Methodologies",
		"Results and Findings",
		"Discussion and Conclusion",
	}, p.Names())

	prompt, err := p.PromptFor(1, testRequest(), mapResolver{"Introduction": "The intro."}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(prompt.Human, "Based on the introduction: 'The intro.'"))
}

func TestLoadSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sections.yaml")
	content := `sections:
  - name: Summary
    human: "Summarize {{.Title}}"
  - name: Details
    system: "Be precise."
    human: "Expand on {{.PriorContent}}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Summary", "Details"}, p.Names())
	assert.Equal(t, "Be precise.", p.Sections()[1].System)

	out, err := MarshalSections(p.Sections())
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: Summary")
}

func TestLoadSections_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSections(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading sections file")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("sections: []\n"), 0o644))
	_, err = LoadSections(empty)
	assert.ErrorContains(t, err, "defines no sections")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sections: [\n"), 0o644))
	_, err = LoadSections(bad)
	assert.ErrorContains(t, err, "parsing sections file")
}

func TestLoad_Default(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Len())
}
