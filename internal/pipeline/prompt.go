// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/docforge/pkg/types"
)

// defaultSystemTmpl is used for sections that do not define a system
// instruction.
const defaultSystemTmpl = `You are writing the "{{.Section}}" section of a document titled '{{.Title}}'. ` +
	`Use only facts supported by the provided database. Return the section body as plain text without a heading.` +
	`{{with .StyleGuide}} {{.}}{{end}}{{with .LengthGuide}} {{.}}{{end}}`

// styleGuides maps known styles to their instruction.
var styleGuides = map[types.Style]string{
	types.StyleAcademic:  "Write in a formal academic register with precise terminology.",
	types.StyleTechnical: "Write in a clear technical register aimed at practitioners.",
	types.StyleBusiness:  "Write in a concise business register focused on outcomes.",
	types.StyleCasual:    "Write in an approachable, conversational register.",
}

// Prompt is the two-part input of a generation call.
type Prompt struct {
	System string
	Human  string
}

// promptData is the template context for section prompts.
type promptData struct {
	Section      string
	Title        string
	PriorContent string
	DatabaseText string
	Style        types.Style
	Length       types.Length
	StyleGuide   string
	LengthGuide  string
}

// BuildPrompt renders a section's system instruction and human prompt. It
// is pure: the same inputs always produce the same prompt. The first section
// (Order 0) never sees prior content.
func BuildPrompt(section types.SectionSpec, req types.DocumentRequest, priorContent string) (Prompt, error) {
	if section.Order == 0 {
		priorContent = ""
	}
	data := promptData{
		Section:      section.Name,
		Title:        req.Title,
		PriorContent: priorContent,
		DatabaseText: req.DatabaseText,
		Style:        req.Style,
		Length:       req.Length,
		StyleGuide:   StyleGuide(req.Style),
		LengthGuide:  LengthGuide(req.Length),
	}

	systemSrc := section.System
	if strings.TrimSpace(systemSrc) == "" {
		systemSrc = defaultSystemTmpl
	}
	system, err := render(section.Name+"/system", systemSrc, data)
	if err != nil {
		return Prompt{}, err
	}
	human, err := render(section.Name+"/human", section.Human, data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: system, Human: human}, nil
}

// StyleGuide returns the instruction for a style. Unknown styles are passed
// through as requested.
func StyleGuide(s types.Style) string {
	if s == "" {
		return ""
	}
	if g, ok := styleGuides[s]; ok {
		return g
	}
	return fmt.Sprintf("Write in a %s style.", s)
}

// LengthGuide returns the instruction for a length.
func LengthGuide(l types.Length) string {
	if l == "" {
		return ""
	}
	if words := l.TargetWords(); words > 0 {
		return fmt.Sprintf("Aim for roughly %d words.", words)
	}
	return fmt.Sprintf("Keep the section %s.", l)
}

func parseTemplate(name, src string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return t, nil
}

func render(name, src string, data promptData) (string, error) {
	t, err := parseTemplate(name, src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return buf.String(), nil
}
