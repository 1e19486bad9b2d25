// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docforge/pkg/types"
)

// DefaultSections returns the standard five-section research document.
// Each section elaborates on the one before it.
func DefaultSections() []types.SectionSpec {
	return []types.SectionSpec{
		{
			Name:  "Introduction",
			Order: 0,
			Human: `Write an introduction for a document titled '{{.Title}}' using information from this database: {{.DatabaseText}}`,
		},
		{
			Name:  "Background and Context",
			Order: 1,
			Human: `Based on the introduction: '{{.PriorContent}}', elaborate on the background and context using information from this database: {{.DatabaseText}}`,
		},
		{
			Name:  "Key Methodologies",
			Order: 2,
			Human: `Following the background: '{{.PriorContent}}', delve into the key methodologies using the database: {{.DatabaseText}}`,
		},
		{
			Name:  "Results and Findings",
			Order: 3,
			Human: `Given the methodology: '{{.PriorContent}}', analyze the results and findings based on the database: {{.DatabaseText}}`,
		},
		{
			Name:  "Discussion and Conclusion",
			Order: 4,
			Human: `Concluding the analysis: '{{.PriorContent}}', write a comprehensive discussion and conclusion using the database: {{.DatabaseText}}`,
		},
	}
}

// outlineFile is the YAML layout of a custom section list.
type outlineFile struct {
	Sections []types.SectionSpec `yaml:"sections"`
}

// LoadSections reads a section list from a YAML outline:
//
//	sections:
//	  - name: Summary
//	    human: "Summarize {{.Title}} from: {{.DatabaseText}}"
func LoadSections(path string) ([]types.SectionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sections file: %w", err)
	}
	var outline outlineFile
	if err := yaml.Unmarshal(data, &outline); err != nil {
		return nil, fmt.Errorf("parsing sections file: %w", err)
	}
	if len(outline.Sections) == 0 {
		return nil, fmt.Errorf("sections file %s defines no sections", path)
	}
	for i := range outline.Sections {
		outline.Sections[i].Order = i
	}
	return outline.Sections, nil
}

// Load returns a pipeline from path, or the default sections when path is
// empty.
func Load(path string) (*Pipeline, error) {
	if path == "" {
		return New(DefaultSections())
	}
	sections, err := LoadSections(path)
	if err != nil {
		return nil, err
	}
	return New(sections)
}

// MarshalSections renders sections in the outline file format.
func MarshalSections(sections []types.SectionSpec) ([]byte, error) {
	return yaml.Marshal(outlineFile{Sections: sections})
}
