// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Style selects the writing register requested for every section.
type Style string

const (
	StyleAcademic  Style = "academic"
	StyleTechnical Style = "technical"
	StyleBusiness  Style = "business"
	StyleCasual    Style = "casual"
)

// Length selects the target length of each generated section.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// TargetWords returns the approximate word count for the length, or 0 when
// the length is empty or unknown.
func (l Length) TargetWords() int {
	switch l {
	case LengthShort:
		return 150
	case LengthMedium:
		return 400
	case LengthLong:
		return 800
	}
	return 0
}

// DocumentRequest is the user input for one document. It does not change
// once generation starts.
type DocumentRequest struct {
	// Title is the document title, used in prompts and as the export header.
	Title string `json:"title" yaml:"title"`

	// DatabaseText is the raw source material every section draws from.
	DatabaseText string `json:"database_text" yaml:"database_text"`

	// Style is the requested writing style. Empty means no guidance.
	Style Style `json:"style,omitempty" yaml:"style,omitempty"`

	// Length is the requested section length. Empty means no guidance.
	Length Length `json:"length,omitempty" yaml:"length,omitempty"`
}

// Validate rejects requests that cannot start generation.
func (r DocumentRequest) Validate() error {
	if strings.TrimSpace(r.DatabaseText) == "" {
		return fmt.Errorf("%w: database text is required", ErrMissingInput)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrMissingInput)
	}
	return nil
}

// SectionSpec defines one section of the pipeline. System and Human are
// text/template sources rendered by the pipeline package.
type SectionSpec struct {
	// Name is the section heading. Unique within a pipeline.
	Name string `json:"name" yaml:"name"`

	// Order is the zero-based position in the pipeline.
	Order int `json:"order" yaml:"order"`

	// System is the system instruction template.
	System string `json:"system,omitempty" yaml:"system,omitempty"`

	// Human is the human prompt template.
	Human string `json:"human" yaml:"human"`
}

// VariantConfig is one model/temperature slot for a section.
type VariantConfig struct {
	// ModelID is the backend model identifier (e.g. "gemini-1.5-flash").
	ModelID string `json:"model" yaml:"model" mapstructure:"model"`

	// Temperature is the sampling temperature in [0, 2].
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// Provider routes the call to a named backend. Empty uses the default.
	Provider Provider `json:"provider,omitempty" yaml:"provider,omitempty" mapstructure:"provider"`
}

// Validate range-checks the temperature and requires a model.
func (v VariantConfig) Validate() error {
	if strings.TrimSpace(v.ModelID) == "" {
		return fmt.Errorf("variant model is required")
	}
	if v.Temperature < 0 || v.Temperature > 2 {
		return fmt.Errorf("variant %s: temperature %.2f out of range [0,2]", v.ModelID, v.Temperature)
	}
	return nil
}

// String renders the slot as model@temperature.
func (v VariantConfig) String() string {
	if v.Provider != "" {
		return fmt.Sprintf("%s/%s@%.1f", v.Provider, v.ModelID, v.Temperature)
	}
	return fmt.Sprintf("%s@%.1f", v.ModelID, v.Temperature)
}

// VariantResult is the settled outcome of one generation call. Exactly one
// of Content and Err is set.
type VariantResult struct {
	VariantIndex int           `json:"variant_index"`
	SectionName  string        `json:"section_name"`
	Variant      VariantConfig `json:"variant"`
	Content      string        `json:"content,omitempty"`
	Err          error         `json:"-"`
}

// OK reports whether the call produced content.
func (r VariantResult) OK() bool {
	return r.Err == nil
}

// Winner is the accepted variant of a section. Content starts as the
// variant's content and may be edited afterwards.
type Winner struct {
	SectionName  string `json:"section_name"`
	VariantIndex int    `json:"variant_index"`
	Content      string `json:"content"`
	Edited       bool   `json:"edited"`
}
