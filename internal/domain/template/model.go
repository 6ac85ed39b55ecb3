package template

import "github.com/therascribe/therascribe/internal/model"

// Partial carries the fields of an update request; nil means "leave as is".
type Partial struct {
	Name              *string                  `json:"name,omitempty"`
	Format            *string                  `json:"format,omitempty"`
	IncludeCptCodes   *bool                    `json:"includeCptCodes,omitempty"`
	IncludeAddOnCodes *bool                    `json:"includeAddOnCodes,omitempty"`
	IsStructured      *bool                    `json:"isStructured,omitempty"`
	Structure         *model.TemplateStructure `json:"structure,omitempty"`
}

func (p Partial) apply(base model.Template) model.Template {
	if p.Name != nil {
		base.Name = *p.Name
	}
	if p.Format != nil {
		base.Format = *p.Format
	}
	if p.IncludeCptCodes != nil {
		base.IncludeCptCodes = *p.IncludeCptCodes
	}
	if p.IncludeAddOnCodes != nil {
		base.IncludeAddOnCodes = *p.IncludeAddOnCodes
	}
	if p.IsStructured != nil {
		base.IsStructured = *p.IsStructured
	}
	if p.Structure != nil {
		base.Structure = *p.Structure
	}
	return base
}
