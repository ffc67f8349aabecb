package render

import (
	"context"
)

// Renderer turns a validation Report into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, report Report, options RenderOptions) ([]byte, error)
}

// RenderOptions tune a single render call.
type RenderOptions struct {
	// Title replaces the form name in headings.
	Title string
	// OnlyInvalid drops passing fields from the field listing.
	OnlyInvalid bool
}

func (o RenderOptions) fields(report Report) []FieldReport {
	if !o.OnlyInvalid {
		return report.Fields
	}
	out := make([]FieldReport, 0, len(report.Fields))
	for _, field := range report.Fields {
		if !field.Valid {
			out = append(out, field)
		}
	}
	return out
}

func (o RenderOptions) title(report Report) string {
	if o.Title != "" {
		return o.Title
	}
	if report.Form != "" {
		return report.Form
	}
	return "form"
}
