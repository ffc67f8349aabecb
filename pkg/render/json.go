package render

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// JSON renders the report as a JSON document.
type JSON struct {
	Indent string
}

func (JSON) Name() string        { return "json" }
func (JSON) ContentType() string { return "application/json" }

func (j JSON) Render(ctx context.Context, report Report, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.Fields = options.fields(report)
	if options.Title != "" {
		report.Form = options.Title
	}

	var (
		out []byte
		err error
	)
	if j.Indent != "" {
		out, err = json.MarshalIndent(report, "", j.Indent)
	} else {
		out, err = json.Marshal(report)
	}
	if err != nil {
		return nil, fmt.Errorf("render: json: %w", err)
	}
	return append(out, '\n'), nil
}
