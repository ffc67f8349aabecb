package render

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formguard/pkg/render/template"
	"github.com/goliatone/go-formguard/pkg/render/template/gotemplate"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// DefaultHTMLTemplate names the embedded report template.
const DefaultHTMLTemplate = "report"

// TemplatesFS exposes the embedded report templates rooted at their
// directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// HTMLOption customises the HTML renderer.
type HTMLOption func(*HTML)

// WithTemplateRenderer swaps the template engine. Custom engines must be able
// to resolve the configured template name.
func WithTemplateRenderer(engine template.TemplateRenderer) HTMLOption {
	return func(h *HTML) {
		if engine != nil {
			h.engine = engine
		}
	}
}

// WithTemplateName selects the template rendered for each report.
func WithTemplateName(name string) HTMLOption {
	return func(h *HTML) {
		if name != "" {
			h.template = name
		}
	}
}

// HTML renders an HTML fragment summarising the report.
type HTML struct {
	engine   template.TemplateRenderer
	template string
}

// NewHTML builds the renderer. Without WithTemplateRenderer it uses a pongo2
// engine over the embedded templates.
func NewHTML(options ...HTMLOption) (*HTML, error) {
	h := &HTML{template: DefaultHTMLTemplate}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	if h.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("render: html engine: %w", err)
		}
		h.engine = engine
	}
	return h, nil
}

func (*HTML) Name() string        { return "html" }
func (*HTML) ContentType() string { return "text/html; charset=utf-8" }

func (h *HTML) Render(ctx context.Context, report Report, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := h.engine.RenderTemplate(h.template, map[string]any{
		"title":  options.title(report),
		"report": report,
		"fields": options.fields(report),
	})
	if err != nil {
		return nil, fmt.Errorf("render: html: %w", err)
	}
	return []byte(out), nil
}
