// Package render turns validation outcomes into text, JSON or HTML reports.
//
// Build a Report from a model.Result, add one line per field, then render it
// through a Registry:
//
//	reg, _ := render.NewDefaultRegistry()
//	report := render.NewReport("signup", result)
//	out, err := reg.Render(ctx, "text", report, render.RenderOptions{})
package render
