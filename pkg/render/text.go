package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
)

// Text renders a human readable summary, one aligned line per field.
type Text struct{}

func (Text) Name() string        { return "text" }
func (Text) ContentType() string { return "text/plain; charset=utf-8" }

func (Text) Render(ctx context.Context, report Report, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	status := "valid"
	if !report.Valid {
		status = fmt.Sprintf("invalid (%d %s)", report.Invalid(), plural(report.Invalid(), "error", "errors"))
	}
	fmt.Fprintf(&buf, "%s: %s\n", options.title(report), status)

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for _, field := range options.fields(report) {
		if field.Valid {
			fmt.Fprintf(tw, "  ok\t%s\t\t\n", field.Name)
			continue
		}
		rule := string(field.Rule)
		if rule == "" && len(field.Violated) > 0 {
			rule = string(field.Violated[0])
		}
		fmt.Fprintf(tw, "  FAIL\t%s\t[%s]\t%s\n", field.Name, rule, field.Message)
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("render: text: %w", err)
	}
	return []byte(trimLines(buf.String())), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// trimLines drops trailing blanks tabwriter leaves on short lines.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
