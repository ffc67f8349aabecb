package formguard

import (
	"io/fs"

	"github.com/goliatone/go-formguard/pkg/render"
)

// EmbeddedTemplates exposes the built-in report templates so callers can
// copy or extend them for their own template engine.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}
