// Package template defines the engine interface used by the HTML report
// renderer. The gotemplate subpackage provides a pongo2 implementation.
package template
