// Package tui fills a form from the terminal. A Session prompts each field
// registered on an orchestrator and asks again, showing the validation
// message, until the field's rules pass.
package tui
