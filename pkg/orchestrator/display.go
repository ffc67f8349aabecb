package orchestrator

import (
	"github.com/goliatone/go-formguard/pkg/dom"
)

// showError marks every control of the field invalid and writes message
// into its error container, creating the container when none exists.
func (o *Orchestrator) showError(field *dom.Field, message string) {
	container := o.container(field, true)
	describedBy := ""
	if container != nil {
		if container.ID() == "" {
			container.SetAttr("id", dom.ContainerID(field.Name()))
		}
		describedBy = container.ID()
		container.SetText(message)
		container.SetAttr("role", "alert")
		container.RemoveAttr("hidden")
	}

	for _, el := range field.Controls() {
		el.AddClass(o.cfg.ErrorClass)
		el.RemoveClass(o.cfg.SuccessClass)
		el.SetAttr("aria-invalid", "true")
		if describedBy != "" {
			el.SetAttr("aria-describedby", describedBy)
		}
	}
}

// showSuccess marks the field valid and empties an existing container.
func (o *Orchestrator) showSuccess(field *dom.Field) {
	container := o.container(field, false)
	for _, el := range field.Controls() {
		el.AddClass(o.cfg.SuccessClass)
		el.RemoveClass(o.cfg.ErrorClass)
		el.RemoveAttr("aria-invalid")
		unlink(el, container)
	}
	resetContainer(container)
}

// clearField drops both state classes and any message.
func (o *Orchestrator) clearField(field *dom.Field) {
	container := o.container(field, false)
	for _, el := range field.Controls() {
		el.RemoveClass(o.cfg.ErrorClass)
		el.RemoveClass(o.cfg.SuccessClass)
		el.RemoveAttr("aria-invalid")
		unlink(el, container)
	}
	resetContainer(container)
}

func (o *Orchestrator) container(field *dom.Field, create bool) *dom.Element {
	attr := o.cfg.ErrorContainerAttribute
	if el, ok := field.ErrorContainer(attr); ok {
		return el
	}
	if !create {
		return nil
	}
	if !o.warnedContainer[field.Name()] {
		o.warnedContainer[field.Name()] = true
		o.logger.Warn("no error container found; creating one", "field", field.Name(), "attribute", attr)
	}
	return field.CreateErrorContainer(attr)
}

func unlink(el, container *dom.Element) {
	if container == nil {
		return
	}
	if v, ok := el.Attr("aria-describedby"); ok && v == container.ID() {
		el.RemoveAttr("aria-describedby")
	}
}

func resetContainer(container *dom.Element) {
	if container == nil {
		return
	}
	container.SetText("")
	container.RemoveAttr("role")
	container.ToggleAttr("hidden", true)
}
