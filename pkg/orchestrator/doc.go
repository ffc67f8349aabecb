// Package orchestrator binds validation rules to the fields of one HTML form.
// It registers fields, validates them individually or as a whole, keeps the
// error UI (classes, ARIA attributes, error containers) in sync and wires
// live validation and submit interception through document events.
//
//	form, _ := doc.Form("#signup")
//	o, err := orchestrator.New(form, orchestrator.WithValidateOnBlur(true))
//	if err != nil {
//		return err
//	}
//	_ = o.AddField("age", []model.Rule{{Name: model.RuleRequired}, {Name: model.RuleMin, Param: 18}})
//	result := o.Validate()
package orchestrator
