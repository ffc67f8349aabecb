package render

import (
	"github.com/goliatone/go-formguard/pkg/model"
)

// FieldReport is the per field line of a Report.
type FieldReport struct {
	Name     string         `json:"name"`
	Value    string         `json:"value"`
	Valid    bool           `json:"valid"`
	Rule     model.RuleID   `json:"rule,omitempty"`
	Message  string         `json:"message,omitempty"`
	Violated []model.RuleID `json:"violated,omitempty"`
}

// Report is the renderable outcome of validating one form.
type Report struct {
	Form   string             `json:"form"`
	Source string             `json:"source,omitempty"`
	Valid  bool               `json:"isValid"`
	Errors []model.FieldError `json:"errors"`
	Fields []FieldReport      `json:"fields"`
}

// NewReport seeds a report from a validation result.
func NewReport(form string, result model.Result) Report {
	errs := result.Errors
	if errs == nil {
		errs = []model.FieldError{}
	}
	return Report{
		Form:   form,
		Valid:  result.Valid,
		Errors: errs,
		Fields: []FieldReport{},
	}
}

// AddField appends a field line. The reported rule and message come from the
// result the report was built with.
func (r *Report) AddField(name string, value model.Value, validity model.Validity) {
	line := FieldReport{
		Name:     name,
		Value:    value.String(),
		Valid:    validity.Valid,
		Violated: validity.Violated(),
	}
	for _, fe := range r.Errors {
		if fe.Field == name {
			line.Valid = false
			line.Rule = fe.Rule
			line.Message = fe.Message
			break
		}
	}
	r.Fields = append(r.Fields, line)
}

// Invalid counts the fields reported as failing.
func (r Report) Invalid() int {
	return len(r.Errors)
}
