// Package ruleset loads rule declarations from JSON or YAML files so forms
// can be validated without wiring rules in code.
//
// A file declares one form:
//
//	form: signup
//	messages:
//	  required: "{label} is required"
//	fields:
//	  - name: email
//	    rules:
//	      - rule: required
//	      - rule: email
//	        errorMessage: Please use a work address
//
// or several, keyed by form selector under `forms:`.
package ruleset
