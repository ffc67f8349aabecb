// Package formguard validates HTML forms against declared rules.
//
// The heavy lifting lives in the pkg/ packages; this package wires them for
// the common case of binding a parsed document to a rule file:
//
//	doc, _ := dom.Parse(page)
//	store, _ := ruleset.Load("signup.rules.yaml")
//	guard, err := formguard.Bind(doc, "#signup", store)
//	if err != nil {
//		return err
//	}
//	result := guard.Validate()
package formguard
