// Command formguard-lint checks rule declaration files for rules the engine
// cannot evaluate: unknown identifiers, patterns that do not compile and
// bounds that are not numbers.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/rules"
	"github.com/goliatone/go-formguard/pkg/ruleset"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	fs.SetOutput(stderr)
	allow := fs.String("allow", "", "comma separated custom rule ids registered at runtime")
	schema := fs.Bool("schema", false, "print the JSON Schema of declaration files and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [-allow id,...] paths...\n       %s -schema\n", fs.Name(), fs.Name())
		fmt.Fprintf(fs.Output(), "\nLint formguard rule declaration files.\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *schema {
		out, err := ruleset.Schema()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		fmt.Fprintf(stdout, "%s\n", out)
		return 0
	}
	paths := fs.Args()
	if len(paths) == 0 {
		fs.Usage()
		return 2
	}

	known := make(map[model.RuleID]bool)
	for _, id := range rules.Default().List() {
		known[id] = true
	}
	for _, id := range strings.Split(*allow, ",") {
		if id = strings.TrimSpace(id); id != "" {
			known[model.RuleID(id)] = true
		}
	}

	var violations []violation
	for _, path := range paths {
		linted, err := lintFile(path, known)
		if err != nil {
			fmt.Fprintf(stderr, "lint %s: %v\n", path, err)
			return 2
		}
		violations = append(violations, linted...)
	}

	if len(violations) == 0 {
		fmt.Fprintf(stdout, "%d file(s) ok\n", len(paths))
		return 0
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
	return 1
}

func lintFile(path string, known map[model.RuleID]bool) ([]violation, error) {
	store, err := ruleset.Load(path)
	if err != nil {
		return nil, err
	}

	var result []violation
	for _, form := range store.Forms() {
		rs, _ := store.Form(form)
		base := []string{"form", form}

		ids := make([]string, 0, len(rs.Messages))
		for id := range rs.Messages {
			ids = append(ids, string(id))
		}
		slices.Sort(ids)
		for _, id := range ids {
			if rid := model.RuleID(id); !known[rid] && rid != model.RuleStep {
				result = append(result, violation{
					file:     path,
					location: formatLocation(appendPath(base, "messages")),
					message:  fmt.Sprintf("message for unknown rule %q", id),
				})
			}
		}

		for _, field := range rs.Fields {
			result = append(result, lintField(path, appendPath(base, field.Name), field, known)...)
		}
	}
	return result, nil
}

func lintField(file string, path []string, field model.FieldConfig, known map[model.RuleID]bool) []violation {
	var result []violation
	report := func(rule model.RuleID, format string, args ...any) {
		result = append(result, violation{
			file:     file,
			location: formatLocation(appendPath(path, string(rule))),
			message:  fmt.Sprintf(format, args...),
		})
	}

	seen := make(map[model.RuleID]bool, len(field.Rules))
	for _, rule := range field.Rules {
		if seen[rule.Name] {
			report(rule.Name, "rule declared twice")
		}
		seen[rule.Name] = true

		if !known[rule.Name] {
			report(rule.Name, "unknown rule (supported: %s)", strings.Join(ruleNames(known), ", "))
			continue
		}

		switch rule.Name {
		case model.RuleMin, model.RuleMax:
			if _, ok := model.ToNumber(rule.Param); !ok {
				report(rule.Name, "value must be a number, found %T", rule.Param)
			}
		case model.RuleMinLength, model.RuleMaxLength, model.RuleArrayMin, model.RuleArrayMax:
			n, ok := model.ToNumber(rule.Param)
			switch {
			case !ok:
				report(rule.Name, "value must be a number, found %T", rule.Param)
			case n < 0:
				report(rule.Name, "value must not be negative, found %v", n)
			}
		case model.RulePattern:
			if rule.Param == nil || rule.Param == "" {
				report(rule.Name, "pattern is empty")
			} else if _, err := rules.CompilePattern(rule.Param); err != nil {
				report(rule.Name, "pattern does not compile: %v", err)
			}
		case model.RuleEqualTo:
			if name, ok := rule.Param.(string); !ok || strings.TrimSpace(name) == "" {
				report(rule.Name, "value must name a sibling field")
			} else if name == field.Name {
				report(rule.Name, "field compares against itself")
			}
		}
	}
	return result
}

func ruleNames(known map[model.RuleID]bool) []string {
	out := make([]string, 0, len(known))
	for id := range known {
		out = append(out, string(id))
	}
	slices.Sort(out)
	return out
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	return append(next, segment)
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
