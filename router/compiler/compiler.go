// Copyright 2025 The Gerkon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

import "regexp"

// CatchAll is the reserved rule used for not-found handling.
const CatchAll = "*"

var (
	// optionalRegion matches an escaped {...} region. Non-greedy, so several
	// optional regions in one rule stay independent.
	optionalRegion = regexp.MustCompile(`\\\{(.*?)\\\}`)

	// anyChars matches an escaped *.
	anyChars = regexp.MustCompile(`\\\*`)

	// placeholder matches <name> after escaping. Escaped characters are
	// allowed inside the name; slashes, whitespace and angle brackets are not.
	placeholder = regexp.MustCompile(`<((?:\\.|[^\s/<>\\])+)>`)

	// escaped matches a single backslash escape inside a placeholder name.
	escaped = regexp.MustCompile(`\\(.)`)

	catchAllPattern = regexp.MustCompile(`(?s)^.*$`)
)

// Param is a single extracted path parameter.
type Param struct {
	Key   string
	Value string
}

// Rule is a compiled route rule.
type Rule struct {
	// Source is the rule as it was registered.
	Source string

	// Pattern is the anchored, case-insensitive matcher.
	Pattern *regexp.Regexp

	// ParamNames holds placeholder names in declaration order.
	// len(ParamNames) always equals Pattern.NumSubexp().
	ParamNames []string

	// CatchAll reports whether this is the reserved "*" rule.
	CatchAll bool
}

// Compile compiles a rule. It never fails: text that does not form a valid
// template is matched literally.
func Compile(rule string) *Rule {
	if rule == CatchAll {
		return &Rule{Source: rule, Pattern: catchAllPattern, CatchAll: true}
	}

	expr := regexp.QuoteMeta(rule)
	expr = optionalRegion.ReplaceAllString(expr, `(?:${1})?`)
	expr = anyChars.ReplaceAllLiteralString(expr, `\S*`)

	var names []string
	expr = placeholder.ReplaceAllStringFunc(expr, func(m string) string {
		name := m[1 : len(m)-1]
		names = append(names, escaped.ReplaceAllString(name, "${1}"))
		return `([^/]+)`
	})

	re, err := regexp.Compile(`(?i)^` + expr + `$`)
	if err != nil || re.NumSubexp() != len(names) {
		return &Rule{
			Source:  rule,
			Pattern: regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(rule) + `$`),
		}
	}

	return &Rule{Source: rule, Pattern: re, ParamNames: names}
}

// Match reports whether path satisfies the rule.
func (r *Rule) Match(path string) bool {
	return r.Pattern.MatchString(path)
}

// Extract matches path and returns its parameters in declaration order.
// Placeholders inside an optional region that did not participate in the
// match are omitted.
func (r *Rule) Extract(path string) ([]Param, bool) {
	if r.CatchAll {
		return nil, true
	}

	idx := r.Pattern.FindStringSubmatchIndex(path)
	if idx == nil {
		return nil, false
	}
	if len(r.ParamNames) == 0 {
		return nil, true
	}

	params := make([]Param, 0, len(r.ParamNames))
	for i, name := range r.ParamNames {
		start, end := idx[2*(i+1)], idx[2*(i+1)+1]
		if start < 0 {
			continue
		}
		params = append(params, Param{Key: name, Value: path[start:end]})
	}

	return params, true
}

// String returns the rule source.
func (r *Rule) String() string {
	return r.Source
}

// Match compiles rule and reports whether path satisfies it.
func Match(rule, path string) bool {
	return Compile(rule).Match(path)
}
