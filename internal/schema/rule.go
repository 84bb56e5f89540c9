// Package schema translates reference items between the global field
// vocabulary and the native vocabulary of each library application.
package schema

import (
	"slices"

	"refsync/internal/domain"
)

// RuleKind tags the variant held by a Rule
type RuleKind int

const (
	RuleAbsent RuleKind = iota
	RuleLiteral
	RuleComputed
)

func (k RuleKind) String() string {
	switch k {
	case RuleLiteral:
		return "literal"
	case RuleComputed:
		return "computed"
	default:
		return "absent"
	}
}

// Field is one translated key/value pair. Lossy is set when Value does
// not carry the source value faithfully; the translator reports it as a
// warning.
type Field struct {
	Name  string
	Value any
	Lossy string
}

// ComputeFunc derives zero or more destination fields from a source value
// and the snapshot of the whole item it belongs to. It must not modify
// either argument.
type ComputeFunc func(value any, item domain.Item) []Field

// Rule maps one field to the other side of a dictionary. It is exactly
// one of Literal(name), Absent() or Computed(fn, targets...).
type Rule struct {
	kind    RuleKind
	name    string
	targets []string
	compute ComputeFunc
}

// Literal maps the field 1:1 onto name
func Literal(name string) Rule {
	return Rule{kind: RuleLiteral, name: name, targets: []string{name}}
}

// Absent marks a field without equivalent; it is dropped when translating
func Absent() Rule {
	return Rule{kind: RuleAbsent}
}

// Computed maps the field through fn. Only fields named in targets are
// ever emitted.
func Computed(fn ComputeFunc, targets ...string) Rule {
	return Rule{kind: RuleComputed, compute: fn, targets: targets}
}

// Kind returns the variant tag
func (r Rule) Kind() RuleKind {
	return r.kind
}

// Name returns the destination name of a literal rule
func (r Rule) Name() string {
	return r.name
}

// Targets lists every destination field the rule can produce
func (r Rule) Targets() []string {
	return slices.Clone(r.targets)
}

// Apply evaluates the rule for one source value
func (r Rule) Apply(value any, item domain.Item) []Field {
	switch r.kind {
	case RuleLiteral:
		return []Field{{Name: r.name, Value: domain.CloneValue(value)}}

	case RuleComputed:
		if r.compute == nil {
			return nil
		}
		var out []Field
		for _, f := range r.compute(value, item) {
			if f.Value == nil || !slices.Contains(r.targets, f.Name) {
				continue
			}
			out = append(out, f)
		}
		return out

	default:
		return nil
	}
}
