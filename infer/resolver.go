// Package infer decides which entity kind a graph node should be minted as,
// given the node's rdf:type values.
//
// Resolution has two stages. First the node's types are walked in the order
// the datastore returned them and the first type with a configured mapping
// wins. If no type is mapped, rules are tried in order: each rule is a CEL
// expression over the variables
//
//	node  string        the node identifier
//	types list(string)  the node's rdf:type values
//
// and the first rule that evaluates to true wins. Example rule:
//
//	types.exists(t, t.startsWith("http://schema.org/Music"))
package infer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/cel-go/cel"
)

// ErrInvalidRule indicates a rule failed to compile or does not yield a bool.
var ErrInvalidRule = errors.New("invalid inference rule")

// ErrRuleEvaluation indicates a rule failed at evaluation time.
var ErrRuleEvaluation = errors.New("inference rule evaluation failed")

// Rule maps nodes matching a CEL condition to an entity kind.
type Rule struct {
	// Entity is the entity kind to mint when When holds.
	Entity string `yaml:"entity" json:"entity"`

	// When is a CEL expression evaluating to bool.
	When string `yaml:"when" json:"when"`
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// Entity is the resolved entity kind. Empty when Matched is false.
	Entity string

	// Matched is false when neither a type mapping nor a rule applied.
	Matched bool

	// Type is the rdf:type that produced the match, if any.
	Type string

	// Rule is the expression that produced the match, if any.
	Rule string

	// Conflicts lists other entity kinds the node's types map to. They lost
	// to Entity because their type came later in enumeration order.
	Conflicts []string
}

// Resolver resolves node types to entity kinds. It is immutable and safe for
// concurrent use.
type Resolver struct {
	types map[string]string
	rules []compiledRule
}

type compiledRule struct {
	Rule
	program cel.Program
}

// NewResolver compiles rules against the node/types environment.
func NewResolver(types map[string]string, rules []Rule) (*Resolver, error) {
	r := &Resolver{types: make(map[string]string, len(types))}
	for t, kind := range types {
		r.types[t] = kind
	}

	if len(rules) == 0 {
		return r, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("node", cel.StringType),
		cel.Variable("types", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule environment: %w", err)
	}

	for i, rule := range rules {
		if rule.Entity == "" {
			return nil, fmt.Errorf("%w: rule %d has no entity", ErrInvalidRule, i)
		}

		ast, iss := env.Compile(rule.When)
		if iss.Err() != nil {
			return nil, fmt.Errorf("%w: rule %d (%s): %v", ErrInvalidRule, i, rule.Entity, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("%w: rule %d (%s) yields %s, want bool", ErrInvalidRule, i, rule.Entity, ast.OutputType())
		}

		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d (%s): %v", ErrInvalidRule, i, rule.Entity, err)
		}
		r.rules = append(r.rules, compiledRule{Rule: rule, program: program})
	}

	return r, nil
}

// Kinds returns every entity kind the resolver can produce, without duplicates.
func (r *Resolver) Kinds() []string {
	var kinds []string
	for _, kind := range r.types {
		if !slices.Contains(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}
	for _, rule := range r.rules {
		if !slices.Contains(kinds, rule.Entity) {
			kinds = append(kinds, rule.Entity)
		}
	}
	slices.Sort(kinds)
	return kinds
}

// Resolve picks an entity kind for node given its types.
func (r *Resolver) Resolve(node string, types []string) (Resolution, error) {
	var res Resolution
	for _, t := range types {
		kind, ok := r.types[t]
		if !ok {
			continue
		}
		if !res.Matched {
			res = Resolution{Entity: kind, Matched: true, Type: t}
			continue
		}
		if kind != res.Entity && !slices.Contains(res.Conflicts, kind) {
			res.Conflicts = append(res.Conflicts, kind)
		}
	}
	if res.Matched {
		return res, nil
	}

	if len(r.rules) == 0 {
		return Resolution{}, nil
	}

	if types == nil {
		types = []string{}
	}
	vars := map[string]any{
		"node":  node,
		"types": types,
	}

	for i, rule := range r.rules {
		out, _, err := rule.program.Eval(vars)
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: rule %d (%s): %v", ErrRuleEvaluation, i, rule.Entity, err)
		}
		if matched, ok := out.Value().(bool); ok && matched {
			return Resolution{Entity: rule.Entity, Matched: true, Rule: rule.When}, nil
		}
	}

	return Resolution{}, nil
}
