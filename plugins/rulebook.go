// plugins/rulebook.go
//
// Declarative rulebooks. A rulebook file declares named rules and recipes
// together with the inputs they require; the predicate bodies themselves are
// Go code evaluated with yaegi. Rulebooks are the explicit registration
// surface for the cookbook: whatever a rulebook declares is a rule or
// recipe, nothing is inferred from where code happens to live.

package plugins

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"predicator/internal/rule"
)

// Declaration describes one rule or recipe entry inside a rulebook.
//
// The struct mirrors the on-disk schema under .predicator/rulebooks/*.yaml
// and is intentionally narrow so a rulebook can be validated before its
// expressions are ever compiled.
type Declaration struct {
	Name     string   `json:"name" yaml:"name"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
	Expr     string   `json:"expr" yaml:"expr"`
}

// Normalized returns a trimmed copy of the declaration. Requires entries
// keep their declared order; duplicates are left alone, the resolver treats
// the list as a set.
func (d Declaration) Normalized() Declaration {
	clone := Declaration{
		Name: strings.TrimSpace(d.Name),
		Expr: strings.TrimSpace(d.Expr),
	}
	if len(d.Requires) > 0 {
		clone.Requires = make([]string, 0, len(d.Requires))
		for _, name := range d.Requires {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				continue
			}
			clone.Requires = append(clone.Requires, trimmed)
		}
	}
	return clone
}

// Validate ensures the declaration is well-formed.
func (d Declaration) Validate() error {
	normalized := d.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("rulebook: name is required")
	}
	if normalized.Expr == "" {
		return fmt.Errorf("rulebook %s: expr is required", normalized.Name)
	}
	return nil
}

// compile evaluates the declaration's expression and checks that it is a
// function whose arity matches the declared requirements.
func (d Declaration) compile() (any, error) {
	normalized := d.Normalized()
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("rulebook %s: interpreter: %w", normalized.Name, err)
	}
	// yaegi drops a bare top-level function literal; parenthesize the expr
	// so it is evaluated as an expression and its value is returned.
	v, err := i.Eval("(" + normalized.Expr + ")")
	if err != nil {
		return nil, fmt.Errorf("rulebook %s: compile expr: %w", normalized.Name, err)
	}
	// yaegi hands back a bare function literal wrapped in pointer and
	// interface layers (e.g. *interface{} holding the func); unwrap them.
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("rulebook %s: expr must be a function literal", normalized.Name)
	}
	if got, want := v.Type().NumIn(), len(normalized.Requires); got != want {
		return nil, fmt.Errorf("rulebook %s: expr takes %d arguments but requires %d inputs", normalized.Name, got, want)
	}
	return v.Interface(), nil
}

// buildRule compiles the declaration into a predicate declaration.
func (d Declaration) buildRule() (*rule.Rule, error) {
	normalized := d.Normalized()
	unit, err := normalized.compile()
	if err != nil {
		return nil, err
	}
	return rule.NewRule(unit, rule.WithName(normalized.Name), rule.Requires(normalized.Requires...))
}

// buildRecipe compiles the declaration into a value-producing declaration.
func (d Declaration) buildRecipe() (*rule.Recipe, error) {
	normalized := d.Normalized()
	unit, err := normalized.compile()
	if err != nil {
		return nil, err
	}
	return rule.NewRecipe(unit, rule.WithName(normalized.Name), rule.Requires(normalized.Requires...))
}

// RulebookFile pairs the rules and recipes loaded from one source file with
// its on-disk location.
type RulebookFile struct {
	Rules   []*rule.Rule
	Recipes []*rule.Recipe
	Path    string
}
