// internal/cookbook/cook.go
//
// Once resolution says nothing is missing, the cookbook can actually cook:
// used recipes are invoked dependencies-first to materialize every derivable
// input, then each rule is asked for its verdict.

package cookbook

import (
	"fmt"
	"sort"
	"strings"
)

// Verdict is one rule's answer for a cooked set of inputs. Rule names are
// not unique, so verdicts are reported as an ordered list rather than a map.
type Verdict struct {
	Rule      string
	Satisfied bool
}

// Cook materializes every input derivable from the supplied primary values.
// The keys of values act as the primary input set; recipes for those names
// are ignored. Fails wrapping ErrMissingInputs when names remain that have
// neither a value nor a recipe, and with *CycleError on a recipe loop.
func (c *Cookbook) Cook(values map[string]any) (map[string]any, error) {
	primary := make([]string, 0, len(values))
	for name := range values {
		primary = append(primary, name)
	}
	missing, err := c.MissingInputs(primary...)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingInputs, joinSorted(missing))
	}
	used, err := c.UsedRecipes(primary...)
	if err != nil {
		return nil, err
	}
	cooked := make(map[string]any, len(values)+len(used))
	for name, value := range values {
		cooked[name] = value
	}
	for _, recipe := range used {
		requires := recipe.Requires()
		args := make([]any, len(requires))
		for i, dep := range requires {
			args[i] = cooked[dep]
		}
		value, err := recipe.Invoke(args...)
		if err != nil {
			return nil, fmt.Errorf("cookbook: cook %s: %w", recipe.Name(), err)
		}
		cooked[recipe.Name()] = value
	}
	return cooked, nil
}

// Check cooks the supplied values and then invokes every rule with its
// declared inputs, in registration order. Invocation failures, including a
// rule answering with a non-boolean, abort the check.
func (c *Cookbook) Check(values map[string]any) ([]Verdict, error) {
	cooked, err := c.Cook(values)
	if err != nil {
		return nil, err
	}
	verdicts := make([]Verdict, 0, len(c.Rules))
	for _, r := range c.Rules {
		requires := r.Requires()
		args := make([]any, len(requires))
		for i, dep := range requires {
			args[i] = cooked[dep]
		}
		satisfied, err := r.Invoke(args...)
		if err != nil {
			return nil, fmt.Errorf("cookbook: check %s: %w", r.Name(), err)
		}
		verdicts = append(verdicts, Verdict{Rule: r.Name(), Satisfied: satisfied})
	}
	return verdicts, nil
}

func joinSorted(set map[string]struct{}) string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
