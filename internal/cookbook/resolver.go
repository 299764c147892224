// internal/cookbook/resolver.go
//
// The dependency resolver. Input names are graph nodes; a non-primary name
// points at the requirements of the first recipe that produces it. Starting
// from the rules' requirements the resolver walks that graph once, collects
// the recipes actually needed ("used"), rejects loops among them, and
// reports every reachable name that neither has a recipe nor was supplied
// by the caller.

package cookbook

import (
	"sort"

	"predicator/internal/rule"
)

// MissingInputs computes which input names must still be supplied
// externally so that every rule's requirements are met, directly or through
// registered recipes. Names listed as primary are taken as already supplied:
// they are excluded from recipe lookup, from traversal, and from the result.
//
// The returned set is unordered. If the recipes needed to satisfy the rules
// form a loop, a *CycleError is returned instead; loops among recipes the
// rules never reach are ignored.
func (c *Cookbook) MissingInputs(primary ...string) (map[string]struct{}, error) {
	used, err := c.resolve(toSet(primary))
	if err != nil {
		return nil, err
	}
	primarySet := toSet(primary)
	missing := make(map[string]struct{})
	consider := func(name string) {
		if _, supplied := primarySet[name]; supplied {
			return
		}
		if c.hasRecipe(name) {
			return
		}
		missing[name] = struct{}{}
	}
	for name := range c.Required() {
		consider(name)
	}
	for _, recipe := range used {
		for _, name := range recipe.Requires() {
			consider(name)
		}
	}
	return missing, nil
}

// UsedRecipes returns the recipes reachable from the rules' requirements,
// dependencies before dependents, so they can be invoked in order. The same
// cycle check as MissingInputs applies.
func (c *Cookbook) UsedRecipes(primary ...string) ([]*rule.Recipe, error) {
	return c.resolve(toSet(primary))
}

// resolve walks the requirement graph from the rules' root requirements.
// Roots are visited in sorted order and each recipe's requirements in
// declared order, so the walk and any cycle it reports are reproducible
// for identical cookbook state.
func (c *Cookbook) resolve(primary map[string]struct{}) ([]*rule.Recipe, error) {
	walker := &walker{
		cookbook: c,
		primary:  primary,
		done:     make(map[*rule.Recipe]bool),
		onPath:   make(map[*rule.Recipe]bool),
	}
	roots := make([]string, 0, len(c.Required()))
	for name := range c.Required() {
		roots = append(roots, name)
	}
	sort.Strings(roots)
	for _, name := range roots {
		if err := walker.walk(name); err != nil {
			return nil, err
		}
	}
	return walker.used, nil
}

type walker struct {
	cookbook *Cookbook
	primary  map[string]struct{}
	done     map[*rule.Recipe]bool
	onPath   map[*rule.Recipe]bool
	path     []*rule.Recipe
	used     []*rule.Recipe
}

func (w *walker) walk(name string) error {
	if _, supplied := w.primary[name]; supplied {
		return nil
	}
	recipe, err := w.cookbook.RecipeFor(name)
	if err != nil {
		// No recipe: the branch ends here and the name surfaces in
		// the missing-input set instead.
		return nil
	}
	if w.onPath[recipe] {
		return w.cycleError(recipe)
	}
	if w.done[recipe] {
		return nil
	}
	w.onPath[recipe] = true
	w.path = append(w.path, recipe)
	for _, dep := range recipe.Requires() {
		if err := w.walk(dep); err != nil {
			return err
		}
	}
	w.path = w.path[:len(w.path)-1]
	delete(w.onPath, recipe)
	w.done[recipe] = true
	w.used = append(w.used, recipe)
	return nil
}

func (w *walker) cycleError(repeat *rule.Recipe) error {
	start := 0
	for i, recipe := range w.path {
		if recipe == repeat {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(w.path)-start+1)
	for _, recipe := range w.path[start:] {
		cycle = append(cycle, recipe.Name())
	}
	cycle = append(cycle, repeat.Name())
	return &CycleError{Cycle: cycle}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
