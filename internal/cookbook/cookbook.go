// internal/cookbook/cookbook.go
//
// The Cookbook is the registry the resolver reads: an ordered list of rules
// (predicates to satisfy) and an ordered list of recipes (ways to produce a
// named input from other named inputs). Registration order matters: when two
// recipes share a name, the first one registered is the one that cooks.

package cookbook

import (
	"errors"
	"fmt"
	"strings"

	"predicator/internal/rule"
)

var (
	// ErrRecipeNotFound indicates no registered recipe produces the
	// requested input name.
	ErrRecipeNotFound = errors.New("cookbook: recipe not found")
	// ErrCyclicDependency indicates the recipes needed to satisfy the
	// rules depend on each other in a loop.
	ErrCyclicDependency = errors.New("cookbook: cyclic recipe dependency")
	// ErrMissingInputs indicates cooking was attempted while required
	// inputs still have no recipe and no supplied value.
	ErrMissingInputs = errors.New("cookbook: missing inputs")
)

// CycleError reports the loop found among the recipes actually needed to
// satisfy the rules. Cycle holds the recipe names in walk order; the last
// entry repeats the first to close the loop.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cookbook: cyclic recipe dependency: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap lets callers match the error with errors.Is(err, ErrCyclicDependency).
func (e *CycleError) Unwrap() error {
	return ErrCyclicDependency
}

// Cookbook holds the rules to satisfy and the recipes available to satisfy
// them. The slices are exported so callers can append directly; the Add
// helpers do the same with nil-safety.
//
// A Cookbook is built single-threaded and then resolved: resolution never
// mutates it, and callers must not mutate the lists while a resolution is
// in progress. No internal locking is provided.
type Cookbook struct {
	Rules   []*rule.Rule
	Recipes []*rule.Recipe
}

// New returns an empty cookbook.
func New() *Cookbook {
	return &Cookbook{}
}

// NewWith returns a cookbook pre-populated with the given rules and recipes,
// keeping their order.
func NewWith(rules []*rule.Rule, recipes []*rule.Recipe) *Cookbook {
	return &Cookbook{
		Rules:   append([]*rule.Rule{}, rules...),
		Recipes: append([]*rule.Recipe{}, recipes...),
	}
}

// AddRule appends a rule to the cookbook.
func (c *Cookbook) AddRule(r *rule.Rule) {
	if r == nil {
		return
	}
	c.Rules = append(c.Rules, r)
}

// AddRecipe appends a recipe to the cookbook. Recipes registered earlier
// shadow later ones with the same name.
func (c *Cookbook) AddRecipe(r *rule.Recipe) {
	if r == nil {
		return
	}
	c.Recipes = append(c.Recipes, r)
}

// RecipeFor returns the first recipe, in registration order, that produces
// the named input.
func (c *Cookbook) RecipeFor(name string) (*rule.Recipe, error) {
	for _, recipe := range c.Recipes {
		if recipe.Name() == name {
			return recipe, nil
		}
	}
	return nil, fmt.Errorf("%w: no recipe for %s", ErrRecipeNotFound, name)
}

func (c *Cookbook) hasRecipe(name string) bool {
	for _, recipe := range c.Recipes {
		if recipe.Name() == name {
			return true
		}
	}
	return false
}

// Required returns the union of every rule's declared inputs.
func (c *Cookbook) Required() map[string]struct{} {
	required := make(map[string]struct{})
	for _, r := range c.Rules {
		for _, name := range r.Requires() {
			required[name] = struct{}{}
		}
	}
	return required
}
