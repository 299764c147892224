// plugins/yaml.go
//
// YAML rulebooks: .predicator/rulebooks/*.yaml files declaring rules and
// recipes with explicit requirement lists and yaegi-compiled expressions.

package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"predicator/internal/rule"
)

// Rulebook models one YAML rulebook document.
type Rulebook struct {
	Rules   []Declaration `json:"rules,omitempty" yaml:"rules,omitempty"`
	Recipes []Declaration `json:"recipes,omitempty" yaml:"recipes,omitempty"`
}

// ParseRulebookYAML decodes and validates a single rulebook payload.
func ParseRulebookYAML(data []byte) (Rulebook, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Rulebook{}, fmt.Errorf("rulebook: payload is empty")
	}
	var book Rulebook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return Rulebook{}, fmt.Errorf("rulebook: decode: %w", err)
	}
	if len(book.Rules) == 0 && len(book.Recipes) == 0 {
		return Rulebook{}, fmt.Errorf("rulebook: no rules or recipes declared")
	}
	for idx, decl := range book.Rules {
		if err := decl.Validate(); err != nil {
			return Rulebook{}, fmt.Errorf("rules[%d]: %w", idx, err)
		}
		book.Rules[idx] = decl.Normalized()
	}
	for idx, decl := range book.Recipes {
		if err := decl.Validate(); err != nil {
			return Rulebook{}, fmt.Errorf("recipes[%d]: %w", idx, err)
		}
		book.Recipes[idx] = decl.Normalized()
	}
	return book, nil
}

// Build compiles every declaration in the rulebook, keeping declaration order.
func (b Rulebook) Build() ([]*rule.Rule, []*rule.Recipe, error) {
	var rules []*rule.Rule
	for idx, decl := range b.Rules {
		built, err := decl.buildRule()
		if err != nil {
			return nil, nil, fmt.Errorf("rules[%d]: %w", idx, err)
		}
		rules = append(rules, built)
	}
	var recipes []*rule.Recipe
	for idx, decl := range b.Recipes {
		built, err := decl.buildRecipe()
		if err != nil {
			return nil, nil, fmt.Errorf("recipes[%d]: %w", idx, err)
		}
		recipes = append(recipes, built)
	}
	return rules, recipes, nil
}

// LoadRulebookFile reads a YAML rulebook from disk and compiles it.
func LoadRulebookFile(path string) (RulebookFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return RulebookFile{}, fmt.Errorf("rulebook: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return RulebookFile{}, fmt.Errorf("rulebook: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RulebookFile{}, fmt.Errorf("rulebook: read %s: %w", path, err)
	}
	book, err := ParseRulebookYAML(data)
	if err != nil {
		return RulebookFile{}, fmt.Errorf("rulebook: %s: %w", path, err)
	}
	rules, recipes, err := book.Build()
	if err != nil {
		return RulebookFile{}, fmt.Errorf("rulebook: %s: %w", path, err)
	}
	return RulebookFile{Rules: rules, Recipes: recipes, Path: filepath.Clean(path)}, nil
}

// LoadRulebookDir scans a directory for *.yaml rulebooks and returns them
// sorted by path. Missing directories are treated as "no rulebooks" to
// simplify startup.
func LoadRulebookDir(dir string) ([]RulebookFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("rulebook: read %s: %w", trimmed, err)
	}
	var files []RulebookFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isYAMLFile(name) {
			continue
		}
		file, err := LoadRulebookFile(filepath.Join(trimmed, name))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
