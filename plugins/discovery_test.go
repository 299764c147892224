package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"predicator/internal/config"
	"predicator/internal/cookbook"
)

func writeRulebook(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRegisterRulebooks(t *testing.T) {
	projectDir := t.TempDir()
	if err := config.InitDir(projectDir); err != nil {
		t.Fatalf("init project: %v", err)
	}
	cfg, err := config.Load(projectDir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	rulebookDir := cfg.RulebookDirs()[0]
	writeRulebook(t, rulebookDir, "age.yaml", sampleRulebook)
	writeRulebook(t, rulebookDir, "checks.go", goRulebookSource)

	cb := cookbook.New()
	if err := RegisterRulebooks(cb, cfg); err != nil {
		t.Fatalf("register rulebooks: %v", err)
	}
	// One YAML rule plus two Go rules; one recipe from each file.
	if len(cb.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(cb.Rules))
	}
	if len(cb.Recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(cb.Recipes))
	}
}

func TestRegisterRulebooksDuplicateNamesKeepFirst(t *testing.T) {
	dir := t.TempDir()
	writeRulebook(t, dir, "a.yaml", `recipes:
  - name: dough
    requires: [flour]
    expr: func(flour string) string { return flour }
`)
	writeRulebook(t, dir, "b.yaml", `recipes:
  - name: dough
    requires: [magic]
    expr: func(magic string) string { return magic }
`)
	cb := cookbook.New()
	if err := RegisterRulebookDir(cb, dir); err != nil {
		t.Fatalf("register rulebooks: %v", err)
	}
	recipe, err := cb.RecipeFor("dough")
	if err != nil {
		t.Fatalf("RecipeFor: %v", err)
	}
	// a.yaml sorts before b.yaml, so its declaration shadows the second.
	if got := recipe.Requires(); len(got) != 1 || got[0] != "flour" {
		t.Fatalf("expected the first registered dough recipe, got %v", got)
	}
}

func TestRegisterRulebooksResolvesMissingInputs(t *testing.T) {
	dir := t.TempDir()
	writeRulebook(t, dir, "age.yaml", sampleRulebook)
	cb := cookbook.New()
	if err := RegisterRulebookDir(cb, dir); err != nil {
		t.Fatalf("register rulebooks: %v", err)
	}
	missing, err := cb.MissingInputs()
	if err != nil {
		t.Fatalf("MissingInputs: %v", err)
	}
	// fresh_enough needs age (cooked from now and born) and max_age.
	for _, name := range []string{"born", "max_age", "now"} {
		if _, ok := missing[name]; !ok {
			t.Fatalf("expected %s to be missing: %v", name, missing)
		}
	}
	if _, ok := missing["age"]; ok {
		t.Fatalf("age has a recipe and should not be missing: %v", missing)
	}
}

func TestRegisterRulebooksNilArgs(t *testing.T) {
	if err := RegisterRulebooks(nil, nil); err != nil {
		t.Fatalf("nil args should be a no-op: %v", err)
	}
}
