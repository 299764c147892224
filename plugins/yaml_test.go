package plugins

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleRulebook = `rules:
  - name: fresh_enough
    requires: [age, max_age]
    expr: |
      func(age, max_age int) bool { return age <= max_age }
recipes:
  - name: age
    requires: [now, born]
    expr: |
      func(now, born int) int { return now - born }
`

func TestParseRulebookYAML(t *testing.T) {
	book, err := ParseRulebookYAML([]byte(sampleRulebook))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(book.Rules) != 1 || len(book.Recipes) != 1 {
		t.Fatalf("unexpected rulebook: %+v", book)
	}
	if book.Rules[0].Name != "fresh_enough" || book.Recipes[0].Name != "age" {
		t.Fatalf("unexpected names: %+v", book)
	}
}

func TestParseRulebookYAMLErrors(t *testing.T) {
	if _, err := ParseRulebookYAML([]byte("")); err == nil {
		t.Fatalf("expected empty payload to fail validation")
	}
	if _, err := ParseRulebookYAML([]byte("rules:\n  - requires: [a]\n    expr: func() bool { return true }\n")); err == nil {
		t.Fatalf("expected missing name to fail validation")
	}
}

func TestRulebookBuildCompilesExpressions(t *testing.T) {
	book, err := ParseRulebookYAML([]byte(sampleRulebook))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rules, recipes, err := book.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	verdict, err := rules[0].Invoke(3, 5)
	if err != nil {
		t.Fatalf("invoke rule: %v", err)
	}
	if !verdict {
		t.Fatalf("expected 3 <= 5")
	}
	value, err := recipes[0].Invoke(2020, 1990)
	if err != nil {
		t.Fatalf("invoke recipe: %v", err)
	}
	if value != 30 {
		t.Fatalf("expected cooked age 30, got %v", value)
	}
}

func TestDeclarationCompileAcceptsBareFunctionLiteral(t *testing.T) {
	// The interpreter returns a bare literal as a pointer to the func;
	// compile must see through that and hand back an invocable unit.
	decl := Declaration{
		Name:     "positive",
		Requires: []string{"n"},
		Expr:     "func(n int) bool { return n > 0 }",
	}
	unit, err := decl.compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	fn, ok := unit.(func(int) bool)
	if !ok {
		t.Fatalf("expected func(int) bool, got %T", unit)
	}
	if !fn(1) || fn(-1) {
		t.Fatalf("compiled predicate misbehaves")
	}
}

func TestDeclarationCompileRejectsNonFunction(t *testing.T) {
	decl := Declaration{Name: "scalar", Expr: "42"}
	if _, err := decl.compile(); err == nil {
		t.Fatalf("expected non-function expr to fail compile")
	}
}

func TestRulebookBuildRejectsArityMismatch(t *testing.T) {
	book := Rulebook{Rules: []Declaration{{
		Name:     "broken",
		Requires: []string{"a", "b"},
		Expr:     "func(a int) bool { return a > 0 }",
	}}}
	if _, _, err := book.Build(); err == nil {
		t.Fatalf("expected arity mismatch to fail build")
	}
}

func TestLoadRulebookDir(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "rulebook.yaml")
	if err := os.WriteFile(path, []byte(sampleRulebook), 0644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	files, err := LoadRulebookDir(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 rulebook, got %d", len(files))
	}
	if files[0].Path != path {
		t.Fatalf("expected path %s, got %s", path, files[0].Path)
	}
	if len(files[0].Rules) != 1 || files[0].Rules[0].Name() != "fresh_enough" {
		t.Fatalf("unexpected rules: %+v", files[0])
	}
}

func TestLoadRulebookDirMissing(t *testing.T) {
	files, err := LoadRulebookDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if files != nil {
		t.Fatalf("expected no rulebooks, got %v", files)
	}
}
