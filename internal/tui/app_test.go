package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"predicator/internal/cookbook"
	"predicator/internal/rule"
)

func inspectorFixture(t *testing.T) *cookbook.Cookbook {
	t.Helper()
	fresh, err := rule.NewRule(func() bool { return true }, rule.WithName("fresh_enough"), rule.Requires("age", "max_age"))
	if err != nil {
		t.Fatalf("build rule: %v", err)
	}
	age, err := rule.NewRecipe(func() any { return 0 }, rule.WithName("age"), rule.Requires("now", "born"))
	if err != nil {
		t.Fatalf("build recipe: %v", err)
	}
	cb := cookbook.New()
	cb.AddRule(fresh)
	cb.AddRecipe(age)
	return cb
}

func TestAppViewShowsRulesAndMissingInputs(t *testing.T) {
	app := NewApp(inspectorFixture(t), []string{"now"})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := model.(*App).View()

	if !strings.Contains(view, "fresh_enough") {
		t.Fatalf("expected rule name in view:\n%s", view)
	}
	if !strings.Contains(view, "Missing inputs: born, max_age") {
		t.Fatalf("expected missing input summary in view:\n%s", view)
	}
}

func TestAppViewShowsCycleError(t *testing.T) {
	cb := inspectorFixture(t)
	loop, err := rule.NewRecipe(func() any { return nil }, rule.WithName("max_age"), rule.Requires("max_age"))
	if err != nil {
		t.Fatalf("build recipe: %v", err)
	}
	cb.AddRecipe(loop)

	app := NewApp(cb, nil)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := model.(*App).View()
	if !strings.Contains(view, "cyclic recipe dependency") {
		t.Fatalf("expected cycle error in view:\n%s", view)
	}
}

func TestAppQuitsOnQ(t *testing.T) {
	app := NewApp(inspectorFixture(t), nil)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if msg := cmd(); msg == nil {
		t.Fatalf("expected quit message")
	}
}
