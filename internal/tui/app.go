// internal/tui/app.go
//
// Interactive cookbook inspector. It uses bubbletea, which follows The Elm
// Architecture: the App model holds all state, Update reacts to messages,
// and View renders the current state to a string.
//
// The inspector is read-only: the cookbook is resolved once at startup and
// the view just lets the user browse rules and see how each required input
// is satisfied.

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"predicator/internal/cookbook"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	suppliedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAF5F"))
	recipeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F87D7"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Padding(1, 1, 0, 1)
)

// ruleItem implements list.Item for the rule browser.
type ruleItem struct {
	name     string
	requires []string
}

func (i ruleItem) Title() string { return i.name }
func (i ruleItem) Description() string {
	if len(i.requires) == 0 {
		return "requires nothing"
	}
	return "requires " + strings.Join(i.requires, ", ")
}
func (i ruleItem) FilterValue() string { return i.name }

// App is the inspector model. It holds the resolved snapshot plus the list
// component state.
type App struct {
	book    *cookbook.Cookbook
	primary map[string]struct{}

	rules   list.Model
	missing []string
	cycle   error

	width  int
	height int
}

// NewApp resolves the cookbook once and builds the browser around the
// result. A cycle error is shown instead of the missing-input summary.
func NewApp(book *cookbook.Cookbook, primary []string) *App {
	items := make([]list.Item, 0, len(book.Rules))
	for _, r := range book.Rules {
		items = append(items, ruleItem{name: r.Name(), requires: r.Requires()})
	}
	rules := list.New(items, list.NewDefaultDelegate(), 0, 0)
	rules.Title = "⬡ COOKBOOK"
	rules.SetShowStatusBar(false)
	rules.SetFilteringEnabled(false)

	app := &App{
		book:    book,
		primary: make(map[string]struct{}, len(primary)),
		rules:   rules,
	}
	for _, name := range primary {
		app.primary[name] = struct{}{}
	}
	missing, err := book.MissingInputs(primary...)
	if err != nil {
		app.cycle = err
		return app
	}
	for name := range missing {
		app.missing = append(app.missing, name)
	}
	sort.Strings(app.missing)
	return app
}

// Init is called once when the program starts. The snapshot is already
// resolved, so there is nothing to kick off.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.rules.SetSize(max(20, msg.Width/2-4), max(5, msg.Height-8))
		return a, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return a, tea.Quit
		}
	}
	var cmd tea.Cmd
	a.rules, cmd = a.rules.Update(msg)
	return a, cmd
}

// View renders the rule browser next to the detail pane for the highlighted
// rule, with the cookbook-wide summary underneath.
func (a *App) View() string {
	header := headerStyle.Render("predicator · cookbook inspector")
	left := a.rules.View()
	right := detailBoxStyle.Width(max(24, a.width/2-4)).Render(a.detailView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footerStyle.Render(a.summaryView()))
}

func (a *App) detailView() string {
	item, ok := a.rules.SelectedItem().(ruleItem)
	if !ok {
		return "No rules registered."
	}
	lines := []string{fmt.Sprintf("Rule: %s", item.name)}
	if len(item.requires) == 0 {
		lines = append(lines, "Requires nothing.")
		return strings.Join(lines, "\n")
	}
	for _, name := range item.requires {
		lines = append(lines, fmt.Sprintf("  %s %s", a.inputBadge(name), name))
	}
	return strings.Join(lines, "\n")
}

// inputBadge says how one required input gets satisfied.
func (a *App) inputBadge(name string) string {
	if _, ok := a.primary[name]; ok {
		return suppliedStyle.Render("supplied")
	}
	if recipe, err := a.book.RecipeFor(name); err == nil {
		return recipeStyle.Render("recipe " + recipe.Name())
	}
	return missingStyle.Render("missing")
}

func (a *App) summaryView() string {
	if a.cycle != nil {
		return missingStyle.Render(a.cycle.Error()) + "\n(q to quit)"
	}
	if len(a.missing) == 0 {
		return "All requirements satisfied. (q to quit)"
	}
	return fmt.Sprintf("Missing inputs: %s (q to quit)", strings.Join(a.missing, ", "))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
