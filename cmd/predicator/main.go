// cmd/predicator/main.go
//
// The predicator CLI. It loads the project's rulebooks into a cookbook and
// either reports the inputs still missing, evaluates the rules against
// supplied values, or opens the interactive inspector.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"predicator/internal/config"
	"predicator/internal/cookbook"
	"predicator/internal/logging"
	"predicator/internal/tui"
	"predicator/plugins"
)

func main() {
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	check := flag.Bool("check", false, "cook the supplied values and print each rule's verdict")
	inspect := flag.Bool("inspect", false, "open the interactive cookbook inspector")
	inputs := stringListFlag{}
	flag.Var(&inputs, "input", "input name supplied by the caller (repeatable)")
	values := keyValueFlag{}
	flag.Var(&values, "set", "input value for --check (key=value, repeatable)")
	flag.Parse()

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitDir(absoluteProject); err != nil {
		die("init .predicator: %v", err)
	}
	cfg, err := config.Load(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}
	logger, err := logging.New(absoluteProject)
	if err != nil {
		die("open log: %v", err)
	}
	defer logger.Close()

	book := cookbook.New()
	if err := plugins.RegisterRulebooks(book, cfg); err != nil {
		die("load rulebooks: %v", err)
	}
	logger.RulebooksLoaded(len(book.Rules), len(book.Recipes))

	primary := append(cfg.PrimaryInputs(), inputs...)
	for name := range values {
		primary = append(primary, name)
	}

	switch {
	case *inspect:
		p := tea.NewProgram(tui.NewApp(book, primary), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			die("run inspector: %v", err)
		}
	case *check:
		runCheck(book, values, logger)
	default:
		runMissing(book, primary, logger)
	}
}

func runMissing(book *cookbook.Cookbook, primary []string, logger *logging.Logger) {
	missing, err := book.MissingInputs(primary...)
	if err != nil {
		logger.ResolutionFailed(err)
		die("resolve: %v", err)
	}
	if len(missing) == 0 {
		fmt.Println("All rule requirements can be satisfied.")
		logger.ResolutionComplete(0)
		return
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("Missing inputs:")
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	logger.ResolutionComplete(len(names))
}

func runCheck(book *cookbook.Cookbook, values keyValueFlag, logger *logging.Logger) {
	supplied := make(map[string]any, len(values))
	for name, value := range values {
		supplied[name] = parseScalar(value)
	}
	verdicts, err := book.Check(supplied)
	if err != nil {
		logger.ResolutionFailed(err)
		die("check: %v", err)
	}
	failed := 0
	for _, verdict := range verdicts {
		mark := "PASS"
		if !verdict.Satisfied {
			mark = "FAIL"
			failed++
		}
		fmt.Printf("%s  %s\n", mark, verdict.Rule)
	}
	logger.CheckComplete(len(verdicts), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// parseScalar gives --set values their natural Go type so numeric and
// boolean predicates can consume them directly.
func parseScalar(value string) any {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type stringListFlag []string

func (s *stringListFlag) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringListFlag) Set(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("input name must not be empty")
	}
	*s = append(*s, trimmed)
	return nil
}

type keyValueFlag map[string]string

func (kv *keyValueFlag) String() string {
	if kv == nil || len(*kv) == 0 {
		return ""
	}
	var pairs []string
	for key, value := range *kv {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
	}
	return strings.Join(pairs, ", ")
}

func (kv *keyValueFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	if *kv == nil {
		*kv = keyValueFlag{}
	}
	(*kv)[strings.TrimSpace(parts[0])] = parts[1]
	return nil
}
