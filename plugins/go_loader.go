// plugins/go_loader.go
//
// Go rulebooks: .predicator/rulebooks/*.go files interpreted with yaegi.
// Every function declared at the top level of the file becomes a rule: the
// file is the registration boundary, so imported callables and type
// declarations never qualify. Parameter names, read from the source, become
// the declared requirements; a final variadic parameter contributes nothing.
// A declaration carrying a "predicator:recipe" comment directive is loaded
// as a recipe instead.

package plugins

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"predicator/internal/rule"
)

const recipeDirective = "predicator:recipe"

// LoadGoRulebookDir evaluates every .go file in dir and collects the rules
// and recipes its top-level functions declare. Results are sorted by path.
func LoadGoRulebookDir(dir string) ([]RulebookFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("rulebook: read %s: %w", trimmed, err)
	}
	var files []RulebookFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		file, err := loadGoRulebookFile(filepath.Join(trimmed, entry.Name()))
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

func loadGoRulebookFile(path string) (RulebookFile, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return RulebookFile{}, fmt.Errorf("rulebook: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return RulebookFile{}, fmt.Errorf("rulebook: %s is empty", path)
	}
	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, path, code, parser.ParseComments)
	if err != nil {
		return RulebookFile{}, fmt.Errorf("rulebook: parse %s: %w", path, err)
	}
	i := interp.New(interp.Options{})
	i.Use(stdlib.Symbols)
	if _, err := i.EvalPath(path); err != nil {
		return RulebookFile{}, fmt.Errorf("rulebook: interpret %s: %w", path, err)
	}
	file := RulebookFile{Path: filepath.Clean(path)}
	for _, decl := range parsed.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil {
			continue
		}
		name := fn.Name.Name
		// init and main are entrypoints for the interpreter, not predicates.
		if name == "init" || name == "main" {
			continue
		}
		unit, err := i.Eval(name)
		if err != nil {
			return RulebookFile{}, fmt.Errorf("rulebook: %s: lookup %s: %w", path, name, err)
		}
		requires := paramNames(fn.Type)
		if isRecipeDecl(fn) {
			built, err := rule.NewRecipe(unit.Interface(), rule.WithName(name), rule.Requires(requires...))
			if err != nil {
				return RulebookFile{}, fmt.Errorf("rulebook: %s: recipe %s: %w", path, name, err)
			}
			file.Recipes = append(file.Recipes, built)
			continue
		}
		built, err := rule.NewRule(unit.Interface(), rule.WithName(name), rule.Requires(requires...))
		if err != nil {
			return RulebookFile{}, fmt.Errorf("rulebook: %s: rule %s: %w", path, name, err)
		}
		file.Rules = append(file.Rules, built)
	}
	if len(file.Rules) == 0 && len(file.Recipes) == 0 {
		return RulebookFile{}, fmt.Errorf("rulebook: %s declares no functions", path)
	}
	return file, nil
}

// paramNames lists the function's parameter names in declaration order. The
// final variadic parameter, if any, contributes nothing.
func paramNames(fnType *ast.FuncType) []string {
	if fnType == nil || fnType.Params == nil {
		return nil
	}
	var names []string
	for _, field := range fnType.Params.List {
		if _, variadic := field.Type.(*ast.Ellipsis); variadic {
			continue
		}
		for _, ident := range field.Names {
			names = append(names, ident.Name)
		}
	}
	return names
}

func isRecipeDecl(fn *ast.FuncDecl) bool {
	if fn.Doc == nil {
		return false
	}
	for _, comment := range fn.Doc.List {
		if strings.Contains(comment.Text, recipeDirective) {
			return true
		}
	}
	return false
}
