// plugins/discovery.go
//
// Rulebook discovery: scans the project's configured rulebook directories
// and appends everything they declare to a cookbook. Registration order is
// stable (directories as configured, files sorted by path, declarations in
// file order), which is what gives duplicate recipe names their
// first-registered-wins behavior.

package plugins

import (
	"predicator/internal/config"
	"predicator/internal/cookbook"
)

// RegisterRulebooks discovers YAML and Go rulebooks in the project's
// rulebook directories and appends their rules and recipes to the cookbook.
func RegisterRulebooks(cb *cookbook.Cookbook, cfg *config.Config) error {
	if cb == nil || cfg == nil {
		return nil
	}
	for _, dir := range cfg.RulebookDirs() {
		if err := RegisterRulebookDir(cb, dir); err != nil {
			return err
		}
	}
	return nil
}

// RegisterRulebookDir appends every rulebook found directly under dir.
func RegisterRulebookDir(cb *cookbook.Cookbook, dir string) error {
	files, err := loadAllRulebookFiles(dir)
	if err != nil {
		return err
	}
	for _, file := range files {
		for _, r := range file.Rules {
			cb.AddRule(r)
		}
		for _, r := range file.Recipes {
			cb.AddRecipe(r)
		}
	}
	return nil
}

func loadAllRulebookFiles(dir string) ([]RulebookFile, error) {
	yamlFiles, err := LoadRulebookDir(dir)
	if err != nil {
		return nil, err
	}
	goFiles, err := LoadGoRulebookDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlFiles, goFiles...), nil
}
