// internal/config/config.go
//
// This package handles configuration and the .predicator directory structure.
// Every project that uses predicator gets a .predicator/ folder in its root:
//
// .predicator/
// ├── config.yaml   <- project configuration
// ├── rulebooks/    <- YAML and Go rulebook files
// └── logs/         <- resolution activity log

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PredicatorDir is the name of the directory created in each project.
const PredicatorDir = ".predicator"

const defaultConfigYAML = `# predicator project configuration
version: 1

# Directories scanned for rulebooks, relative to .predicator/.
rulebook_dirs:
  - rulebooks

# Inputs supplied by the caller at resolution time. These are never cooked
# by a recipe and never reported as missing.
primary_inputs: []
`

// ProjectConfig models .predicator/config.yaml.
type ProjectConfig struct {
	Version       int      `yaml:"version"`
	RulebookDirs  []string `yaml:"rulebook_dirs"`
	PrimaryInputs []string `yaml:"primary_inputs"`
}

// Config holds the runtime configuration for predicator.
type Config struct {
	// ProjectDir is the directory the CLI was pointed at.
	ProjectDir string

	// PredicatorProjectDir is ProjectDir/.predicator.
	PredicatorProjectDir string

	Project ProjectConfig
}

// InitDir creates the .predicator directory structure in the given project
// directory and seeds config.yaml when it does not exist yet.
func InitDir(projectDir string) error {
	predicatorDir := filepath.Join(projectDir, PredicatorDir)
	dirs := []string{
		filepath.Join(predicatorDir, "rulebooks"),
		filepath.Join(predicatorDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: ensure %s: %w", dir, err)
		}
	}
	return ensureProjectConfig(filepath.Join(predicatorDir, "config.yaml"))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("config: seed %s: %w", path, err)
	}
	return nil
}

// Load reads the project configuration, applying defaults when the file is
// absent or partially filled in.
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:           projectDir,
		PredicatorProjectDir: filepath.Join(projectDir, PredicatorDir),
		Project:              defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location for the project config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.PredicatorProjectDir, "config.yaml")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.PredicatorProjectDir, "logs")
}

// RulebookDirs returns the configured rulebook directories as absolute paths
// rooted in the .predicator directory.
func (c *Config) RulebookDirs() []string {
	dirs := make([]string, 0, len(c.Project.RulebookDirs))
	for _, dir := range c.Project.RulebookDirs {
		if filepath.IsAbs(dir) {
			dirs = append(dirs, dir)
			continue
		}
		dirs = append(dirs, filepath.Join(c.PredicatorProjectDir, dir))
	}
	return dirs
}

// PrimaryInputs returns the input names the project declares as supplied by
// the caller.
func (c *Config) PrimaryInputs() []string {
	return append([]string{}, c.Project.PrimaryInputs...)
}

func (c *Config) loadProjectConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:      1,
		RulebookDirs: []string{"rulebooks"},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if len(pc.RulebookDirs) == 0 {
		pc.RulebookDirs = []string{"rulebooks"}
	}
}

func (pc *ProjectConfig) normalize() {
	dirs := pc.RulebookDirs[:0]
	for _, dir := range pc.RulebookDirs {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		dirs = append(dirs, trimmed)
	}
	pc.RulebookDirs = dirs
	inputs := pc.PrimaryInputs[:0]
	for _, name := range pc.PrimaryInputs {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		inputs = append(inputs, trimmed)
	}
	pc.PrimaryInputs = inputs
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if len(pc.RulebookDirs) == 0 {
		return fmt.Errorf("at least one rulebook dir is required")
	}
	return nil
}
