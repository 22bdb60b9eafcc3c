// Package config loads an sgconfig.yml project file and the rule YAML
// files it references, the way the teacher's godotenv-based setup loads
// .env at startup: a small, explicit, fail-fast parse step with errors
// typed so the CLI can map them to exit codes (spec.md §6 "project
// config"). Rule YAML itself follows the {id, language, rule, fix, ...}
// shape rule.Config defines, grounded on the teacher's fixer_v2.Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/oxhq/sg/rule"
)

// Error is the taxonomy spec.md §7 calls for project/rule configuration
// problems, each wrapping the underlying cause via Unwrap.
type Error struct {
	Kind string // CannotReadConfig | CannotParseConfig | GlobPattern | FileAlreadyExists | ProjectAlreadyExists | ProjectNotFound
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Project is the on-disk sgconfig.yml shape.
type Project struct {
	RuleDirs    []string      `yaml:"ruleDirs"`
	TestConfigs []TestConfig  `yaml:"testConfigs,omitempty"`
	UtilDirs    []string      `yaml:"utilDirs,omitempty"`
	Language    string        `yaml:"language,omitempty"`
	Include     []string      `yaml:"include,omitempty"`
	Exclude     []string      `yaml:"exclude,omitempty"`
}

// TestConfig is one entry of sgconfig.yml's testConfigs list: where a
// project's rule-test.yml fixtures live, and optionally where their
// fixed-output snapshots are recorded.
type TestConfig struct {
	TestDir     string `yaml:"testDir"`
	SnapshotDir string `yaml:"snapshotDir,omitempty"`
}

const projectFileName = "sgconfig.yml"

// LoadProject reads and parses dir/sgconfig.yml.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, projectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Kind: "ProjectNotFound", Path: path, Err: err}
		}
		return nil, &Error{Kind: "CannotReadConfig", Path: path, Err: err}
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, &Error{Kind: "CannotParseConfig", Path: path, Err: err}
	}
	return &p, nil
}

// InitProject writes a fresh sgconfig.yml, refusing to overwrite one that
// already exists (spec.md's "new project" operation).
func InitProject(dir string, p *Project) error {
	path := filepath.Join(dir, projectFileName)
	if _, err := os.Stat(path); err == nil {
		return &Error{Kind: "ProjectAlreadyExists", Path: path}
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return &Error{Kind: "CannotParseConfig", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &Error{Kind: "CannotReadConfig", Path: path, Err: err}
	}
	return nil
}

// LoadRules resolves every glob in ruleDirs (relative to root) to a rule
// YAML file and parses each into a rule.Config.
func LoadRules(root string, ruleDirs []string) ([]*rule.Config, error) {
	var out []*rule.Config
	for _, pattern := range ruleDirs {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern, "**/*.yml"))
		if err != nil {
			return nil, &Error{Kind: "GlobPattern", Path: pattern, Err: err}
		}
		for _, path := range matches {
			cfg, err := LoadRuleFile(path)
			if err != nil {
				return nil, err
			}
			out = append(out, cfg)
		}
	}
	return out, nil
}

// LoadRuleFile parses a single rule YAML file.
func LoadRuleFile(path string) (*rule.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: "CannotReadConfig", Path: path, Err: err}
	}
	var cfg rule.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Kind: "CannotParseConfig", Path: path, Err: err}
	}
	return &cfg, nil
}

// WriteNewRuleFile scaffolds a new rule YAML file (spec.md's "new rule"
// operation), refusing to clobber an existing file.
func WriteNewRuleFile(path string, cfg *rule.Config) error {
	if _, err := os.Stat(path); err == nil {
		return &Error{Kind: "FileAlreadyExists", Path: path}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return &Error{Kind: "CannotParseConfig", Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &Error{Kind: "CannotReadConfig", Path: path, Err: err}
	}
	return os.WriteFile(path, data, 0o644)
}
