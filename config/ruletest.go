package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RuleTest is the rule-test.yml fixture shape spec.md describes: a rule
// id plus source snippets that must NOT match (Valid) and snippets that
// MUST match (Invalid).
type RuleTest struct {
	ID      string   `yaml:"id"`
	Valid   []string `yaml:"valid,omitempty"`
	Invalid []string `yaml:"invalid,omitempty"`
}

// LoadRuleTest parses a single rule-test.yml file.
func LoadRuleTest(path string) (*RuleTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: "CannotReadConfig", Path: path, Err: err}
	}
	var rt RuleTest
	if err := yaml.Unmarshal(data, &rt); err != nil {
		return nil, &Error{Kind: "CannotParseConfig", Path: path, Err: err}
	}
	return &rt, nil
}

// WriteNewRuleTest scaffolds a fresh rule-test.yml (the `new test`
// operation), refusing to clobber an existing file.
func WriteNewRuleTest(path string, rt *RuleTest) error {
	if _, err := os.Stat(path); err == nil {
		return &Error{Kind: "FileAlreadyExists", Path: path}
	}
	data, err := yaml.Marshal(rt)
	if err != nil {
		return &Error{Kind: "CannotParseConfig", Path: path, Err: err}
	}
	return os.WriteFile(path, data, 0o644)
}
