// Package rule binds a matcher, an optional transform pipeline, and an
// optional fix template into the single unit the scanner runs against a
// document, plus the YAML-facing configuration that produces one
// (spec.md §4.5 "RuleCore/RuleConfig"), grounded on the {name, pattern,
// replacement} shape the teacher's fixer_v2.FixRule uses.
package rule

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/fix"
	"github.com/oxhq/sg/matcher"
	"github.com/oxhq/sg/menv"
	"github.com/oxhq/sg/transform"
)

// Severity classifies how a rule's matches should be reported.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// Core is the compiled, ready-to-run form of a rule: a matcher plus the
// transform and fix stages that run once the matcher succeeds.
type Core struct {
	Matcher    matcher.Matcher
	Transforms []transform.Transform
	Fixer      *fix.Fixer
	Severity   Severity
	Message    string
}

// Match attempts Core's matcher against node, and on success runs every
// transform in dependency order before returning the final environment.
func (c *Core) Match(node *sitter.Node, source []byte) (*menv.Env, bool) {
	env, ok := c.Matcher.Match(node, source, menv.New())
	if !ok {
		return nil, false
	}
	ordered, err := transform.TopoSort(c.Transforms)
	if err != nil {
		return nil, false
	}
	for _, t := range ordered {
		if err := t.Apply(env, source); err != nil {
			return nil, false
		}
	}
	return env, true
}

// Config is a rule's on-disk, author-facing YAML representation
// (spec.md §4.5 "RuleConfig with metadata id/severity/language/message/
// note/fix/files/ignores/url"), before it has been compiled into a Core.
type Config struct {
	ID        string                   `yaml:"id"`
	Language  string                   `yaml:"language"`
	Severity  Severity                 `yaml:"severity,omitempty"`
	Message   string                   `yaml:"message,omitempty"`
	Note      string                   `yaml:"note,omitempty"`
	URL       string                   `yaml:"url,omitempty"`
	Files     []string                 `yaml:"files,omitempty"`
	Ignores   []string                 `yaml:"ignores,omitempty"`
	Rule      MatcherSpec              `yaml:"rule"`
	Fix       string                   `yaml:"fix,omitempty"`
	Transform map[string]TransformSpec `yaml:"transform,omitempty"`
	Utils     map[string]MatcherSpec   `yaml:"utils,omitempty"`
}

// MatcherSpec is the YAML shape of a matcher-algebra node: exactly one of
// its fields should be set, corresponding to one atomic/composite/
// relational matcher kind.
type MatcherSpec struct {
	Pattern        string        `yaml:"pattern,omitempty"`
	Selector       string        `yaml:"selector,omitempty"`
	Strictness     string        `yaml:"strictness,omitempty"`
	Kind           string        `yaml:"kind,omitempty"`
	Regex          string        `yaml:"regex,omitempty"`
	NthChild       *int          `yaml:"nthChild,omitempty"`
	NthChildOfKind string        `yaml:"nthChildOfKind,omitempty"`
	All            []MatcherSpec `yaml:"all,omitempty"`
	Any            []MatcherSpec `yaml:"any,omitempty"`
	Not            *MatcherSpec  `yaml:"not,omitempty"`
	Matches        string        `yaml:"matches,omitempty"`
	Inside         *RelationSpec `yaml:"inside,omitempty"`
	Has            *RelationSpec `yaml:"has,omitempty"`
	Precedes       *RelationSpec `yaml:"precedes,omitempty"`
	Follows        *RelationSpec `yaml:"follows,omitempty"`
}

// RelationSpec is the YAML shape shared by inside/has/precedes/follows.
type RelationSpec struct {
	MatcherSpec `yaml:",inline"`
	Field       string       `yaml:"field,omitempty"`
	Immediate   bool         `yaml:"immediate,omitempty"`
	Until       *MatcherSpec `yaml:"until,omitempty"`
}

// TransformSpec is the YAML shape of one named transform step
// (spec.md §4.6): exactly one operation field should be set.
type TransformSpec struct {
	Substring *SubstringSpec `yaml:"substring,omitempty"`
	Replace   *ReplaceSpec   `yaml:"replace,omitempty"`
	Convert   *ConvertSpec   `yaml:"convert,omitempty"`
	Rewrite   *RewriteSpec   `yaml:"rewrite,omitempty"`
}

type SubstringSpec struct {
	Source    string `yaml:"source"`
	StartChar *int   `yaml:"startChar,omitempty"`
	EndChar   *int   `yaml:"endChar,omitempty"`
}

type ReplaceSpec struct {
	Source  string `yaml:"source"`
	Replace string `yaml:"replace"`
	By      string `yaml:"by"`
}

type ConvertSpec struct {
	Source      string   `yaml:"source"`
	ToCase      string   `yaml:"toCase"`
	SeparatedBy []string `yaml:"separatedBy,omitempty"`
}

type RewriteSpec struct {
	Source    string   `yaml:"source"`
	Rewriters []string `yaml:"rewriters"`
	JoinBy    string   `yaml:"joinBy,omitempty"`
}

// Validate checks the structural invariants spec.md §4.5 calls out:
// every rule needs a positive (non-Not-rooted) matcher, and referenced
// utils must exist and not be mutually cyclic. Fix is not checked: a
// template reference to a metavariable the matcher never binds renders as
// empty text (see fix.Fixer.Generate).
func (c *Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("rule: missing id")
	}
	if c.Language == "" {
		return fmt.Errorf("rule %s: missing language", c.ID)
	}
	positive := c.Rule
	positive.Not = nil
	if isEmptyMatcherSpec(positive) {
		return fmt.Errorf("rule %s: missing positive matcher", c.ID)
	}
	refs := referencedUtils(c.Rule)
	for _, u := range c.Utils {
		refs = append(refs, referencedUtils(u)...)
	}
	for _, ref := range refs {
		if _, ok := c.Utils[ref]; !ok {
			return fmt.Errorf("rule %s: undefined util %q", c.ID, ref)
		}
	}
	if err := checkUtilCycles(c.Utils); err != nil {
		return fmt.Errorf("rule %s: %w", c.ID, err)
	}
	return nil
}

func isEmptyMatcherSpec(m MatcherSpec) bool {
	return m.Pattern == "" && m.Kind == "" && m.Regex == "" && m.NthChild == nil &&
		len(m.All) == 0 && len(m.Any) == 0 && m.Not == nil && m.Matches == "" &&
		m.Inside == nil && m.Has == nil && m.Precedes == nil && m.Follows == nil
}

// checkUtilCycles walks each util's "matches" references looking for a
// cycle (spec.md §4.5 "cyclic util" validation error).
func checkUtilCycles(utils map[string]MatcherSpec) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make(map[string]int, len(utils))
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("cyclic util reference at %q", name)
		}
		state[name] = gray
		for _, ref := range referencedUtils(utils[name]) {
			if _, ok := utils[ref]; !ok {
				continue
			}
			if err := visit(ref); err != nil {
				return err
			}
		}
		state[name] = black
		return nil
	}
	for name := range utils {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func referencedUtils(m MatcherSpec) []string {
	var out []string
	if m.Matches != "" {
		out = append(out, m.Matches)
	}
	for _, sub := range m.All {
		out = append(out, referencedUtils(sub)...)
	}
	for _, sub := range m.Any {
		out = append(out, referencedUtils(sub)...)
	}
	if m.Not != nil {
		out = append(out, referencedUtils(*m.Not)...)
	}
	for _, rel := range []*RelationSpec{m.Inside, m.Has, m.Precedes, m.Follows} {
		if rel != nil {
			out = append(out, referencedUtils(rel.MatcherSpec)...)
		}
	}
	return out
}
