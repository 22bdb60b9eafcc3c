// Package transform implements the derived-metavariable pipeline
// spec.md §4.6 describes: substring/replace/convert/rewrite steps that
// each read an already-bound metavariable and bind a new one from it,
// ordered so a later step can consume an earlier step's output.
package transform

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/menv"
)

// Transform is one named derivation step. Apply reads Transform's source
// metavariable out of env and binds its own target, using Env.BindDerived
// so later matchers/fixers see it exactly like a captured node's text.
type Transform interface {
	TargetName() string
	SourceName() string
	Apply(env *menv.Env, source []byte) error
}

// Substring extracts source[Start:End] by rune offset (negative offsets
// count from the end, mirroring Python-style slicing, since this is the
// convention ast-derived rewrite tools converge on for "drop a prefix/
// suffix of a captured name").
type Substring struct {
	Target, Source string
	Start, End     *int
}

func (t Substring) TargetName() string { return t.Target }
func (t Substring) SourceName() string { return t.Source }

func (t Substring) Apply(env *menv.Env, source []byte) error {
	text, err := resolve(env, t.Source, source)
	if err != nil {
		return err
	}
	runes := []rune(text)
	start, end := 0, len(runes)
	if t.Start != nil {
		start = normalizeIndex(*t.Start, len(runes))
	}
	if t.End != nil {
		end = normalizeIndex(*t.End, len(runes))
	}
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start > end {
		start = end
	}
	env.BindDerived(t.Target, []byte(string(runes[start:end])))
	return nil
}

func normalizeIndex(i, length int) int {
	if i < 0 {
		return length + i
	}
	return i
}

// Replace runs a regular expression substitution over the source
// metavariable's text.
type Replace struct {
	Target, Source string
	Match          *regexp.Regexp
	By             string
}

func (t Replace) TargetName() string { return t.Target }
func (t Replace) SourceName() string { return t.Source }

func (t Replace) Apply(env *menv.Env, source []byte) error {
	text, err := resolve(env, t.Source, source)
	if err != nil {
		return err
	}
	env.BindDerived(t.Target, []byte(t.Match.ReplaceAllString(text, t.By)))
	return nil
}

// Convert re-cases the source metavariable's text (spec.md §4.6). SeparatedBy
// names which separators to split words on before rejoining under ToCase; an
// empty SeparatedBy splits on all of them (caseChange, dash, dot, slash,
// space, underscore).
type Convert struct {
	Target, Source string
	ToCase         string
	SeparatedBy    []string
}

func (t Convert) TargetName() string { return t.Target }
func (t Convert) SourceName() string { return t.Source }

func (t Convert) Apply(env *menv.Env, source []byte) error {
	text, err := resolve(env, t.Source, source)
	if err != nil {
		return err
	}
	converted, err := convertCase(text, t.ToCase, t.SeparatedBy)
	if err != nil {
		return err
	}
	env.BindDerived(t.Target, []byte(converted))
	return nil
}

// separator names spec.md §4.6's convert.separatedBy accepts.
const (
	sepCaseChange = "caseChange"
	sepDash       = "dash"
	sepDot        = "dot"
	sepSlash      = "slash"
	sepSpace      = "space"
	sepUnderscore = "underscore"
)

var allSeparators = []string{sepCaseChange, sepDash, sepDot, sepSlash, sepSpace, sepUnderscore}

func convertCase(s, toCase string, separatedBy []string) (string, error) {
	seps := separatedBy
	if len(seps) == 0 {
		seps = allSeparators
	}
	words := splitWords(s, seps)
	switch toCase {
	case "lowerCase":
		return strings.ToLower(strings.Join(words, "")), nil
	case "upperCase":
		return strings.ToUpper(strings.Join(words, "")), nil
	case "capitalize":
		joined := strings.ToLower(strings.Join(words, ""))
		if joined == "" {
			return "", nil
		}
		return strings.ToUpper(joined[:1]) + joined[1:], nil
	case "camelCase":
		return joinCamel(words, false), nil
	case "pascalCase":
		return joinCamel(words, true), nil
	case "snakeCase":
		return strings.ToLower(strings.Join(words, "_")), nil
	case "kebabCase":
		return strings.ToLower(strings.Join(words, "-")), nil
	default:
		return "", fmt.Errorf("unknown case %q", toCase)
	}
}

func splitWords(s string, seps []string) []string {
	has := func(name string) bool {
		for _, sep := range seps {
			if sep == name {
				return true
			}
		}
		return false
	}
	caseChange := has(sepCaseChange)
	isSplitRune := func(r rune) bool {
		switch {
		case r == '-' && has(sepDash):
			return true
		case r == '.' && has(sepDot):
			return true
		case r == '/' && has(sepSlash):
			return true
		case r == ' ' && has(sepSpace):
			return true
		case r == '_' && has(sepUnderscore):
			return true
		default:
			return false
		}
	}

	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case isSplitRune(r):
			flush()
		case caseChange && r >= 'A' && r <= 'Z' && i > 0 && isLower(runes[i-1]):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

func joinCamel(words []string, pascal bool) string {
	var sb strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		lower := strings.ToLower(w)
		if i == 0 && !pascal {
			sb.WriteString(lower)
			continue
		}
		sb.WriteString(strings.ToUpper(lower[:1]) + lower[1:])
	}
	return sb.String()
}

// Resolver applies named sub-rules recursively over a captured node (or
// sequence of multi-captured nodes), concatenating their rewritten text with
// joinBy, and is what turns a Rewrite transform into bytes. Only the
// scanner holds every rule by id, so it installs ActiveResolver for the
// duration of a Scan call; outside of a scan, Rewrite binds nothing.
type Resolver func(ruleIDs []string, nodes []*sitter.Node, joinBy string, source []byte) []byte

// ActiveResolver is the process-wide hook scan.Scanner installs before
// walking a tree and restores afterward. This module runs one scan per CLI
// invocation with a single consuming goroutine (see scan.Scanner.Scan), so a
// package-level hook is sufficient; it is not safe for concurrently running
// scanners in the same process.
var ActiveResolver Resolver

// Rewrite applies the named, separately-defined rewrite rules over the
// source metavariable's matched subtree(s) and binds the concatenated
// result (spec.md §4.6 "rewrite": nested rule reuse, the transform analogue
// of Matches in the matcher algebra).
type Rewrite struct {
	Target, Source string
	RuleIDs        []string
	JoinBy         string
}

func (t Rewrite) TargetName() string { return t.Target }
func (t Rewrite) SourceName() string { return t.Source }

func (t Rewrite) Apply(env *menv.Env, source []byte) error {
	if ActiveResolver == nil {
		return nil
	}
	b, ok := env.Get(t.Source)
	if !ok {
		return fmt.Errorf("transform: metavariable %q is not bound", t.Source)
	}
	nodes := b.Multi
	if !b.IsMulti && b.Single != nil {
		nodes = []*sitter.Node{b.Single}
	}
	env.BindDerived(t.Target, ActiveResolver(t.RuleIDs, nodes, t.JoinBy, source))
	return nil
}

func resolve(env *menv.Env, name string, source []byte) (string, error) {
	b, ok := env.Get(name)
	if !ok {
		return "", fmt.Errorf("transform: metavariable %q is not bound", name)
	}
	return b.Text(source), nil
}

// TopoSort orders transforms so that each one runs only after the
// transform producing its source metavariable (if any), detecting
// CyclicTransform as a hard error (spec.md §4.6).
func TopoSort(transforms []Transform) ([]Transform, error) {
	byTarget := make(map[string]Transform, len(transforms))
	for _, t := range transforms {
		byTarget[t.TargetName()] = t
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make(map[string]int, len(transforms))
	var order []Transform
	var visit func(t Transform) error
	visit = func(t Transform) error {
		name := t.TargetName()
		switch state[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("transform: cyclic dependency at %q", name)
		}
		state[name] = gray
		if dep, ok := byTarget[t.SourceName()]; ok {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = black
		order = append(order, t)
		return nil
	}
	for _, t := range transforms {
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return order, nil
}
