package matcher

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/lang"
	"github.com/oxhq/sg/menv"
)

// All requires every sub-matcher to match the same node, threading
// bindings from left to right so a later matcher sees earlier captures
// (spec.md §4.4 "composite: All/Any/Not").
type All struct {
	Matchers []Matcher
}

func (m All) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	cur := env
	for _, sub := range m.Matchers {
		next, ok := sub.Match(node, source, cur)
		if !ok {
			return env, false
		}
		cur = next
	}
	return cur, true
}

func (m All) PotentialKinds(language lang.Language) map[uint16]bool {
	var out map[uint16]bool
	for _, sub := range m.Matchers {
		kinds := sub.PotentialKinds(language)
		if kinds == nil {
			continue // an unconstrained sub-matcher narrows nothing
		}
		if out == nil {
			out = kinds
			continue
		}
		out = intersect(out, kinds)
	}
	return out
}

func intersect(a, b map[uint16]bool) map[uint16]bool {
	out := map[uint16]bool{}
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

// Any requires at least one sub-matcher to match; on success it keeps the
// environment produced by the first matcher that matched and discards
// bindings attempted by matchers that failed (spec.md §3 clone-on-write).
type Any struct {
	Matchers []Matcher
}

func (m Any) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	for _, sub := range m.Matchers {
		branch := env.Clone()
		if next, ok := sub.Match(node, source, branch); ok {
			return next, true
		}
	}
	return env, false
}

func (m Any) PotentialKinds(language lang.Language) map[uint16]bool {
	out := map[uint16]bool{}
	for _, sub := range m.Matchers {
		kinds := sub.PotentialKinds(language)
		if kinds == nil {
			return nil // one unconstrained branch means Any could match anything
		}
		for k := range kinds {
			out[k] = true
		}
	}
	return out
}

// Not inverts a sub-matcher. It never binds metavariables (a negated
// match has nothing meaningful to capture) and always returns the
// original, unmodified environment.
type Not struct {
	Matcher Matcher
}

func (m Not) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	if _, ok := m.Matcher.Match(node, source, env.Clone()); ok {
		return env, false
	}
	return env, true
}

func (m Not) PotentialKinds(language lang.Language) map[uint16]bool {
	return nil // a negated matcher cannot narrow the candidate kind set
}

// Matches invokes a named, independently-defined matcher from a rule's
// utility table (spec.md §4.4's "Matches-util"), allowing rules to share
// sub-matchers by name instead of repeating them inline.
type Matches struct {
	Utils map[string]Matcher
	Name  string
}

func (m Matches) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	util, ok := m.Utils[m.Name]
	if !ok {
		return env, false
	}
	return util.Match(node, source, env)
}

func (m Matches) PotentialKinds(language lang.Language) map[uint16]bool {
	if util, ok := m.Utils[m.Name]; ok {
		return util.PotentialKinds(language)
	}
	return nil
}
