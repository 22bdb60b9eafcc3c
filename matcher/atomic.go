package matcher

import (
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/lang"
	"github.com/oxhq/sg/menv"
)

// KindMatcher matches any node whose tree-sitter type equals Kind.
type KindMatcher struct {
	Kind string
}

func (m KindMatcher) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	if node.Type() == m.Kind {
		return env, true
	}
	return env, false
}

func (m KindMatcher) PotentialKinds(language lang.Language) map[uint16]bool {
	if id, ok := language.KindToID(m.Kind); ok {
		return map[uint16]bool{id: true}
	}
	return map[uint16]bool{}
}

// RegexMatcher matches a node whose text matches Expr anywhere (per
// regexp.Regexp.MatchString semantics, i.e. unanchored substring search).
type RegexMatcher struct {
	Expr *regexp.Regexp
}

func (m RegexMatcher) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	text := source[node.StartByte():node.EndByte()]
	if m.Expr.Match(text) {
		return env, true
	}
	return env, false
}

func (m RegexMatcher) PotentialKinds(language lang.Language) map[uint16]bool { return nil }

// RangeMatcher matches a node whose byte span is exactly [Start, End).
type RangeMatcher struct {
	Start, End uint32
}

func (m RangeMatcher) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	if node.StartByte() == m.Start && node.EndByte() == m.End {
		return env, true
	}
	return env, false
}

func (m RangeMatcher) PotentialKinds(language lang.Language) map[uint16]bool { return nil }

// NthChildMatcher matches a node that sits at position N (0-based) among
// its parent's children, counting named children only unless OfKind is set
// (which restricts the count to siblings sharing that node kind).
type NthChildMatcher struct {
	N      int
	OfKind string // "" means count every named sibling
}

func (m NthChildMatcher) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	parent := node.Parent()
	if parent == nil {
		return env, false
	}
	idx := 0
	count := int(parent.ChildCount())
	for i := 0; i < count; i++ {
		c := parent.Child(i)
		if !c.IsNamed() {
			continue
		}
		if m.OfKind != "" && c.Type() != m.OfKind {
			continue
		}
		if c.StartByte() == node.StartByte() && c.EndByte() == node.EndByte() {
			return env, idx == m.N
		}
		idx++
	}
	return env, false
}

func (m NthChildMatcher) PotentialKinds(language lang.Language) map[uint16]bool { return nil }
