package matcher

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/lang"
	"github.com/oxhq/sg/menv"
)

// Inside matches a node that is contained by an ancestor satisfying Sub.
// Immediate restricts the search to the direct parent only. Until, when
// set, bounds the ancestor walk: search stops (without matching) the
// moment it reaches a node Until itself matches, so a rule can say "inside
// a function, but not if you have to cross another function to get there"
// (spec.md §4.4 "relational ... with immediate/until qualifiers").
type Inside struct {
	Sub       Matcher
	Immediate bool
	Until     Matcher
}

func (m Inside) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	parent := node.Parent()
	for parent != nil {
		if m.Until != nil {
			if _, ok := m.Until.Match(parent, source, env.Clone()); ok {
				return env, false
			}
		}
		branch := env.Clone()
		if next, ok := m.Sub.Match(parent, source, branch); ok {
			return next, true
		}
		if m.Immediate {
			return env, false
		}
		parent = parent.Parent()
	}
	return env, false
}

func (m Inside) PotentialKinds(language lang.Language) map[uint16]bool { return nil }

// Has matches a node that contains a descendant satisfying Sub. Immediate
// restricts the search to direct children only. Until bounds the descent
// the same way it bounds Inside's ascent.
type Has struct {
	Sub       Matcher
	Immediate bool
	Until     Matcher
}

func (m Has) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	if next, ok := m.search(node, source, env); ok {
		return next, true
	}
	return env, false
}

func (m Has) search(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(i)
		if !child.IsNamed() {
			continue
		}
		if m.Until != nil {
			if _, ok := m.Until.Match(child, source, env.Clone()); ok {
				continue
			}
		}
		branch := env.Clone()
		if next, ok := m.Sub.Match(child, source, branch); ok {
			return next, true
		}
		if !m.Immediate {
			if next, ok := m.search(child, source, env); ok {
				return next, true
			}
		}
	}
	return env, false
}

func (m Has) PotentialKinds(language lang.Language) map[uint16]bool { return nil }

// Precedes matches a node that appears before a sibling satisfying Sub.
// Immediate restricts the search to the very next sibling; otherwise every
// later sibling is tried.
type Precedes struct {
	Sub       Matcher
	Immediate bool
}

func (m Precedes) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	siblings, idx := namedSiblings(node)
	if idx < 0 {
		return env, false
	}
	if m.Immediate {
		if idx+1 >= len(siblings) {
			return env, false
		}
		return tryMatch(m.Sub, siblings[idx+1], source, env)
	}
	for i := idx + 1; i < len(siblings); i++ {
		if next, ok := tryMatch(m.Sub, siblings[i], source, env); ok {
			return next, true
		}
	}
	return env, false
}

func (m Precedes) PotentialKinds(language lang.Language) map[uint16]bool { return nil }

// Follows matches a node that appears after a sibling satisfying Sub.
type Follows struct {
	Sub       Matcher
	Immediate bool
}

func (m Follows) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	siblings, idx := namedSiblings(node)
	if idx <= 0 {
		return env, false
	}
	if m.Immediate {
		return tryMatch(m.Sub, siblings[idx-1], source, env)
	}
	for i := idx - 1; i >= 0; i-- {
		if next, ok := tryMatch(m.Sub, siblings[i], source, env); ok {
			return next, true
		}
	}
	return env, false
}

func (m Follows) PotentialKinds(language lang.Language) map[uint16]bool { return nil }

func tryMatch(sub Matcher, node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	return sub.Match(node, source, env.Clone())
}

// namedSiblings returns node's parent's named children and node's index
// within that slice, or idx -1 if node has no parent (the tree root).
func namedSiblings(node *sitter.Node) ([]*sitter.Node, int) {
	parent := node.Parent()
	if parent == nil {
		return nil, -1
	}
	count := int(parent.ChildCount())
	var siblings []*sitter.Node
	self := -1
	for i := 0; i < count; i++ {
		c := parent.Child(i)
		if !c.IsNamed() {
			continue
		}
		if c.StartByte() == node.StartByte() && c.EndByte() == node.EndByte() {
			self = len(siblings)
		}
		siblings = append(siblings, c)
	}
	return siblings, self
}
