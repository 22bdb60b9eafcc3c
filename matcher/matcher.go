// Package matcher implements the matcher algebra spec.md §4.4 describes:
// atomic matchers (Pattern, Kind, Regex, Range, NthChild), composite
// combinators (All, Any, Not), and relational matchers (Inside, Has,
// Precedes, Follows). Every matcher is a Matcher, matched against one
// candidate node at a time by the scanner's tree walk.
package matcher

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/lang"
	"github.com/oxhq/sg/menv"
	"github.com/oxhq/sg/pattern"
)

// Matcher is the uniform interface every node in the matcher algebra
// implements. Match attempts to match node (from source, parsed in
// language), threading bindings through env. It returns the environment to
// use going forward (a clone when the matcher only tentatively succeeded)
// and whether the match holds.
type Matcher interface {
	Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool)

	// PotentialKinds returns the set of tree-sitter node kind ids this
	// matcher can possibly match at its root, or nil if it could match any
	// kind (e.g. a bare metavariable pattern). The scanner uses this to
	// skip trying a rule at nodes of other kinds (spec.md §5); it still
	// visits those nodes' children.
	PotentialKinds(language lang.Language) map[uint16]bool
}

// Strictness controls how much structural noise (extra children,
// reordered trivia) a Pattern matcher tolerates, mirroring ast-grep's
// strictness modes (spec.md §4.4).
type Strictness int

const (
	// Cst requires every child, including unnamed/trivia nodes, to line up.
	Cst Strictness = iota
	// Smart skips comments but otherwise requires an exact named-child match.
	Smart
	// AST compares only named children, ignoring punctuation/trivia nodes entirely.
	AST
	// Relaxed additionally allows extra named children the pattern didn't mention.
	Relaxed
	// Signature compares only node kind at each level, ignoring all text.
	Signature
)

// PatternMatcher matches a compiled pattern.Node tree against candidate
// nodes, binding metavariables into the environment as it recurses.
type PatternMatcher struct {
	Root       *pattern.Node
	Strictness Strictness
}

func NewPattern(root *pattern.Node, strictness Strictness) *PatternMatcher {
	return &PatternMatcher{Root: root, Strictness: strictness}
}

func (m *PatternMatcher) Match(node *sitter.Node, source []byte, env *menv.Env) (*menv.Env, bool) {
	child := env.Clone()
	if matchNode(m.Root, node, source, child, m.Strictness) {
		return child, true
	}
	return env, false
}

func (m *PatternMatcher) PotentialKinds(language lang.Language) map[uint16]bool {
	if m.Root.NodeKind != pattern.KindInternal {
		return nil
	}
	id, ok := language.KindToID(m.Root.TSKind)
	if !ok {
		return map[uint16]bool{}
	}
	return map[uint16]bool{id: true}
}

func matchNode(p *pattern.Node, n *sitter.Node, source []byte, env *menv.Env, strictness Strictness) bool {
	if n == nil {
		return false
	}

	switch p.NodeKind {
	case pattern.KindMetaVar:
		if p.TSKind != "" && n.Type() != p.TSKind {
			return false
		}
		if p.MetaName == "" {
			return true // $_ : non-capturing wildcard
		}
		return env.BindSingle(p.MetaName, n, source)

	case pattern.KindMetaVarMulti:
		// A lone multi-capture node standing in for a single node position
		// binds the run of exactly that one node; real multi-capture
		// (matching a variable-length run of siblings) is resolved by the
		// caller (matchChildren) before recursing into a single child.
		if p.MetaName == "" {
			return true
		}
		return env.BindMulti(p.MetaName, []*sitter.Node{n}, source)

	case pattern.KindTerminal:
		if n.ChildCount() != 0 {
			return false
		}
		if strictness == Signature {
			return n.Type() == p.TSKind
		}
		return n.Type() == p.TSKind && string(source[n.StartByte():n.EndByte()]) == p.Text

	case pattern.KindInternal:
		if n.Type() != p.TSKind {
			return false
		}
		return matchChildren(p, n, source, env, strictness)

	default:
		return false
	}
}

// matchChildren aligns a pattern node's children against n's actual
// children according to strictness, handling the one real piece of
// variable-length matching: a $$$NAME child absorbs zero or more
// consecutive actual children.
func matchChildren(p *pattern.Node, n *sitter.Node, source []byte, env *menv.Env, strictness Strictness) bool {
	actual := namedChildren(n, strictness)

	pi, ai := 0, 0
	for pi < len(p.Children) {
		child := p.Children[pi]
		if child.NodeKind == pattern.KindMetaVarMulti {
			// Greedily decide how many actual children this run absorbs by
			// looking at how many pattern nodes remain after it: the rest
			// must match the tail of actual exactly (signature-style
			// counting), so the run takes everything in between.
			remaining := len(p.Children) - pi - 1
			take := len(actual) - ai - remaining
			if take < 0 {
				return false
			}
			run := actual[ai : ai+take]
			if child.MetaName != "" && !env.BindMulti(child.MetaName, run, source) {
				return false
			}
			ai += take
			pi++
			continue
		}
		if ai >= len(actual) {
			return false
		}
		if pi < len(p.ChildFields) && p.ChildFields[pi] != "" {
			if fieldNameOfChild(n, actual[ai]) != p.ChildFields[pi] {
				return false
			}
		}
		if !matchNode(child, actual[ai], source, env, strictness) {
			return false
		}
		pi++
		ai++
	}

	if strictness == Relaxed {
		return true
	}
	return ai == len(actual)
}

func namedChildren(n *sitter.Node, strictness Strictness) []*sitter.Node {
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.Child(i)
		switch strictness {
		case Cst:
			out = append(out, c)
		case Smart:
			if !c.IsNamed() || c.Type() == "comment" {
				continue
			}
			out = append(out, c)
		default: // AST, Relaxed, Signature
			if !c.IsNamed() {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

func fieldNameOfChild(parent *sitter.Node, child *sitter.Node) string {
	count := int(parent.ChildCount())
	for i := 0; i < count; i++ {
		if parent.Child(i) == child {
			return parent.FieldNameForChild(i)
		}
	}
	return ""
}
