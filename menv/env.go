// Package menv is the metavariable binding environment (spec.md §3): the
// mapping from a metavariable name to the node(s) it captured, plus the
// consistency rule that every reference to the same $NAME must bind to
// nodes with identical text.
package menv

import sitter "github.com/smacker/go-tree-sitter"

// Binding is what a metavariable name is bound to: either a single node
// (from $NAME), an ordered sequence of nodes (from $$$NAME), or a derived
// byte string produced by a Transform.
type Binding struct {
	Single   *sitter.Node
	Multi    []*sitter.Node
	Derived  []byte
	IsMulti  bool
	IsDerived bool
}

// Text renders the binding's matched source text, given the bytes it was
// captured from. Transform-derived bindings ignore source and return their
// own bytes.
func (b Binding) Text(source []byte) string {
	switch {
	case b.IsDerived:
		return string(b.Derived)
	case b.IsMulti:
		if len(b.Multi) == 0 {
			return ""
		}
		start := b.Multi[0].StartByte()
		end := b.Multi[len(b.Multi)-1].EndByte()
		return string(source[start:end])
	case b.Single != nil:
		return string(source[b.Single.StartByte():b.Single.EndByte()])
	default:
		return ""
	}
}

// Env is the per-match-attempt binding table. It supports cheap
// clone-on-write so that a failed composite branch (Any, relational
// backtracking) never pollutes the environment an accepted branch sees
// (spec.md §3 invariants, §9 design notes).
type Env struct {
	bindings map[string]Binding
	// parent is set when Clone() is used instead of a deep copy; writes go
	// to a fresh map that shadows parent, and reads fall through to it.
	parent *Env
}

// New creates an empty environment.
func New() *Env {
	return &Env{bindings: make(map[string]Binding)}
}

// Clone returns a copy-on-write child: reads see the parent's bindings
// until this child writes its own, at which point the write is local and
// invisible to the parent (used by Any branches and relational
// backtracking so failed attempts leave no trace).
func (e *Env) Clone() *Env {
	return &Env{bindings: make(map[string]Binding), parent: e}
}

// Get resolves name, searching this environment then its ancestry.
func (e *Env) Get(name string) (Binding, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Has reports whether name is bound anywhere in the chain.
func (e *Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// BindSingle attempts to bind name to node, enforcing the consistency rule:
// if name is already bound, the new node's text must match the existing
// binding's text (spec.md §3). source is needed to compare text across two
// node handles that may come from different trees (relational matchers) or
// the same tree.
func (e *Env) BindSingle(name string, node *sitter.Node, source []byte) bool {
	if existing, ok := e.Get(name); ok {
		return existing.Text(source) == string(source[node.StartByte():node.EndByte()])
	}
	e.bindings[name] = Binding{Single: node}
	return true
}

// BindMulti binds name to an ordered sequence of nodes (for $$$NAME),
// enforcing the same consistency rule over the concatenated span text.
func (e *Env) BindMulti(name string, nodes []*sitter.Node, source []byte) bool {
	text := multiText(nodes, source)
	if existing, ok := e.Get(name); ok {
		return existing.Text(source) == text
	}
	e.bindings[name] = Binding{Multi: nodes, IsMulti: true}
	return true
}

func multiText(nodes []*sitter.Node, source []byte) string {
	if len(nodes) == 0 {
		return ""
	}
	start := nodes[0].StartByte()
	end := nodes[len(nodes)-1].EndByte()
	return string(source[start:end])
}

// BindDerived stores a Transform's output under target and always succeeds.
// It does not check whether target is already bound: an existing capture of
// the same name is shadowed, and neither rule.Compile nor Config.Validate
// rejects a transform target that reuses a capture name.
func (e *Env) BindDerived(name string, value []byte) {
	e.bindings[name] = Binding{Derived: value, IsDerived: true}
}

// Names returns every metavariable name bound in this environment or an
// ancestor, each exactly once.
func (e *Env) Names() []string {
	seen := make(map[string]struct{})
	var names []string
	for cur := e; cur != nil; cur = cur.parent {
		for name := range cur.bindings {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	return names
}

// Merge copies every binding visible from other into e. Conflicts are
// resolved by the consistency rule, consistent with BindSingle.
func (e *Env) Merge(other *Env, source []byte) bool {
	for _, name := range other.Names() {
		b, _ := other.Get(name)
		switch {
		case b.IsDerived:
			e.bindings[name] = b
		case b.IsMulti:
			if !e.BindMulti(name, b.Multi, source) {
				return false
			}
		default:
			if !e.BindSingle(name, b.Single, source) {
				return false
			}
		}
	}
	return true
}

// Flatten collapses the parent chain into a single-level Env, useful once
// a match is accepted and the environment will outlive the matching pass.
func (e *Env) Flatten() *Env {
	flat := New()
	for _, name := range e.Names() {
		b, _ := e.Get(name)
		flat.bindings[name] = b
	}
	return flat
}
