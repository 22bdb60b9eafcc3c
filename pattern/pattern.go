// Package pattern compiles an example code snippet into a PatternNode tree
// that the matcher package walks against a parsed document (spec.md §4.3).
//
// A pattern starts life as ordinary source text sprinkled with metavariable
// sigils ($NAME, $$$NAME, $_, $$$_, $NAME~KIND). Tree-sitter's own grammar
// has no notion of a metavariable, so before the snippet is handed to the
// backend parser every sigil is rewritten to a legal identifier character
// (the language's "expando" rune, found via findTargets-style recursive
// walk in the teacher's transform.go), parsed normally, and then walked
// back into a PatternNode tree that remembers which identifiers were really
// metavariables.
package pattern

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/lang"
)

// Kind enumerates the shapes a compiled pattern node can take.
type Kind int

const (
	// KindTerminal matches a leaf node by exact text.
	KindTerminal Kind = iota
	// KindMetaVar matches any single node and binds it to a name.
	KindMetaVar
	// KindMetaVarMulti matches zero or more sibling nodes and binds the
	// run to a name ($$$NAME).
	KindMetaVarMulti
	// KindInternal matches a node's kind plus its named children recursively.
	KindInternal
)

// Node is one node of a compiled pattern tree.
type Node struct {
	NodeKind Kind

	// TSKind is the tree-sitter node type this pattern node must match
	// (KindInternal and, as a restriction, KindMetaVar with a ~KIND suffix).
	TSKind string

	// Text is the literal text a KindTerminal node must match verbatim.
	Text string

	// MetaName is the bound name for KindMetaVar / KindMetaVarMulti; empty
	// for the non-capturing wildcards $_ and $$$_.
	MetaName string

	// Children holds the named children of an Internal node, in source
	// order, alongside the field name tree-sitter associates with each
	// (empty string if the grammar assigns no field name there).
	Children     []*Node
	ChildFields  []string
}

// Compile parses an example snippet in language lang, using selector (a
// tree-sitter node kind name, or "" for "whatever the parse produced") to
// pick the effective pattern root, and returns the compiled PatternNode
// tree plus the set of metavariable names it references.
func Compile(language lang.Language, example string, selector string) (*Node, []string, error) {
	expanded, placeholders := expandMetaVars(language, example)

	parser := sitter.NewParser()
	parser.SetLanguage(language.TSLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(expanded))
	if err != nil {
		return nil, nil, fmt.Errorf("pattern: parse example: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if selector != "" {
		if found := findByKind(root, selector); found != nil {
			root = found
		}
	}
	// A snippet often parses as a single-statement wrapper (e.g. an
	// expression_statement around a bare call). Unwrap while there is
	// exactly one named child and the node carries no literal text of its
	// own, so the compiled pattern targets the meaningful node.
	for root.NamedChildCount() == 1 && root.ChildCount() == root.NamedChildCount() {
		root = root.NamedChild(0)
	}

	names := map[string]struct{}{}
	node := build(root, []byte(expanded), placeholders, names)
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	return node, out, nil
}

func findByKind(n *sitter.Node, kind string) *sitter.Node {
	if n.Type() == kind {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findByKind(n.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}

// placeholder records what a single expando-substituted identifier really
// meant before substitution.
type placeholder struct {
	multi bool
	name  string // "" for $_ / $$$_
	kind  string // restriction from $NAME~KIND, if any
}

// expandMetaVars rewrites every metavariable sigil in example into an
// identifier built from the language's expando rune, repeated so that each
// occurrence of the same name produces the same placeholder identifier
// (this is what lets a later backreference like $X used twice parse at
// all: both occurrences become the same valid identifier token).
func expandMetaVars(language lang.Language, example string) (string, map[string]placeholder) {
	meta := language.MetaVarChar()
	expando := language.ExpandoChar()
	placeholders := map[string]placeholder{}

	var sb strings.Builder
	runes := []rune(example)
	for i := 0; i < len(runes); i++ {
		if runes[i] != meta {
			sb.WriteRune(runes[i])
			continue
		}
		multi := false
		j := i + 1
		if j+1 < len(runes) && runes[j] == meta && runes[j+1] == meta {
			multi = true
			j += 2
		}
		start := j
		for j < len(runes) && (isIdentRune(runes[j]) || runes[j] == '_') {
			j++
		}
		name := string(runes[start:j])
		kind := ""
		if j < len(runes) && runes[j] == '~' {
			k := j + 1
			ks := k
			for k < len(runes) && isIdentRune(runes[k]) {
				k++
			}
			kind = string(runes[ks:k])
			j = k
		}
		if name == "" {
			sb.WriteRune(runes[i])
			i = j - 1
			continue
		}
		token := placeholderToken(expando, name)
		placeholders[token] = placeholder{multi: multi, name: normName(name), kind: kind}
		sb.WriteString(token)
		i = j - 1
	}
	return sb.String(), placeholders
}

func normName(name string) string {
	if name == "_" {
		return ""
	}
	return name
}

func placeholderToken(expando rune, name string) string {
	return string(expando) + strings.ToLower(name) + string(expando)
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// build walks a parsed tree-sitter node, turning any identifier-shaped leaf
// that matches a known placeholder token back into a MetaVar/MetaVarMulti
// pattern node, and everything else into a Terminal or Internal node.
func build(n *sitter.Node, source []byte, placeholders map[string]placeholder, names map[string]struct{}) *Node {
	text := string(source[n.StartByte():n.EndByte()])
	if ph, ok := placeholders[text]; ok && n.ChildCount() == 0 {
		if ph.name != "" {
			names[ph.name] = struct{}{}
		}
		kind := KindMetaVar
		if ph.multi {
			kind = KindMetaVarMulti
		}
		return &Node{NodeKind: kind, MetaName: ph.name, TSKind: ph.kind}
	}

	if n.ChildCount() == 0 {
		return &Node{NodeKind: KindTerminal, TSKind: n.Type(), Text: text}
	}

	out := &Node{NodeKind: KindInternal, TSKind: n.Type()}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if !child.IsNamed() {
			continue
		}
		field := fieldNameOf(n, i)
		out.Children = append(out.Children, build(child, source, placeholders, names))
		out.ChildFields = append(out.ChildFields, field)
	}
	return out
}

func fieldNameOf(parent *sitter.Node, childIndex int) string {
	return parent.FieldNameForChild(childIndex)
}

// FixedString returns the longest terminal text in a compiled pattern, a
// literal substring every match is guaranteed to contain (strictness
// Signature excepted, since it ignores terminal text). It is the textual
// analogue of potential_kinds pruning (spec.md §5); the scanner does not
// call it.
func (n *Node) FixedString() string {
	switch n.NodeKind {
	case KindTerminal:
		return n.Text
	case KindInternal:
		best := ""
		for _, c := range n.Children {
			if s := c.FixedString(); len(s) > len(best) {
				best = s
			}
		}
		return best
	default:
		return ""
	}
}
