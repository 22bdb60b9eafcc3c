package matcher

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/lang"
)

// document is a minimal parsed-source fixture for matcher tests; the real
// engine uses core.Document, but these tests parse directly to stay focused
// on the algebra, not document lifecycle.
type document struct {
	source []byte
	tree   *sitter.Tree
	root   *sitter.Node
}

func newDocument(t *testing.T, language lang.Language, source string) *document {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(language.TSLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(tree.Close)
	return &document{source: []byte(source), tree: tree, root: tree.RootNode()}
}

func findFirst(n *sitter.Node, kind string) *sitter.Node {
	if n.Type() == kind {
		return n
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if found := findFirst(n.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}
