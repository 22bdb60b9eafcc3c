package core

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/lang"
)

// Document owns the source bytes and the parsed tree for one file or one
// in-memory snippet (spec.md §3, §4.2). It is the unit the matcher, scanner
// and rewriter all operate over; parsing is grounded on the teacher's
// Pipeline.Apply step 1 (sitter.NewParser / parser.SetLanguage /
// parser.ParseCtx(context.TODO(), nil, source)).
type Document struct {
	source   []byte
	content  Content
	language lang.Language
	parser   *sitter.Parser
	tree     *sitter.Tree
}

// New parses source with language's grammar, returning a *ParseError on
// failure.
func New(source []byte, language lang.Language) (*Document, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(language.TSLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	return &Document{
		source:   source,
		content:  NewUTF8Content(source),
		language: language,
		parser:   parser,
		tree:     tree,
	}, nil
}

// NewUTF16 is New, but positions reported via Content.ColumnAt use UTF-16
// code units, for front ends speaking an LSP/JS-style column convention.
func NewUTF16(source []byte, language lang.Language) (*Document, error) {
	d, err := New(source, language)
	if err != nil {
		return nil, err
	}
	d.content = NewUTF16Content(source)
	return d, nil
}

// Root returns the document's root node.
func (d *Document) Root() *sitter.Node { return d.tree.RootNode() }

// Source returns the full underlying byte buffer. Callers must not mutate it.
func (d *Document) Source() []byte { return d.source }

// Content exposes the unit-addressing strategy in effect for this document.
func (d *Document) Content() Content { return d.content }

// Language returns the backend this document was parsed with.
func (d *Document) Language() lang.Language { return d.language }

// TextOf returns the source slice a node spans.
func (d *Document) TextOf(n *sitter.Node) string {
	return string(d.source[n.StartByte():n.EndByte()])
}

// Close releases the underlying tree-sitter tree. Safe to call multiple times.
func (d *Document) Close() {
	if d.tree != nil {
		d.tree.Close()
		d.tree = nil
	}
}

// Edit splices e into the source, informs the old tree of the change via an
// edit descriptor, and re-parses incrementally using the old tree as the
// baseline (spec.md §4.2). On re-parse failure the document is left
// observationally unchanged and an *EditError is returned.
func (d *Document) Edit(e Edit) error {
	startPoint := d.pointAt(e.Position)
	oldEndPoint := d.pointAt(e.End())

	newSource := e.Apply(d.source)
	newEndPoint := d.pointAt(e.Position + len(e.InsertedBytes))

	d.tree.Edit(sitter.EditInput{
		StartIndex:  uint32(e.Position),
		OldEndIndex: uint32(e.End()),
		NewEndIndex: uint32(e.Position + len(e.InsertedBytes)),
		StartPoint:  startPoint,
		OldEndPoint: oldEndPoint,
		NewEndPoint: newEndPoint,
	})

	newTree, err := d.parser.ParseCtx(context.Background(), d.tree, newSource)
	if err != nil {
		// Leave the document exactly as it was: the old tree's Edit() call
		// mutated its internal byte ranges, but not the source we expose,
		// and we never swap d.tree/d.source in on failure.
		return &EditError{Err: err}
	}

	d.tree.Close()
	d.tree = newTree
	d.source = newSource
	d.content = rewrapContent(d.content, newSource)
	return nil
}

func rewrapContent(prev Content, source []byte) Content {
	switch prev.(type) {
	case *UTF16Content:
		return NewUTF16Content(source)
	default:
		return NewUTF8Content(source)
	}
}

// pointAt converts a byte offset into a sitter.Point by scanning newlines.
// Documents are typically edited once or a handful of times per run, so a
// linear scan is simpler than maintaining a line-offset index and keeps this
// free of incremental bookkeeping bugs.
func (d *Document) pointAt(offset int) sitter.Point {
	if offset > len(d.source) {
		offset = len(d.source)
	}
	row, col := uint32(0), uint32(0)
	for i := 0; i < offset; i++ {
		if d.source[i] == '\n' {
			row++
			col = 0
		} else {
			col++
		}
	}
	return sitter.Point{Row: row, Column: col}
}

// Injections returns the embedded-language subtrees discovered by the
// document's own language backend (spec.md §4.10). Parsing an injected
// range as its own Document is left to the caller, since the target
// language's registry entry is not known to core.
func (d *Document) Injections() map[string][]lang.Range {
	out := make(map[string][]lang.Range)
	for _, inj := range d.language.ExtractInjections(d.Root(), d.source) {
		out[inj.Language] = append(out[inj.Language], inj.Range)
	}
	return out
}
