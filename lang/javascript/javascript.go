// Package javascript wires the JavaScript tree-sitter grammar into
// lang.Language, grounded on the teacher's providers/javascript/config.go.
package javascript

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsjs "github.com/smacker/go-tree-sitter/javascript"

	"github.com/oxhq/sg/lang"
)

// Backend implements lang.Language for JavaScript source.
type Backend struct {
	ts        *sitter.Language
	kindToID  func(string) (uint16, bool)
	kindName  func(uint16) string
	fieldToID func(string) (uint16, bool)
}

// New constructs the JavaScript backend, building its id tables once.
func New() *Backend {
	ts := tsjs.GetLanguage()
	kindToID, kindName, fieldToID := lang.BuildIDTable(ts)
	return &Backend{ts: ts, kindToID: kindToID, kindName: kindName, fieldToID: fieldToID}
}

func (b *Backend) Name() string                 { return "javascript" }
func (b *Backend) Extensions() []string         { return []string{".js", ".mjs", ".cjs", ".jsx"} }
func (b *Backend) TSLanguage() *sitter.Language { return b.ts }

func (b *Backend) KindToID(name string) (uint16, bool) { return b.kindToID(name) }
func (b *Backend) KindName(id uint16) string            { return b.kindName(id) }
func (b *Backend) FieldToID(name string) (uint16, bool) { return b.fieldToID(name) }

func (b *Backend) MetaVarChar() rune { return '$' }
func (b *Backend) ExpandoChar() rune { return '' }

func (b *Backend) PreProcessPattern(query string) string { return query }

// InjectableLanguages: none. JavaScript is the embedded side of HTML
// <script> regions, so it is an HTML host backend, not this one, that would
// list it.
func (b *Backend) InjectableLanguages() []string { return nil }

func (b *Backend) ExtractInjections(root *sitter.Node, source []byte) []lang.Injection {
	return nil
}
