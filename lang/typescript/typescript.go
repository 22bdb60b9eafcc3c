// Package typescript wires the TypeScript tree-sitter grammar into
// lang.Language, grounded on the teacher's providers/typescript/config.go.
package typescript

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsts "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/oxhq/sg/lang"
)

// Backend implements lang.Language for TypeScript source.
type Backend struct {
	ts        *sitter.Language
	kindToID  func(string) (uint16, bool)
	kindName  func(uint16) string
	fieldToID func(string) (uint16, bool)
}

// New constructs the TypeScript backend, building its id tables once.
func New() *Backend {
	ts := tsts.GetLanguage()
	kindToID, kindName, fieldToID := lang.BuildIDTable(ts)
	return &Backend{ts: ts, kindToID: kindToID, kindName: kindName, fieldToID: fieldToID}
}

func (b *Backend) Name() string                 { return "typescript" }
func (b *Backend) Extensions() []string         { return []string{".ts", ".mts", ".cts"} }
func (b *Backend) TSLanguage() *sitter.Language { return b.ts }

func (b *Backend) KindToID(name string) (uint16, bool) { return b.kindToID(name) }
func (b *Backend) KindName(id uint16) string            { return b.kindName(id) }
func (b *Backend) FieldToID(name string) (uint16, bool) { return b.fieldToID(name) }

// MetaVarChar is '$': valid in TS identifiers, which is exactly why it needs
// an expando stand-in — "$A" would otherwise parse as a real identifier and
// the pattern compiler would never see a metavariable token to recognise.
func (b *Backend) MetaVarChar() rune { return '$' }

// ExpandoChar substitutes a private-use-area rune that can't appear in real
// TypeScript source, avoiding any ambiguity with legitimate "$"-prefixed
// identifiers (a common jQuery/RxJS convention).
func (b *Backend) ExpandoChar() rune { return '' }

func (b *Backend) PreProcessPattern(query string) string { return query }

// InjectableLanguages: none from the TS side itself; JS/TSX template literals
// tagged css`...`/html`...` are handled by user rules binding LANG/CONTENT
// per spec.md §4.10, not by a built-in heuristic here.
func (b *Backend) InjectableLanguages() []string { return nil }

func (b *Backend) ExtractInjections(root *sitter.Node, source []byte) []lang.Injection {
	return nil
}
