// Package golang wires the Go tree-sitter grammar into the lang.Language
// capability set, grounded on the teacher's providers/golang/config.go
// (same grammar import, same Extensions list).
package golang

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsgo "github.com/smacker/go-tree-sitter/golang"

	"github.com/oxhq/sg/lang"
)

// Backend implements lang.Language for Go source.
type Backend struct {
	ts        *sitter.Language
	kindToID  func(string) (uint16, bool)
	kindName  func(uint16) string
	fieldToID func(string) (uint16, bool)
}

// New constructs the Go backend, building its id tables once.
func New() *Backend {
	ts := tsgo.GetLanguage()
	kindToID, kindName, fieldToID := lang.BuildIDTable(ts)
	return &Backend{ts: ts, kindToID: kindToID, kindName: kindName, fieldToID: fieldToID}
}

func (b *Backend) Name() string          { return "go" }
func (b *Backend) Extensions() []string  { return []string{".go"} }
func (b *Backend) TSLanguage() *sitter.Language { return b.ts }

func (b *Backend) KindToID(name string) (uint16, bool) { return b.kindToID(name) }
func (b *Backend) KindName(id uint16) string            { return b.kindName(id) }
func (b *Backend) FieldToID(name string) (uint16, bool) { return b.fieldToID(name) }

// MetaVarChar stays '$': Go identifiers may not contain it, so the expando
// substitution below is required for any pattern using $NAME.
func (b *Backend) MetaVarChar() rune { return '$' }

// ExpandoChar is 'µ' (U+00B5), a letter legal in Go identifiers that never
// appears in ordinary Go source, so substituting it for '$' keeps the
// example snippet parseable without colliding with real identifiers.
func (b *Backend) ExpandoChar() rune { return 'µ' }

// PreProcessPattern performs no grammar-specific rewriting for Go beyond the
// generic metavariable substitution the pattern compiler applies using
// ExpandoChar above.
func (b *Backend) PreProcessPattern(query string) string { return query }

func (b *Backend) InjectableLanguages() []string { return nil }

func (b *Backend) ExtractInjections(root *sitter.Node, source []byte) []lang.Injection {
	return nil
}
