// Package python wires the Python tree-sitter grammar into lang.Language,
// grounded on the teacher's providers/python/config.go.
package python

import (
	sitter "github.com/smacker/go-tree-sitter"
	tspy "github.com/smacker/go-tree-sitter/python"

	"github.com/oxhq/sg/lang"
)

// Backend implements lang.Language for Python source.
type Backend struct {
	ts        *sitter.Language
	kindToID  func(string) (uint16, bool)
	kindName  func(uint16) string
	fieldToID func(string) (uint16, bool)
}

// New constructs the Python backend, building its id tables once.
func New() *Backend {
	ts := tspy.GetLanguage()
	kindToID, kindName, fieldToID := lang.BuildIDTable(ts)
	return &Backend{ts: ts, kindToID: kindToID, kindName: kindName, fieldToID: fieldToID}
}

func (b *Backend) Name() string                 { return "python" }
func (b *Backend) Extensions() []string         { return []string{".py", ".pyi"} }
func (b *Backend) TSLanguage() *sitter.Language { return b.ts }

func (b *Backend) KindToID(name string) (uint16, bool) { return b.kindToID(name) }
func (b *Backend) KindName(id uint16) string            { return b.kindName(id) }
func (b *Backend) FieldToID(name string) (uint16, bool) { return b.fieldToID(name) }

// MetaVarChar is '$': Python identifiers cannot contain it either, so the
// same expando trick as Go is needed.
func (b *Backend) MetaVarChar() rune { return '$' }

// ExpandoChar picks 'µ' as well; Python identifiers accept any Unicode
// letter category, so it parses as a normal name token.
func (b *Backend) ExpandoChar() rune { return 'µ' }

func (b *Backend) PreProcessPattern(query string) string { return query }

func (b *Backend) InjectableLanguages() []string { return nil }

func (b *Backend) ExtractInjections(root *sitter.Node, source []byte) []lang.Injection {
	return nil
}
