// Package php wires the PHP tree-sitter grammar into lang.Language,
// grounded on the teacher's providers/php/config.go.
//
// PHP is the textbook case for a non-default metavariable sigil (spec.md
// §4.1): '$' already means "variable" in PHP source, so a pattern author
// writing "$NAME" would be writing an ordinary PHP variable reference, not a
// metavariable. This backend uses '#' instead.
package php

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsphp "github.com/smacker/go-tree-sitter/php"

	"github.com/oxhq/sg/lang"
)

// Backend implements lang.Language for PHP source.
type Backend struct {
	ts        *sitter.Language
	kindToID  func(string) (uint16, bool)
	kindName  func(uint16) string
	fieldToID func(string) (uint16, bool)
}

// New constructs the PHP backend, building its id tables once.
func New() *Backend {
	ts := tsphp.GetLanguage()
	kindToID, kindName, fieldToID := lang.BuildIDTable(ts)
	return &Backend{ts: ts, kindToID: kindToID, kindName: kindName, fieldToID: fieldToID}
}

func (b *Backend) Name() string         { return "php" }
func (b *Backend) Extensions() []string { return []string{".php", ".phtml", ".php4", ".php5", ".phps"} }
func (b *Backend) TSLanguage() *sitter.Language { return b.ts }

func (b *Backend) KindToID(name string) (uint16, bool) { return b.kindToID(name) }
func (b *Backend) KindName(id uint16) string            { return b.kindName(id) }
func (b *Backend) FieldToID(name string) (uint16, bool) { return b.fieldToID(name) }

func (b *Backend) MetaVarChar() rune { return '#' }

// ExpandoChar: any identifier-legal letter works since '#' never collides
// with PHP identifier syntax the way '$' would.
func (b *Backend) ExpandoChar() rune { return 'µ' }

func (b *Backend) PreProcessPattern(query string) string { return query }

func (b *Backend) InjectableLanguages() []string { return nil }

func (b *Backend) ExtractInjections(root *sitter.Node, source []byte) []lang.Injection {
	return nil
}
