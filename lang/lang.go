// Package lang is the uniform view the matching engine has over a parser
// backend: node kinds and field ids as small integers, the metavariable
// sigil and its expando stand-in, and the embedded-language extraction hook
// used for injections (spec.md §4.1, §4.10).
//
// Every concrete backend (lang/golang, lang/python, lang/typescript,
// lang/javascript, lang/php) wraps a github.com/smacker/go-tree-sitter grammar, the
// same binding the teacher's providers/<lang> packages use.
package lang

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Range is a byte span with its row/column endpoints, used to report
// injected-language regions without depending on the core package (which in
// turn depends on Language), keeping this package leaf-level.
type Range struct {
	StartByte, EndByte   uint32
	StartPoint, EndPoint sitter.Point
}

// Injection is one embedded-language region discovered by ExtractInjections.
type Injection struct {
	Language string
	Range    Range
}

// Language is the capability set spec.md §4.1 requires of any backend.
type Language interface {
	// Name is the language identifier used in rule configs ("go", "python", ...).
	Name() string
	// Extensions lists the file extensions routed to this language.
	Extensions() []string

	// TSLanguage returns the opaque tree-sitter grammar handle.
	TSLanguage() *sitter.Language

	// KindToID resolves a grammar kind name to its small integer id.
	KindToID(name string) (uint16, bool)
	// KindName is the inverse of KindToID, used for diagnostics.
	KindName(id uint16) string
	// FieldToID resolves a field name (the parent->child edge label) to its id.
	FieldToID(name string) (uint16, bool)

	// MetaVarChar is the sigil substituted for metavariables, default '$'.
	MetaVarChar() rune
	// ExpandoChar is a character legal in identifiers used to stand in for
	// MetaVarChar while pre-processing an example so the parser accepts it.
	ExpandoChar() rune
	// PreProcessPattern applies any language-specific rewriting to an
	// example string before the metavariable-sigil substitution.
	PreProcessPattern(query string) string

	// InjectableLanguages lists languages that may be embedded in this one.
	InjectableLanguages() []string
	// ExtractInjections returns the embedded-language regions of root.
	ExtractInjections(root *sitter.Node, source []byte) []Injection
}

// idTable is a bidirectional name<->id cache built once per grammar, since
// go-tree-sitter only exposes SymbolName(id)/FieldName(id) and not the
// reverse lookup the engine needs.
type idTable struct {
	once       sync.Once
	kindByName map[string]uint16
	kindByID   map[uint16]string
	fieldByName map[string]uint16
}

// BuildIDTable scans a grammar's symbol and field tables once per call and
// returns lookup closures over the result. Every concrete backend calls this
// from its New constructor, so each constructed backend rescans its grammar.
func BuildIDTable(ts *sitter.Language) (
	kindToID func(string) (uint16, bool),
	kindName func(uint16) string,
	fieldToID func(string) (uint16, bool),
) {
	t := &idTable{}
	t.once.Do(func() {
		t.kindByName = make(map[string]uint16)
		t.kindByID = make(map[uint16]string)
		count := ts.SymbolCount()
		for i := uint32(0); i < count; i++ {
			id := uint16(i)
			name := ts.SymbolName(sitter.Symbol(id))
			t.kindByID[id] = name
			t.kindByName[name] = id
		}

		t.fieldByName = make(map[string]uint16)
		fcount := ts.FieldCount()
		for i := uint32(1); i <= fcount; i++ {
			id := uint16(i)
			name := ts.FieldName(id)
			if name != "" {
				t.fieldByName[name] = id
			}
		}
	})

	kindToID = func(name string) (uint16, bool) {
		id, ok := t.kindByName[name]
		return id, ok
	}
	kindName = func(id uint16) string {
		if name, ok := t.kindByID[id]; ok {
			return name
		}
		return fmt.Sprintf("kind<%d>", id)
	}
	fieldToID = func(name string) (uint16, bool) {
		id, ok := t.fieldByName[name]
		return id, ok
	}
	return
}

// Registry maps language names and file extensions to backends, mirroring
// the teacher's providers.Registry / providers/catalog pairing but folded
// into one type since the core has no separate "catalog" consumer.
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]Language
	byExt     map[string]Language
}

// NewRegistry creates an empty language registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Language),
		byExt:  make(map[string]Language),
	}
}

// Register adds a backend, indexing it by name and every declared extension.
func (r *Registry) Register(l Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[l.Name()] = l
	for _, ext := range l.Extensions() {
		r.byExt[ext] = l
	}
}

// Get looks up a backend by language name.
func (r *Registry) Get(name string) (Language, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byName[name]
	return l, ok
}

// GetByExtension looks up a backend by file extension (e.g. ".go").
func (r *Registry) GetByExtension(ext string) (Language, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byExt[ext]
	return l, ok
}

// Languages lists every registered backend name.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}
