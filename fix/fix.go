// Package fix compiles a fix/replacement template string into a sequence
// of literal and metavariable segments, and generates replacement text
// from a matched environment (spec.md §4.7 "Fixer/Replacer templates"),
// grounded on the literal/metavariable AST the teacher's fixer_v2.Node
// hierarchy (LiteralNode/MetaVariableNode) walks in applyReplacement.
package fix

import (
	"strings"

	"github.com/oxhq/sg/menv"
)

// segment is one piece of a compiled template: either literal text or a
// reference to a metavariable whose bound text should be substituted.
type segment struct {
	literal string
	metaVar string // "" for a literal segment
}

// Fixer is a compiled fix template ready to generate replacement text
// against any environment a rule's matcher produced.
type Fixer struct {
	segments []segment
}

// Compile parses template, recognizing $NAME references the same way
// pattern.Compile's expandMetaVars does (bare identifier after a single
// '$'; doubled '$$$NAME' is accepted but resolves identically to $NAME
// here since a fix site only ever wants the bound text, not the node
// list). Everything else is copied through literally.
func Compile(template string) (*Fixer, error) {
	var segments []segment
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '$' {
			lit.WriteRune(runes[i])
			continue
		}
		j := i + 1
		for j < len(runes) && runes[j] == '$' {
			j++
		}
		start := j
		for j < len(runes) && isIdentRune(runes[j]) {
			j++
		}
		if start == j {
			lit.WriteRune(runes[i])
			continue
		}
		flush()
		segments = append(segments, segment{metaVar: string(runes[start:j])})
		i = j - 1
	}
	flush()
	return &Fixer{segments: segments}, nil
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Generate renders the fixer's template against env, substituting each
// metavariable's bound text (including transform-derived bindings) and
// preserving indentation: a multi-line substitution is re-indented to
// match the column the metavariable reference itself sat at in the
// template, the same convention ast-grep's fixer uses so a captured
// multi-line block doesn't collapse against the left margin.
func (f *Fixer) Generate(env *menv.Env, source []byte) string {
	var sb strings.Builder
	column := 0
	for _, seg := range f.segments {
		if seg.metaVar == "" {
			sb.WriteString(seg.literal)
			if idx := strings.LastIndexByte(seg.literal, '\n'); idx >= 0 {
				column = len(seg.literal) - idx - 1
			} else {
				column += len(seg.literal)
			}
			continue
		}
		b, ok := env.Get(seg.metaVar)
		if !ok {
			continue
		}
		text := b.Text(source)
		sb.WriteString(reindent(text, column))
		if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
			column = len(text) - idx - 1
		} else {
			column += len(text)
		}
	}
	return sb.String()
}

// reindent prefixes every line after the first with column spaces, so a
// captured multi-line node keeps its relative shape when it lands at a
// deeper indentation in the fix template than it had in the original.
func reindent(text string, column int) string {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return text
	}
	pad := strings.Repeat(" ", column)
	var sb strings.Builder
	sb.WriteString(lines[0])
	for _, line := range lines[1:] {
		sb.WriteByte('\n')
		sb.WriteString(pad)
		sb.WriteString(line)
	}
	return sb.String()
}
