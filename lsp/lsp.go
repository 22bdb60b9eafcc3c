// Package lsp defines the Language Server Protocol shapes the editor
// integration spec.md §6 mentions would publish, and the pure function
// that maps scan matches into them. It intentionally stops at the data
// model: no listener, no JSON-RPC transport, no stdio loop is implemented
// here (the spec's Non-goals exclude network I/O; a real language server
// binary would wire this package into something like
// go.lsp.dev/jsonrpc2, which isn't part of this pack).
package lsp

import (
	"github.com/oxhq/sg/rule"
	"github.com/oxhq/sg/scan"
)

// Severity mirrors the LSP DiagnosticSeverity enum (1-4).
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

func severityFrom(s rule.Severity) Severity {
	switch s {
	case rule.SeverityError:
		return SeverityError
	case rule.SeverityWarning:
		return SeverityWarning
	case rule.SeverityInfo:
		return SeverityInformation
	case rule.SeverityHint:
		return SeverityHint
	default:
		return SeverityWarning
	}
}

// Position is zero-based line/character, per the LSP spec.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range is a half-open [Start, End) span.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is one LSP textDocument/publishDiagnostics entry.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Source   string   `json:"source"`
	Message  string   `json:"message"`
}

// PublishDiagnosticsParams is the notification payload sent for one URI.
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// TextEdit is one LSP WorkspaceEdit replacement.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// CodeAction is an LSP textDocument/codeAction response entry, offering a
// match's fix (if any) as an applicable quick-fix.
type CodeAction struct {
	Title string              `json:"title"`
	Kind  string              `json:"kind"`
	Edit  map[string][]TextEdit `json:"edit"` // keyed by document URI, as WorkspaceEdit.changes is
}

// Diagnostics maps a file's scan matches to the LSP diagnostics an editor
// would render as squiggles, one per match.
func Diagnostics(uri string, matches []scan.Match) PublishDiagnosticsParams {
	out := PublishDiagnosticsParams{URI: uri}
	for _, m := range matches {
		start := m.Node.StartPoint()
		end := m.Node.EndPoint()
		message := m.Rule.Message
		if message == "" {
			message = "matched rule " + m.RuleID
		}
		out.Diagnostics = append(out.Diagnostics, Diagnostic{
			Range: Range{
				Start: Position{Line: start.Row, Character: start.Column},
				End:   Position{Line: end.Row, Character: end.Column},
			},
			Severity: severityFrom(m.Rule.Severity),
			Code:     m.RuleID,
			Source:   "sg",
			Message:  message,
		})
	}
	return out
}

// CodeActions maps a file's scan matches into quick-fix actions, one per
// match that carries a Fixer.
func CodeActions(uri string, source []byte, matches []scan.Match) []CodeAction {
	var out []CodeAction
	for _, m := range matches {
		if m.Rule.Fixer == nil {
			continue
		}
		start := m.Node.StartPoint()
		end := m.Node.EndPoint()
		out = append(out, CodeAction{
			Title: "Apply fix: " + m.RuleID,
			Kind:  "quickfix",
			Edit: map[string][]TextEdit{
				uri: {{
					Range: Range{
						Start: Position{Line: start.Row, Character: start.Column},
						End:   Position{Line: end.Row, Character: end.Column},
					},
					NewText: m.Rule.Fixer.Generate(m.Env, source),
				}},
			},
		})
	}
	return out
}
