// Package printer renders scan results as a human-readable terminal
// report, JSON, or SARIF 2.1.0, plus unified diffs for fixes (spec.md §6
// "Printers"). The human printer's color use is grounded on fatih/color,
// the dependency the pack's gnoverse-tlin repo pulls in for exactly this
// job; diffs are grounded on the teacher's generateDiff
// (providers/golang/transform.go), which already wraps go-difflib.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/oxhq/sg/rule"
	"github.com/oxhq/sg/scan"
)

// FileResult is one scanned file's matches, as reported to a Printer.
type FileResult struct {
	Path    string
	Source  []byte
	Matches []scan.Match
}

// Printer renders a batch of FileResults to w.
type Printer interface {
	Print(w io.Writer, results []FileResult) error
}

// Human prints a colorized, ripgrep-style report: file path, line:column,
// rule id, the offending line, and (if the match carries a fix) a unified
// diff. The rule's severity is not printed.
type Human struct {
	NoColor bool
}

func (h Human) Print(w io.Writer, results []FileResult) error {
	path := color.New(color.FgCyan, color.Bold)
	sev := color.New(color.FgRed, color.Bold)
	// fatih/color auto-detects TTY already; NoColor forces plain output for
	// non-interactive pipes (CI logs, `sg scan --format=human | cat`).
	if h.NoColor {
		color.NoColor = true
	}

	for _, fr := range results {
		for _, m := range fr.Matches {
			point := m.Node.StartPoint()
			path.Fprintf(w, "%s", fr.Path)
			fmt.Fprintf(w, ":%d:%d: ", point.Row+1, point.Column+1)
			sev.Fprintf(w, "%s", m.RuleID)
			fmt.Fprintln(w)

			fmt.Fprintf(w, "  %s\n", lineAt(fr.Source, int(point.Row)))

			if m.Rule.Fixer != nil {
				fixed := m.Rule.Fixer.Generate(m.Env, fr.Source)
				diff, err := unifiedDiff(fr.Path, nodeText(m, fr.Source), fixed)
				if err == nil && diff != "" {
					fmt.Fprint(w, diff)
				}
			}
		}
	}
	return nil
}

func nodeText(m scan.Match, source []byte) string {
	return string(source[m.Node.StartByte():m.Node.EndByte()])
}

func lineAt(source []byte, row int) string {
	start := 0
	cur := 0
	for i, b := range source {
		if cur == row {
			start = i
			break
		}
		if b == '\n' {
			cur++
		}
	}
	end := start
	for end < len(source) && source[end] != '\n' {
		end++
	}
	return string(source[start:end])
}

func unifiedDiff(path, before, after string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: filepath.Base(path),
		ToFile:   filepath.Base(path) + " (fixed)",
		Context:  1,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// JSON prints results as a single JSON array, one object per match, the
// shape an editor integration or script can consume without a SARIF parser.
type JSON struct{}

type jsonMatch struct {
	File     string `json:"file"`
	Line     uint32 `json:"line"`
	Column   uint32 `json:"column"`
	RuleID   string `json:"ruleId"`
	Text     string `json:"text"`
	HasFix   bool   `json:"hasFix"`
	Fixed    string `json:"fixed,omitempty"`
}

func (j JSON) Print(w io.Writer, results []FileResult) error {
	out := []jsonMatch{}
	for _, fr := range results {
		for _, m := range fr.Matches {
			point := m.Node.StartPoint()
			jm := jsonMatch{
				File:   fr.Path,
				Line:   point.Row + 1,
				Column: point.Column + 1,
				RuleID: m.RuleID,
				Text:   nodeText(m, fr.Source),
			}
			if m.Rule.Fixer != nil {
				jm.HasFix = true
				jm.Fixed = m.Rule.Fixer.Generate(m.Env, fr.Source)
			}
			out = append(out, jm)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Sarif prints a SARIF 2.1.0 log, the format CI code-scanning integrations
// (GitHub, GitLab) expect.
type Sarif struct {
	ToolName, ToolVersion string
}

type sarifLog struct {
	Schema  string      `json:"$schema"`
	Version string      `json:"version"`
	Runs    []sarifRun  `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
}

func sarifLevel(sev rule.Severity) string {
	switch sev {
	case rule.SeverityError:
		return "error"
	case rule.SeverityWarning:
		return "warning"
	case rule.SeverityInfo, rule.SeverityHint:
		return "note"
	default:
		return "warning"
	}
}

func (s Sarif) Print(w io.Writer, results []FileResult) error {
	ruleIDs := map[string]bool{}
	var sarifResults []sarifResult
	for _, fr := range results {
		for _, m := range fr.Matches {
			ruleIDs[m.RuleID] = true
			point := m.Node.StartPoint()
			sarifResults = append(sarifResults, sarifResult{
				RuleID: m.RuleID,
				Level:  sarifLevel(m.Rule.Severity),
				Message: sarifMessage{
					Text: nodeText(m, fr.Source),
				},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: fr.Path},
						Region: sarifRegion{
							StartLine:   point.Row + 1,
							StartColumn: point.Column + 1,
						},
					},
				}},
			})
		}
	}
	var driverRules []sarifRule
	for id := range ruleIDs {
		driverRules = append(driverRules, sarifRule{ID: id})
	}

	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    s.ToolName,
				Version: s.ToolVersion,
				Rules:   driverRules,
			}},
			Results: sarifResults,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}
