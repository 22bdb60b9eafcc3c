package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/sg/core"
	"github.com/oxhq/sg/fix"
	"github.com/oxhq/sg/lang"
	"github.com/oxhq/sg/matcher"
	"github.com/oxhq/sg/pattern"
	"github.com/oxhq/sg/printer"
	"github.com/oxhq/sg/rewrite"
	"github.com/oxhq/sg/rule"
	"github.com/oxhq/sg/scan"
	"github.com/oxhq/sg/walker"
)

// newRunCmd implements `sg run -p PATTERN [-r REWRITE] [-l LANG] [PATHS...]`
// (spec.md §6): an ad-hoc one-off pattern, not a saved rule file.
func newRunCmd() *cobra.Command {
	var patternText, rewriteText, langName, selector string
	var format string
	var write bool

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Search (and optionally rewrite) files against a single ad-hoc pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			if patternText == "" {
				return withExit(ExitInsufficientArgs)
			}
			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}

			reg := registry()
			language, ok := reg.Get(langName)
			if !ok {
				fmt.Fprintln(os.Stderr, "sg run: unknown or unspecified --lang")
				return withExit(ExitMissingLangOrRule)
			}

			node, _, err := pattern.Compile(language, patternText, selector)
			if err != nil {
				fmt.Fprintln(os.Stderr, "sg run:", err)
				return withExit(ExitParseError)
			}
			m := matcher.NewPattern(node, matcher.Smart)

			var fixer *fix.Fixer
			if rewriteText != "" {
				fixer, err = fix.Compile(rewriteText)
				if err != nil {
					fmt.Fprintln(os.Stderr, "sg run:", err)
					return withExit(ExitParseError)
				}
			}
			ruleCore := &rule.Core{Matcher: m, Fixer: fixer, Severity: rule.SeverityWarning}
			scanner := scan.New(language, map[string]*rule.Core{"inline": ruleCore})

			w := walker.New()
			var results []printer.FileResult
			anyMatch := false
			for _, p := range paths {
				fileResults, err := collectResults(cmd.Context(), w, reg, p, scanner)
				if err != nil {
					fmt.Fprintln(os.Stderr, "sg run:", err)
					return withExit(ExitConfigIOError)
				}
				for _, fr := range fileResults {
					if len(fr.Matches) > 0 {
						anyMatch = true
					}
				}
				results = append(results, fileResults...)
			}

			if write {
				if err := applyFixes(results); err != nil {
					fmt.Fprintln(os.Stderr, "sg run:", err)
					return withExit(ExitConfigIOError)
				}
			}

			if err := printResults(format, results); err != nil {
				return withExit(ExitConfigIOError)
			}
			if !anyMatch {
				return nil
			}
			return withExit(ExitDiagnosticsFound)
		},
	}

	cmd.Flags().StringVarP(&patternText, "pattern", "p", "", "example pattern containing $METAVAR captures (required)")
	cmd.Flags().StringVarP(&rewriteText, "rewrite", "r", "", "fix template to generate a replacement for each match")
	cmd.Flags().StringVarP(&langName, "lang", "l", "", "target language (go, python, typescript, javascript, php)")
	cmd.Flags().StringVar(&selector, "selector", "", "tree-sitter node kind to anchor the pattern's root at")
	cmd.Flags().StringVar(&format, "format", "human", "output format: human|json|sarif")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write generated fixes back to disk instead of only reporting them")
	return cmd
}

func collectResults(ctx context.Context, w *walker.Walker, reg *lang.Registry, path string, scanner *scan.Scanner) ([]printer.FileResult, error) {
	results, err := w.Walk(ctx, walker.Scope{Path: path, Languages: reg})
	if err != nil {
		return nil, err
	}
	var out []printer.FileResult
	for r := range results {
		if r.Error != nil || r.Language == nil {
			continue
		}
		source, err := os.ReadFile(r.Path)
		if err != nil {
			continue
		}
		doc, err := core.New(source, r.Language)
		if err != nil {
			continue
		}
		matches := scanner.Scan(doc.Root(), source)
		out = append(out, printer.FileResult{Path: r.Path, Source: source, Matches: matches})
		doc.Close()
	}
	return out, nil
}

func printResults(format string, results []printer.FileResult) error {
	var p printer.Printer
	switch format {
	case "json":
		p = printer.JSON{}
	case "sarif":
		p = printer.Sarif{ToolName: "sg", ToolVersion: "0.1.0"}
	default:
		p = printer.Human{}
	}
	return p.Print(os.Stdout, results)
}

// applyFixes writes every planned fix back to disk via rewrite.Plan/Apply,
// used by `sg run --write` and `sg scan --fix` (spec.md's autofix flag). The
// write itself goes through walker.AtomicWriter so two rules touching the
// same file (or a future `--fix` run racing a concurrent scan) never leave a
// half-written file behind, and the previous content is preserved as a
// timestamped `.bak.<time>` copy alongside it.
func applyFixes(results []printer.FileResult) error {
	aw := walker.NewAtomicWriter(walker.DefaultAtomicConfig())
	for _, fr := range results {
		edits, err := rewrite.Plan(fr.Matches, fr.Source)
		if err != nil {
			return err
		}
		if len(edits) == 0 {
			continue
		}
		out := rewrite.Apply(fr.Source, edits)
		if err := aw.WriteFile(fr.Path, string(out)); err != nil {
			return err
		}
	}
	return nil
}
