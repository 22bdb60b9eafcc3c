package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/sg/config"
	"github.com/oxhq/sg/printer"
	"github.com/oxhq/sg/rule"
	"github.com/oxhq/sg/scan"
	"github.com/oxhq/sg/walker"
)

// newScanCmd implements `sg scan [-c CONFIG] [-r RULE] [PATHS...]`
// (spec.md §6): runs a saved rule set (sgconfig.yml-discovered or a single
// rule file) across a tree.
func newScanCmd() *cobra.Command {
	var projectDir, ruleFile, format string
	var fixInPlace bool

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Run configured rules over files and report matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}

			var configs []*rule.Config
			if ruleFile != "" {
				cfg, err := config.LoadRuleFile(ruleFile)
				if err != nil {
					return err
				}
				configs = []*rule.Config{cfg}
			} else {
				proj, err := config.LoadProject(projectDir)
				if err != nil {
					return err
				}
				configs, err = config.LoadRules(projectDir, proj.RuleDirs)
				if err != nil {
					return err
				}
			}
			if len(configs) == 0 {
				fmt.Fprintln(os.Stderr, "sg scan: no rules loaded")
				return withExit(ExitMissingLangOrRule)
			}

			reg := registry()
			byLanguage := map[string]map[string]*rule.Core{}
			for _, cfg := range configs {
				language, ok := reg.Get(cfg.Language)
				if !ok {
					fmt.Fprintf(os.Stderr, "sg scan: rule %s: unknown language %q\n", cfg.ID, cfg.Language)
					return withExit(ExitMissingLangOrRule)
				}
				core, err := rule.Compile(cfg, language)
				if err != nil {
					fmt.Fprintln(os.Stderr, "sg scan:", err)
					return withExit(ExitParseError)
				}
				if byLanguage[cfg.Language] == nil {
					byLanguage[cfg.Language] = map[string]*rule.Core{}
				}
				byLanguage[cfg.Language][cfg.ID] = core
			}

			w := walker.New()
			var results []printer.FileResult
			anyMatch := false
			for langName, rules := range byLanguage {
				language, _ := reg.Get(langName)
				scanner := scan.New(language, rules)
				for _, p := range paths {
					fileResults, err := collectResults(cmd.Context(), w, reg, p, scanner)
					if err != nil {
						fmt.Fprintln(os.Stderr, "sg scan:", err)
						return withExit(ExitConfigIOError)
					}
					for _, fr := range fileResults {
						if len(fr.Matches) > 0 {
							anyMatch = true
						}
					}
					results = append(results, fileResults...)
				}
			}

			if fixInPlace {
				if err := applyFixes(results); err != nil {
					fmt.Fprintln(os.Stderr, "sg scan:", err)
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

	cmd.Flags().StringVarP(&projectDir, "config", "c", ".", "project directory containing sgconfig.yml")
	cmd.Flags().StringVarP(&ruleFile, "rule", "r", "", "run a single rule YAML file instead of a project's configured rules")
	cmd.Flags().StringVar(&format, "format", "human", "output format: human|json|sarif")
	cmd.Flags().BoolVar(&fixInPlace, "fix", false, "write generated fixes back to disk")
	return cmd
}
