package app

import (
	"fmt"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/cobra"

	"github.com/oxhq/sg/config"
	"github.com/oxhq/sg/core"
	"github.com/oxhq/sg/lang"
	"github.com/oxhq/sg/rule"
)

// newTestCmd implements `sg test` (spec.md §6): runs every rule-test.yml
// fixture in the project's configured testDirs against its matching rule,
// asserting Valid snippets never match and Invalid snippets always do
// (spec.md "Pattern fixture test format").
func newTestCmd() *cobra.Command {
	var projectDir string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run rule-test.yml fixtures against their rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := config.LoadProject(projectDir)
			if err != nil {
				return err
			}
			ruleConfigs, err := config.LoadRules(projectDir, proj.RuleDirs)
			if err != nil {
				return err
			}
			byID := map[string]*rule.Config{}
			for _, c := range ruleConfigs {
				byID[c.ID] = c
			}

			reg := registry()
			failures := 0
			total := 0
			for _, tc := range proj.TestConfigs {
				matches, _ := filepath.Glob(filepath.Join(projectDir, tc.TestDir, "*.yml"))
				for _, path := range matches {
					rt, err := config.LoadRuleTest(path)
					if err != nil {
						fmt.Fprintln(os.Stderr, "sg test:", err)
						failures++
						continue
					}
					cfg, ok := byID[rt.ID]
					if !ok {
						fmt.Fprintf(os.Stderr, "sg test: %s: no rule with id %q\n", path, rt.ID)
						failures++
						continue
					}
					language, ok := reg.Get(cfg.Language)
					if !ok {
						fmt.Fprintf(os.Stderr, "sg test: %s: unknown language %q\n", path, cfg.Language)
						failures++
						continue
					}
					compiled, err := rule.Compile(cfg, language)
					if err != nil {
						fmt.Fprintln(os.Stderr, "sg test:", err)
						failures++
						continue
					}
					n, f := runFixture(compiled, language, rt)
					total += n
					failures += f
				}
			}

			fmt.Printf("%d assertions, %d failed\n", total, failures)
			if failures > 0 {
				return withExit(ExitTestFailure)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "config", "c", ".", "project directory containing sgconfig.yml")
	return cmd
}

// runFixture checks every Valid snippet matches nothing and every Invalid
// snippet matches at least once, counting one assertion per snippet.
func runFixture(compiled *rule.Core, language lang.Language, rt *config.RuleTest) (total, failed int) {
	for _, src := range rt.Valid {
		total++
		if anyMatch(compiled, language, src) {
			failed++
			fmt.Printf("FAIL %s: expected no match in valid snippet %q\n", rt.ID, src)
		}
	}
	for _, src := range rt.Invalid {
		total++
		if !anyMatch(compiled, language, src) {
			failed++
			fmt.Printf("FAIL %s: expected a match in invalid snippet %q\n", rt.ID, src)
		}
	}
	return total, failed
}

func anyMatch(compiled *rule.Core, language lang.Language, src string) bool {
	doc, err := core.New([]byte(src), language)
	if err != nil {
		return false
	}
	defer doc.Close()

	source := doc.Source()
	found := false
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if found || n == nil {
			return
		}
		if _, ok := compiled.Match(n, source); ok {
			found = true
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(doc.Root())
	return found
}
