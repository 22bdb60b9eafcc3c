package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oxhq/sg/config"
	"github.com/oxhq/sg/rule"
)

// newNewCmd implements `sg new {project|rule|test|util} [NAME]`
// (spec.md §6), scaffolding a fresh file and refusing to clobber an
// existing one (exit 17, ExitArtefactExists).
func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Scaffold a new project, rule, test, or util",
	}
	cmd.AddCommand(newNewProjectCmd(), newNewRuleCmd(), newNewTestCmd(), newNewUtilCmd())
	return cmd
}

func newNewProjectCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Scaffold a new sgconfig.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := config.InitProject(dir, &config.Project{RuleDirs: []string{"rules"}})
			if err != nil {
				if ce, ok := err.(*config.Error); ok && ce.Kind == "ProjectAlreadyExists" {
					fmt.Fprintln(os.Stderr, ce.Error())
					return withExit(ExitArtefactExists)
				}
				return err
			}
			fmt.Println("wrote", filepath.Join(dir, "sgconfig.yml"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")
	return cmd
}

func newNewRuleCmd() *cobra.Command {
	var dir, language string
	cmd := &cobra.Command{
		Use:   "rule NAME",
		Short: "Scaffold a new rule YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return withExit(ExitInsufficientArgs)
			}
			name := args[0]
			path := filepath.Join(dir, name+".yml")
			err := config.WriteNewRuleFile(path, &rule.Config{
				ID:       name,
				Language: language,
				Severity: rule.SeverityWarning,
				Rule:     rule.MatcherSpec{Pattern: "$EXPR"},
			})
			if err != nil {
				if ce, ok := err.(*config.Error); ok && ce.Kind == "FileAlreadyExists" {
					fmt.Fprintln(os.Stderr, ce.Error())
					return withExit(ExitArtefactExists)
				}
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "rules", "directory to write the rule into")
	cmd.Flags().StringVarP(&language, "lang", "l", "go", "target language")
	return cmd
}

func newNewTestCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "test NAME",
		Short: "Scaffold a new rule-test.yml fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return withExit(ExitInsufficientArgs)
			}
			name := args[0]
			path := filepath.Join(dir, name+".yml")
			err := config.WriteNewRuleTest(path, &config.RuleTest{ID: name})
			if err != nil {
				if ce, ok := err.(*config.Error); ok && ce.Kind == "FileAlreadyExists" {
					fmt.Fprintln(os.Stderr, ce.Error())
					return withExit(ExitArtefactExists)
				}
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "tests", "directory to write the fixture into")
	return cmd
}

func newNewUtilCmd() *cobra.Command {
	var dir, language string
	cmd := &cobra.Command{
		Use:   "util NAME",
		Short: "Scaffold a new shared util matcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return withExit(ExitInsufficientArgs)
			}
			name := args[0]
			path := filepath.Join(dir, name+".yml")
			err := config.WriteNewRuleFile(path, &rule.Config{
				ID:       name,
				Language: language,
				Rule:     rule.MatcherSpec{Kind: "identifier"},
			})
			if err != nil {
				if ce, ok := err.(*config.Error); ok && ce.Kind == "FileAlreadyExists" {
					fmt.Fprintln(os.Stderr, ce.Error())
					return withExit(ExitArtefactExists)
				}
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "utils", "directory to write the util into")
	cmd.Flags().StringVarP(&language, "lang", "l", "go", "target language")
	return cmd
}
