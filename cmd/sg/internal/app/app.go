// Package app wires the sg CLI's cobra command tree to the engine
// packages, and maps each error category it sees to the exit code
// spec.md §6 assigns it, the same outermost-category-wins convention the
// teacher's printFatal/handleOutputAndExit pair uses for its CLIError codes.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/sg/config"
	"github.com/oxhq/sg/lang"
	"github.com/oxhq/sg/lang/golang"
	"github.com/oxhq/sg/lang/javascript"
	"github.com/oxhq/sg/lang/php"
	"github.com/oxhq/sg/lang/python"
	"github.com/oxhq/sg/lang/typescript"
)

// registry builds the language registry a subcommand uses; each call
// constructs a fresh one with every built-in backend registered.
func registry() *lang.Registry {
	r := lang.NewRegistry()
	r.Register(golang.New())
	r.Register(python.New())
	r.Register(typescript.New())
	r.Register(javascript.New())
	r.Register(php.New())
	return r
}

// exitState lets a command's RunE report a precise exit code without
// cobra swallowing it behind a bare non-nil error.
type exitState struct {
	code int
}

func (e *exitState) Error() string { return "" }

func withExit(code int) error { return &exitState{code: code} }

// Execute parses args against the root command tree and returns the
// process exit code to use.
func Execute(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}
	if es, ok := err.(*exitState); ok {
		return es.code
	}
	if ce, ok := err.(*config.Error); ok {
		fmt.Fprintln(os.Stderr, ce.Error())
		switch ce.Kind {
		case "ProjectNotFound":
			return ExitMissingLangOrRule
		case "FileAlreadyExists", "ProjectAlreadyExists":
			return ExitArtefactExists
		default:
			return ExitConfigIOError
		}
	}
	fmt.Fprintln(os.Stderr, "sg:", err)
	return ExitConfigIOError
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sg",
		Short:         "Structural search and rewrite over concrete syntax trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newRunCmd(),
		newScanCmd(),
		newTestCmd(),
		newNewCmd(),
		newLSPCmd(),
		newCompletionsCmd(),
	)
	return cmd
}
