// Command sg is the structural search-and-rewrite CLI (spec.md §6). Flag
// parsing and exit-code handling follow the shape of the teacher's
// cmd/morfx/main.go (buildConfigFromFlags -> Runner -> handleOutputAndExit),
// rebuilt on spf13/cobra subcommands instead of a single pflag.FlagSet,
// since the spec calls for a multi-verb CLI (run/scan/test/new/lsp) rather
// than one flat command.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/oxhq/sg/cmd/sg/internal/app"
)

func main() {
	_ = godotenv.Load() // optional .env loaded into the process environment; absence is not an error
	os.Exit(app.Execute(os.Args[1:]))
}
