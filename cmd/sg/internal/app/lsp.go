package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLSPCmd implements `sg lsp` (spec.md §6). Per the spec's Non-goals
// ("network I/O"), this stops at announcing the data model the lsp
// package exposes (Diagnostics, CodeActions) rather than opening a
// stdio/TCP JSON-RPC listener; wiring a transport is a follow-up that
// belongs to an editor-integration binary, not this engine.
func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "lsp",
		Short:  "Describe the language-server data model (no transport is started)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("sg lsp: protocol types only (see package lsp); no listener is started by this build")
			return nil
		},
	}
}
