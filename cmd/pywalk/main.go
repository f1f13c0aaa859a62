// Command pywalk is a thin demonstration harness over the walker core: it
// wires internal/ptsource (a tree-sitter-backed pyast producer),
// internal/discover (file discovery), internal/config (settings), and
// internal/cache (diagnostics cache) around walker.Analyze. Per spec.md §1,
// file discovery and CLI policy are explicitly out of the core's scope;
// this binary is one concrete caller, not a specification of either.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/pywalk/cmd/pywalk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
