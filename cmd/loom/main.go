package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "A declarative rendering engine for Go",
		Long: `Loom is a declarative UI rendering engine for Go.

Components are plain functions over tagged templates; the engine
mounts them into a server-side host tree and reconciles updates
via hook-based state. Features include:

  • Tagged-template compilation with typed dynamic parts
  • Hook-based state and effects
  • Minimal host mutations on re-render
  • Browser preview over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		previewCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
