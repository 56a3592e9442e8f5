package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/bindvar/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┐ ┬┌┐┌┌┬┐┬  ┬┌─┐┬─┐
  ├┴┐││││ ││└┐┌┘├─┤├┬┘
  └─┘┴┘└┘─┴┘ └┘ ┴ ┴┴└─
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bindvar",
		Short: "Reactive value bindings for Go",
		Long: `bindvar is a lazy, memoizing reactive binding engine.

Cells hold values or derive them from other cells. Reads recompute
only what changed, and listeners hear about real changes only:

  • Dependencies discovered by reading, rebound on every evaluation
  • Notify eagerly, compute lazily
  • No-op suppression and cycle detection
  • Live inspector over HTTP and WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		demoCmd(),
		serveCmd(),
		configCmd(),
		versionCmd(),
	)

	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// failure prints a failed check.
func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
