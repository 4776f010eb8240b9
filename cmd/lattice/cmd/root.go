// Package cmd implements the lattice CLI (component L), following the
// teacher repo's cmd/cli/cmd layout: a root command plus one subcommand per
// concern (here, `render`) instead of per architecture.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "lattice",
	Short:        "Lattice template engine",
	Long:         `Lattice renders templates against a JSON root value.`,
	SilenceUsage: true,
}

// cliError carries the exit code a CLI-facing failure should produce
// (§6: 0 success, 1 argument error, 2 IO, 3 JSON parse failure, 4 template
// error), so Execute can translate an error into the right process exit.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func exitErrf(code int, format string, args ...any) error {
	return &cliError{code: code, err: fmt.Errorf(format, args...)}
}

// Execute runs the root command and exits the process with the exit code
// named by the failing command, or 1 if none was attached.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := 1
		var ce *cliError
		if errors.As(err, &ce) {
			code = ce.code
		}
		fmt.Fprintln(os.Stderr, "lattice:", err)
		os.Exit(code)
	}
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
