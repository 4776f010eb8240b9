package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/keurnel/lattice"
	"github.com/keurnel/lattice/internal/diagnostics"
	"github.com/keurnel/lattice/internal/jsonvalue"
	"github.com/keurnel/lattice/internal/tmplsource"
	"github.com/keurnel/lattice/pkg/lerr"
)

var (
	searchDirs     []string
	rawOutput      bool
	ignoreEmitZero bool
)

var renderCmd = &cobra.Command{
	Use:   "render <template>...",
	Short: "Render one or more templates against a JSON root value read from standard input",
	Long: `render reads a JSON document from standard input and renders each
template argument against it, in order, writing output to standard output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringArrayVarP(&searchDirs, "search", "I", nil, "include search directory (repeatable; entries containing '*' are glob patterns)")
	renderCmd.Flags().BoolVar(&rawOutput, "raw", false, "disable the default HTML escaping of $[...] substitutions")
	renderCmd.Flags().BoolVar(&ignoreEmitZero, "ignore-emit-zero", false, "treat a zero-byte, nil-error write as success instead of an IO error")
}

func runRender(cmd *cobra.Command, args []string) error {
	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return exitErrf(2, "reading standard input: %w", err)
	}

	cap := jsonvalue.New()
	root, err := cap.Parse(string(input))
	if err != nil {
		return exitErrf(3, "parsing JSON root value: %w", err)
	}

	opts := lattice.Options{
		Search:         searchDirs,
		IgnoreEmitZero: ignoreEmitZero,
	}
	if rawOutput {
		opts.Escape = func(s string) string { return s }
	}

	diags := diagnostics.New()
	out := cmd.OutOrStdout()
	for _, path := range args {
		src, rerr := tmplsource.Load(path)
		if rerr != nil {
			return exitErrf(2, "reading template %q: %w", path, rerr)
		}
		entryOpts := opts
		entryOpts.Name = src.Ident()
		if _, lerrv := lattice.RenderToFile(context.Background(), src.Content(), cap, root, out, entryOpts); lerrv != nil {
			diags.Record(path, lerrv)
		}
	}

	if diags.HasErrors() {
		for _, entry := range diags.Entries() {
			fmt.Fprintln(cmd.ErrOrStderr(), entry.String())
		}
		return exitErrf(exitCodeFor(diags.Entries()[0].Err()), "%d template(s) failed to render", diags.Count())
	}
	return nil
}

// exitCodeFor maps an engine error's taxonomy code to the §6 exit code
// table. CodeJSON is included for completeness (root-value JSON failures are
// caught earlier, at parse time, but a capability Print failure mid-render,
// in a non-string substitution or the string() method, surfaces one too).
func exitCodeFor(err *lerr.Error) int {
	if err == nil {
		return 4
	}
	switch err.Code {
	case lerr.CodeIO:
		return 2
	case lerr.CodeJSON:
		return 3
	case lerr.CodeOptions:
		return 1
	default:
		return 4
	}
}
