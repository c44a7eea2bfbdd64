package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/dfrunza/ashp4c-go/internal/parser"
	"github.com/dfrunza/ashp4c-go/sema"
)

// newRootCommand builds the p4sema cobra command. Grounded on the
// teacher's cmd/cue/cmd commands: a cobra.Command with a RunE that
// returns an error rather than calling os.Exit directly, so run can
// translate that error into the CLI's exit-code contract itself.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var (
		langVersion string
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "p4sema <file>",
		Short: "Run the P4 semantic pipeline over a single source file",
		Args:  cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(args[0], langVersion, debug, stdout, stderr)
		},
	}
	cmd.Flags().StringVar(&langVersion, "lang-version", "", "P4 language version to gate syntax against (e.g. 16.0.0)")
	cmd.Flags().BoolVar(&debug, "debug", false, "dump the parsed AST and pipeline output maps with kr/pretty")
	return cmd
}

func runPipeline(filename, langVersion string, debug bool, stdout, stderr io.Writer) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	prog, syntaxDiags := parser.Parse(filename, src)
	if len(syntaxDiags) > 0 {
		first := syntaxDiags.Sorted().First()
		fmt.Fprintln(stderr, first.Error())
		return errSilent{}
	}

	if debug {
		fmt.Fprintf(stdout, "%# v\n", pretty.Formatter(prog))
	}

	result, diags := sema.Run(context.Background(), prog, sema.Config{
		LanguageVersion: langVersion,
	})
	if len(diags) > 0 {
		first := diags.Sorted().First()
		fmt.Fprintln(stderr, first.Error())
		return errSilent{}
	}

	if debug {
		fmt.Fprintf(stdout, "%# v\n", pretty.Formatter(result))
	}

	fmt.Fprintf(stdout, "scopes=%d decls=%d types=%d potypes=%d selected=%d run=%s\n",
		len(result.ScopeMap), len(result.DeclMap), len(result.TypeMap),
		len(result.PotypeMap), len(result.SelectedType), result.RunID)
	return nil
}

// errSilent signals a failure already reported to stderr in the §6
// diagnostic format, so main doesn't print cobra's own "Error: ..."
// wrapper on top of it.
type errSilent struct{}

func (errSilent) Error() string { return "" }

func run(args []string) int {
	cmd := newRootCommand(os.Stdout, os.Stderr)
	cmd.SetArgs(args)
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err != nil {
		if _, silent := err.(errSilent); !silent {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
