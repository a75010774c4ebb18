package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/c16lang/c16cc/pkg/cabs"
	"github.com/c16lang/c16cc/pkg/cgen"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
	"github.com/c16lang/c16cc/pkg/parser"
	"github.com/c16lang/c16cc/pkg/scope"
)

var version = "0.1.0"

// Debug flags for dumping intermediate representations
var (
	dAST bool
	dIR  bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the flags that accept traditional single-dash
// spelling.
var debugFlagNames = []string{"dast", "dir"}

// normalizeFlags converts single-dash debug flags like -dast to --dast
// for pflag compatibility.
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "c16cc [file]",
		Short: "c16cc generates 16-bit register IR from C syntax trees",
		Long: `c16cc is the code-generation core of a C cross-compiler for a
16-bit target. It reads a YAML syntax tree, runs type analysis and
code generation, and prints the resulting register IR.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			return compile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&dAST, "dast", false, "Dump the decoded syntax tree")
	rootCmd.Flags().BoolVar(&dIR, "dir", false, "Dump the generated IR (default output)")

	return rootCmd
}

func compile(filename string, out, errOut io.Writer) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "c16cc: error reading %s: %v\n", filename, err)
		return err
	}

	prog, err := cabs.NewDecoder(filename).DecodeProgram(data)
	if err != nil {
		fmt.Fprintf(errOut, "c16cc: %v\n", err)
		return err
	}

	if dAST {
		spew.Fdump(out, prog)
		return nil
	}

	rep := diag.NewReporter(errOut)
	mod, err := cgen.GenerateModule(parser.New(prog), rep, scope.NewSymbols())
	if err != nil {
		return err
	}
	if rep.Errors() > 0 {
		return fmt.Errorf("%d error(s)", rep.Errors())
	}

	ir.NewPrinter(out).PrintModule(mod)
	return nil
}
