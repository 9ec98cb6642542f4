package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iley/stackc/internal/ast"
	"github.com/iley/stackc/internal/codegen"
	"github.com/iley/stackc/internal/compiler"
	"github.com/iley/stackc/internal/vm"
)

// errReported means the diagnostic has already been printed.
var errReported = errors.New("compilation failed")

var (
	verbose    bool
	sourceFile string
)

var rootCmd = &cobra.Command{
	Use:           "stackc",
	Short:         "Compiler for a tiny arithmetic language targeting x86-64",
	Long:          "stackc compiles statements over integer arithmetic and comparisons into stack-machine x86-64 assembly.",
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log compilation stages")
	rootCmd.PersistentFlags().StringVarP(&sourceFile, "file", "f", "", "read the program from a file instead of the argument")
	rootCmd.AddCommand(newCompileCmd(), newRunCmd(), newBuildCmd())
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

// readSource returns the program text and a name for diagnostics.
func readSource(args []string) (string, string, error) {
	if sourceFile != "" {
		if len(args) > 0 {
			return "", "", errors.New("pass the program either as an argument or with -f, not both")
		}
		content, err := os.ReadFile(sourceFile)
		if err != nil {
			return "", "", errors.Wrap(err, "reading source")
		}
		return string(content), sourceFile, nil
	}
	if len(args) != 1 {
		return "", "", errors.New("expected exactly one program argument")
	}
	return args[0], "", nil
}

// compileSource runs the pipeline and prints a diagnostic on failure.
func compileSource(cmd *cobra.Command, args []string) (*compiler.Result, error) {
	src, name, err := readSource(args)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger()
	if err != nil {
		return nil, errors.Wrap(err, "creating logger")
	}
	defer logger.Sync() //nolint:errcheck

	cmd.SilenceUsage = true
	result, err := compiler.CompileString(src, compiler.Options{Filename: name, Logger: logger})
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.Diagnostic(src, err))
		return nil, errReported
	}
	return result, nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "writing output")
}

func newCompileCmd() *cobra.Command {
	var (
		outputFile string
		targetName string
		bare       bool
	)

	cmd := &cobra.Command{
		Use:   "compile [program]",
		Short: "Compile a program to assembly",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compileSource(cmd, args)
			if err != nil {
				return err
			}

			// Everything is rendered into memory first so a failure never leaves partial output.
			var out bytes.Buffer
			switch targetName {
			case "ast":
				fmt.Fprintln(&out, result.Program.String())
			case "source":
				ast.NewPrinter(&out).PrintProgram(result.Program)
			default:
				target, err := codegen.TargetFromName(targetName)
				if err != nil {
					return err
				}
				if err := codegen.Generate(&out, target, result.Program, codegen.Options{Bare: bare}); err != nil {
					return errors.Wrap(err, "generating code")
				}
			}
			return writeOutput(outputFile, out.Bytes())
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "-", "output file name")
	cmd.Flags().StringVarP(&targetName, "target", "t", "x86_64-linux", "target: x86_64-linux, x86_64-linux-att, ast or source")
	cmd.Flags().BoolVar(&bare, "bare", false, "emit only the instruction body")
	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [program]",
		Short: "Compile a program and execute it on the built-in emulator",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compileSource(cmd, args)
			if err != nil {
				return err
			}
			res, err := vm.Run(result.Lines)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Value)
			return nil
		},
	}
}

func printError(w io.Writer, err error) {
	if err == errReported {
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
