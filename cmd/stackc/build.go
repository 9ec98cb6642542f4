package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iley/stackc/internal/codegen"
)

// CompilationConfig holds the toolchain used to turn assembly into an executable.
type CompilationConfig struct {
	CC      string
	CCFlags []string
}

// getCompilationConfig picks the C compiler driver: the flag, then $CC, then cc.
func getCompilationConfig(ccFlag string) *CompilationConfig {
	cc := ccFlag
	if cc == "" {
		cc = os.Getenv("CC")
	}
	if cc == "" {
		cc = "cc"
	}
	return &CompilationConfig{CC: cc}
}

func newBuildCmd() *cobra.Command {
	var (
		outputFile string
		ccFlag     string
		keep       bool
	)

	cmd := &cobra.Command{
		Use:   "build [program]",
		Short: "Compile a program into an executable",
		Long:  "Compile a program, then assemble and link it with the system C compiler. The program's value becomes the exit status.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := compileSource(cmd, args)
			if err != nil {
				return err
			}

			var asmText bytes.Buffer
			if err := codegen.Generate(&asmText, codegen.TargetX86_64Linux, result.Program, codegen.Options{}); err != nil {
				return errors.Wrap(err, "generating code")
			}

			config := getCompilationConfig(ccFlag)
			return buildProgram(config, asmText.Bytes(), outputFile, keep)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "a.out", "output executable")
	cmd.Flags().StringVar(&ccFlag, "cc", "", "C compiler used to assemble and link (default $CC or cc)")
	cmd.Flags().BoolVarP(&keep, "keep", "k", false, "keep the intermediate .s file")
	return cmd
}

// buildProgram writes the assembly next to the output file and links it.
func buildProgram(config *CompilationConfig, asmText []byte, binFile string, keepIntermediate bool) error {
	baseName := strings.TrimSuffix(filepath.Base(binFile), filepath.Ext(binFile))
	asmFile := filepath.Join(filepath.Dir(binFile), baseName+".s")

	if err := os.WriteFile(asmFile, asmText, 0o644); err != nil {
		return errors.Wrap(err, "writing assembly")
	}
	if !keepIntermediate {
		defer os.Remove(asmFile)
	}

	args := append([]string{}, config.CCFlags...)
	args = append(args, "-o", binFile, asmFile)
	ccCmd := exec.Command(config.CC, args...)
	if output, err := ccCmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "%s failed: %s", config.CC, strings.TrimSpace(string(output)))
	}

	fmt.Printf("Built %s\n", binFile)
	return nil
}
