package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iley/stackc/internal/codegen"
	"github.com/iley/stackc/internal/compiler"
	"github.com/iley/stackc/internal/vm"
)

// TestCase is a program with the value it is expected to return.
type TestCase struct {
	Name         string
	SourceFile   string
	ExpectedFile string
}

var (
	testsDir string
	native   bool
	cc       string
)

// discoverTests finds all test cases in the tests directory
func discoverTests(testsDir string) ([]TestCase, error) {
	var tests []TestCase

	err := filepath.WalkDir(testsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".sc") {
			baseName := strings.TrimSuffix(filepath.Base(path), ".sc")
			expectedFile := filepath.Join(filepath.Dir(path), baseName+".out")

			if _, err := os.Stat(expectedFile); err == nil {
				tests = append(tests, TestCase{
					Name:         baseName,
					SourceFile:   path,
					ExpectedFile: expectedFile,
				})
			}
		}

		return nil
	})

	sort.Slice(tests, func(i, j int) bool {
		return tests[i].Name < tests[j].Name
	})
	return tests, err
}

// readExpectedValue reads the value a test program must return.
func readExpectedValue(expectedFile string) (int64, error) {
	content, err := os.ReadFile(expectedFile)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(content)), 10, 64)
}

func compileTest(testCase TestCase) (*compiler.Result, error) {
	content, err := os.ReadFile(testCase.SourceFile)
	if err != nil {
		return nil, err
	}
	src := string(content)
	result, err := compiler.CompileString(src, compiler.Options{Filename: testCase.SourceFile})
	if err != nil {
		return nil, errors.New(compiler.Diagnostic(src, err))
	}
	return result, nil
}

// runEmulated executes the program on the emulator.
func runEmulated(result *compiler.Result) (int64, error) {
	res, err := vm.Run(result.Lines)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// runNative assembles and links the program, runs it and returns its exit status.
func runNative(result *compiler.Result, dir string) (int64, error) {
	var asmText bytes.Buffer
	if err := codegen.Generate(&asmText, codegen.TargetX86_64Linux, result.Program, codegen.Options{}); err != nil {
		return 0, err
	}

	asmFile := filepath.Join(dir, "prog.s")
	binFile := filepath.Join(dir, "prog")
	if err := os.WriteFile(asmFile, asmText.Bytes(), 0o644); err != nil {
		return 0, err
	}

	ccCmd := exec.Command(cc, "-o", binFile, asmFile)
	if output, err := ccCmd.CombinedOutput(); err != nil {
		return 0, errors.Wrapf(err, "linking failed: %s", string(output))
	}

	err := exec.Command(binFile).Run()
	if err == nil {
		return 0, nil
	}
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return int64(exitError.ExitCode()), nil
	}
	return 0, err
}

// runSingleTest runs a single test case and returns pass/fail status
func runSingleTest(testCase TestCase, workDir string) (bool, string) {
	fmt.Printf("Running test %s... ", testCase.Name)

	expected, err := readExpectedValue(testCase.ExpectedFile)
	if err != nil {
		return false, fmt.Sprintf("error reading expected value: %v", err)
	}

	result, err := compileTest(testCase)
	if err != nil {
		return false, fmt.Sprintf("compilation error:\n%v", err)
	}

	var actual int64
	if native {
		actual, err = runNative(result, workDir)
		// The exit status only keeps the low byte.
		expected &= 0xff
	} else {
		actual, err = runEmulated(result)
	}
	if err != nil {
		return false, fmt.Sprintf("runtime error: %v", err)
	}

	if actual != expected {
		return false, fmt.Sprintf("value mismatch: expected %d, got %d", expected, actual)
	}
	return true, ""
}

// findTestCase finds a test case by number or name
func findTestCase(tests []TestCase, identifier string) (*TestCase, error) {
	identifier = strings.TrimSuffix(filepath.Base(identifier), ".sc")
	for _, test := range tests {
		if test.Name == identifier || strings.HasPrefix(test.Name, identifier+"_") {
			return &test, nil
		}
	}
	return nil, fmt.Errorf("test not found: %s", identifier)
}

var rootCmd = &cobra.Command{
	Use:          "testrunner [test]",
	Short:        "Run the example programs and compare the values they return",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		tests, err := discoverTests(testsDir)
		if err != nil {
			return errors.Wrap(err, "discovering tests")
		}
		if len(tests) == 0 {
			fmt.Printf("No tests found in %s\n", testsDir)
			return nil
		}

		testsToRun := tests
		if len(args) > 0 {
			testCase, err := findTestCase(tests, args[0])
			if err != nil {
				return err
			}
			testsToRun = []TestCase{*testCase}
			fmt.Printf("Running specific test: %s\n", testCase.Name)
		} else if len(tests) == 1 {
			fmt.Printf("Found 1 test\n")
		} else {
			fmt.Printf("Found %d tests\n", len(tests))
		}

		workDir, err := os.MkdirTemp("", "stackc-tests")
		if err != nil {
			return err
		}
		defer os.RemoveAll(workDir)

		passed, failed := 0, 0
		for _, test := range testsToRun {
			success, errorMsg := runSingleTest(test, workDir)
			if success {
				fmt.Println("PASS")
				passed++
			} else {
				fmt.Printf("FAIL - %s\n", errorMsg)
				failed++
			}
		}

		if failed == 0 {
			fmt.Printf("Test Results: %d passed. All good!\n", passed)
			return nil
		}
		fmt.Printf("Test Results: %d passed, %d failed\n", passed, failed)
		return fmt.Errorf("%d of %d tests failed", failed, passed+failed)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&testsDir, "dir", "d", filepath.Join("testdata", "programs"), "directory with .sc programs and .out files")
	rootCmd.Flags().BoolVar(&native, "native", false, "assemble, link and run the programs instead of emulating them")
	rootCmd.Flags().StringVar(&cc, "cc", "cc", "C compiler used with -native")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
