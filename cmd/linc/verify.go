package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var verifyNative bool

var verifyCmd = &cobra.Command{
	Use:   "verify [dir]",
	Short: "Run the program/expected-output pairs in a directory",
	Long: "Every <name>.json with a matching <name>.out is generated, executed and its output compared. " +
		"<name>.in, when present, is fed to the program. By default programs run in the built-in simulator; " +
		"--native builds them with the configured toolchain and runs them through toolchain.run.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "tests"
		if len(args) == 1 {
			dir = args[0]
		}
		c, err := compilerFor(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return c.verify(dir, verifyNative, cmd.OutOrStdout())
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyNative, "native", false, "build with the cross toolchain instead of simulating")
	rootCmd.AddCommand(verifyCmd)
}

type testCase struct {
	Name         string
	ProgramFile  string
	ExpectedFile string
	InputFile    string // empty when the program reads nothing
}

// discoverTests finds every program that has an expected output next to it.
func discoverTests(dir string) ([]testCase, error) {
	var tests []testCase

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		base := strings.TrimSuffix(path, ".json")
		expected := base + ".out"
		if _, err := os.Stat(expected); err != nil {
			return nil
		}

		tc := testCase{
			Name:         strings.TrimPrefix(filepath.ToSlash(strings.TrimPrefix(base, dir)), "/"),
			ProgramFile:  path,
			ExpectedFile: expected,
		}
		if _, err := os.Stat(base + ".in"); err == nil {
			tc.InputFile = base + ".in"
		}
		tests = append(tests, tc)
		return nil
	})

	sort.Slice(tests, func(i, j int) bool {
		return tests[i].Name < tests[j].Name
	})
	return tests, err
}

func (c *compiler) verify(dir string, native bool, stdout io.Writer) error {
	tests, err := discoverTests(dir)
	if err != nil {
		return fmt.Errorf("error discovering tests: %w", err)
	}
	if len(tests) == 0 {
		fmt.Fprintf(stdout, "No tests found in %s\n", dir)
		return nil
	}
	fmt.Fprintf(stdout, "Found %d tests\n", len(tests))

	passed, failed := 0, 0
	for _, tc := range tests {
		fmt.Fprintf(stdout, "Running test %s... ", tc.Name)
		if msg := c.runSingleTest(tc, native); msg != "" {
			fmt.Fprintf(stdout, "FAIL - %s\n", msg)
			failed++
		} else {
			fmt.Fprintln(stdout, "PASS")
			passed++
		}
	}

	if failed == 0 {
		fmt.Fprintf(stdout, "Test Results: %d passed. All good!\n", passed)
		return nil
	}
	fmt.Fprintf(stdout, "Test Results: %d passed, %d failed\n", passed, failed)
	return fmt.Errorf("%d of %d tests failed", failed, len(tests))
}

// runSingleTest returns an empty string on success and a failure description otherwise.
func (c *compiler) runSingleTest(tc testCase, native bool) string {
	expected, err := os.ReadFile(tc.ExpectedFile)
	if err != nil {
		return fmt.Sprintf("error reading expected output: %v", err)
	}

	var input []byte
	if tc.InputFile != "" {
		if input, err = os.ReadFile(tc.InputFile); err != nil {
			return fmt.Sprintf("error reading input: %v", err)
		}
	}

	var actual string
	if native {
		actual, err = c.runNative(tc, input)
	} else {
		var out bytes.Buffer
		err = c.simulate(tc.ProgramFile, bytes.NewReader(input), &out)
		actual = out.String()
	}
	if err != nil {
		return fmt.Sprintf("runtime error: %v", err)
	}

	if actual != string(expected) {
		return fmt.Sprintf("output mismatch:\nExpected: %q\nActual:   %q", string(expected), actual)
	}
	return ""
}

func (c *compiler) runNative(tc testCase, input []byte) (string, error) {
	if len(c.cfg.Toolchain.Run) == 0 {
		return "", errors.New("toolchain.run is not configured")
	}

	binFile := strings.TrimSuffix(tc.ProgramFile, ".json") + ".elf"
	if _, err := c.build(tc.ProgramFile, binFile, false); err != nil {
		return "", err
	}
	defer os.Remove(binFile)

	runArgs := append(append([]string{}, c.cfg.Toolchain.Run[1:]...), binFile)
	cmd := exec.Command(c.cfg.Toolchain.Run[0], runArgs...)
	cmd.Stdin = bytes.NewReader(input)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(output), fmt.Errorf("exit status %d", exitErr.ExitCode())
		}
		return "", err
	}
	return string(output), nil
}
