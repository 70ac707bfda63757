package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeeLin2602/lin-compiler/internal/codegen/riscv"
)

var buildOutputFile string

var buildCmd = &cobra.Command{
	Use:   "build <ast.json>",
	Short: "Build a RISC-V executable",
	Long:  "Generate assembly, add the I/O runtime and link both with the configured cross compiler.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := compilerFor(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		keep, _ := cmd.Flags().GetBool("keep")
		cmd.SilenceUsage = true

		binFile, err := c.build(args[0], buildOutputFile, keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Built %s\n", binFile)
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolP("keep", "k", false, "keep intermediate files (.S)")
	buildCmd.Flags().StringVarP(&buildOutputFile, "o", "o", "", "output file name")
	rootCmd.AddCommand(buildCmd)
}

// build compiles input into an executable and returns its path.
func (c *compiler) build(input, binFile string, keepIntermediate bool) (string, error) {
	if binFile == "" {
		binFile = strings.TrimSuffix(input, filepath.Ext(input))
		if binFile == input {
			binFile += ".elf"
		}
	}
	outputDir := filepath.Dir(binFile)

	asmFile, err := c.genFile(input, outputDir, nil)
	if err != nil {
		return "", err
	}

	runtimeFile := filepath.Join(outputDir, "lin_runtime"+c.cfg.Output.Extension)
	if err := os.WriteFile(runtimeFile, []byte(riscv.RuntimeFor(c.cfg.ABI)), 0o644); err != nil {
		return "", fmt.Errorf("writing runtime: %w", err)
	}
	if !keepIntermediate {
		defer os.Remove(asmFile)
		defer os.Remove(runtimeFile)
	}

	args := append([]string{}, c.cfg.Toolchain.CFlags...)
	args = append(args, "-o", binFile, asmFile, runtimeFile)
	c.log.Debug("invoking cross compiler", "cc", c.cfg.Toolchain.CC, "args", args)

	ccCmd := exec.Command(c.cfg.Toolchain.CC, args...)
	if output, err := ccCmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s failed: %w\nOutput: %s", c.cfg.Toolchain.CC, err, string(output))
	}
	return binFile, nil
}
