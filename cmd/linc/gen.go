package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeeLin2602/lin-compiler/internal/codegen"
)

var genOutputDir string

var genCmd = &cobra.Command{
	Use:   "gen <ast.json>",
	Short: "Generate assembly for one program",
	Long:  "Decode an annotated syntax tree and write <dir>/<base>.S next to it. Use -o - to write to stdout.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := compilerFor(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		_, err = c.genFile(args[0], genOutputDir, cmd.OutOrStdout())
		return err
	},
}

func init() {
	genCmd.Flags().StringVarP(&genOutputDir, "o", "o", "", "output directory, or - for stdout (default from config)")
	rootCmd.AddCommand(genCmd)
}

// genFile writes the assembly for the program at input and returns the path
// written. With dir "-" the text goes to stdout and the path is empty.
func (c *compiler) genFile(input, dir string, stdout io.Writer) (string, error) {
	program, err := c.load(input)
	if err != nil {
		return "", err
	}

	if dir == "-" {
		return "", c.generate(stdout, program)
	}
	if dir == "" {
		dir = c.cfg.Output.Dir
	}

	path := codegen.OutputPath(input, dir, c.cfg.Output.Extension)
	out, err := codegen.CreateOutput(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.generate(&buf, program); err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}
	if _, err := buf.WriteTo(out); err != nil {
		out.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}

	c.log.Info("wrote assembly", "path", path)
	return path, nil
}
