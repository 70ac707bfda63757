package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/LeeLin2602/lin-compiler/internal/rvsim"
)

var runMaxSteps int

var runCmd = &cobra.Command{
	Use:   "run <ast.json>",
	Short: "Generate a program and execute it in the built-in simulator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := compilerFor(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return c.simulate(args[0], cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().IntVar(&runMaxSteps, "max-steps", rvsim.DefaultMaxSteps, "abort after this many instructions")
	rootCmd.AddCommand(runCmd)
}

func (c *compiler) simulate(input string, stdin io.Reader, stdout io.Writer) error {
	program, err := c.load(input)
	if err != nil {
		return err
	}

	var text bytes.Buffer
	if err := c.generate(&text, program); err != nil {
		return err
	}

	result, err := rvsim.Run(text.String(), rvsim.Options{
		Entry:       c.cfg.ABI.Entry,
		PrintHelper: c.cfg.ABI.PrintHelper,
		ReadHelper:  c.cfg.ABI.ReadHelper,
		Input:       stdin,
		Output:      stdout,
		MaxSteps:    runMaxSteps,
	})
	if err != nil {
		return fmt.Errorf("simulation of %s failed: %w", input, err)
	}
	c.log.Debug("simulation finished", "steps", result.Steps, "exit", result.Exit, "stack_balanced", result.StackBalanced)
	if !result.StackBalanced {
		return fmt.Errorf("simulation of %s left the stack unbalanced", input)
	}
	return nil
}
