package main

import (
	"fmt"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/LeeLin2602/lin-compiler/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config <path>",
	Short: "Write the effective configuration to a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := do.Invoke[*config.Config](newContainer(configPath, verbose, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		if err := config.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
