package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamiltonlab/bluebook/internal/cliout"
	"github.com/hamiltonlab/bluebook/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage the bluebook configuration file.

Configuration lives at ~/.bluebook/config.yaml by default. API keys use
${ENV_VAR} references resolved from the environment or a .env file in
the working directory, so keys never live in the file itself.

Examples:
  bluebook config init  # Write the default config file
  bluebook config show  # Show the effective configuration`,
}

var configForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}

		if h.ConfigExists() && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", h.ConfigPath())
		}

		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", h.ConfigPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		cm, err := getConfig(h)
		if err != nil {
			return err
		}

		// API keys are shown as written: ${ENV_VAR} references stay
		// unresolved so secrets never land in terminal scrollback.
		return cliout.Output(cm.Get())
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(configCmd)
}
