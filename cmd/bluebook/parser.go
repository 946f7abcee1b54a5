package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamiltonlab/bluebook/internal/config"
	"github.com/hamiltonlab/bluebook/internal/docparse"
)

var parserCmd = &cobra.Command{
	Use:   "parser",
	Short: "Manage the local parser container",
	Long: `Manage the local document parser container lifecycle.

In "local" parser mode documents are converted to markdown by a
docling-serve container instead of the hosted service. These commands
control that container; hosted and text modes need no container.

Examples:
  bluebook parser start   # Start the parser container
  bluebook parser stop    # Stop the container
  bluebook parser status  # Check container status
  bluebook parser logs    # View container logs`,
}

var parserStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the parser container",
	Long: `Start the parser container.

If the container doesn't exist, it will be created and started.
If it exists but is stopped, it will be started.
If it's already running, this is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getParserManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Starting parser...")
		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("failed to start parser: %w", err)
		}

		fmt.Printf("Parser is running at %s\n", mgr.URL())
		return nil
	},
}

var parserStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the parser container",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getParserManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Stopping parser...")
		if err := mgr.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop parser: %w", err)
		}

		fmt.Println("Parser stopped")
		return nil
	},
}

var parserStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show parser container status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := getParserConfig()
		if err != nil {
			return err
		}
		mgr, err := newParserManager(cfg)
		if err != nil {
			return err
		}
		defer mgr.Close()

		status, err := mgr.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		switch status {
		case docparse.StatusRunning:
			fmt.Printf("Status: %s\n", status)
			fmt.Printf("URL: %s\n", mgr.URL())

			// Try health check
			client := docparse.NewLocalClient(docparse.LocalConfig{Port: cfg.Parser.Port})
			if err := client.HealthCheck(ctx); err != nil {
				fmt.Printf("Health: unhealthy (%v)\n", err)
			} else {
				fmt.Println("Health: healthy")
			}
		case docparse.StatusStopped:
			fmt.Printf("Status: %s (use 'bluebook parser start' to start)\n", status)
		case docparse.StatusNotFound:
			fmt.Printf("Status: %s (use 'bluebook parser start' to create)\n", status)
		default:
			fmt.Printf("Status: %s\n", status)
		}

		return nil
	},
}

var parserLogsTail string

var parserLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show parser container logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getParserManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		logs, err := mgr.Logs(ctx, parserLogsTail)
		if err != nil {
			return fmt.Errorf("failed to get logs: %w", err)
		}

		fmt.Print(logs)
		return nil
	},
}

var parserRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the parser container",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getParserManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Removing parser container...")
		if err := mgr.Remove(ctx); err != nil {
			return fmt.Errorf("failed to remove container: %w", err)
		}

		fmt.Println("Parser container removed")
		return nil
	},
}

func init() {
	parserCmd.AddCommand(parserStartCmd)
	parserCmd.AddCommand(parserStopCmd)
	parserCmd.AddCommand(parserStatusCmd)
	parserCmd.AddCommand(parserLogsCmd)
	parserCmd.AddCommand(parserRemoveCmd)

	parserLogsCmd.Flags().StringVar(&parserLogsTail, "tail", "100", "Number of lines to show from the end")

	rootCmd.AddCommand(parserCmd)
}

// getParserConfig loads configuration for the parser commands.
func getParserConfig() (*config.Config, error) {
	h, err := getHome()
	if err != nil {
		return nil, err
	}
	cm, err := getConfig(h)
	if err != nil {
		return nil, err
	}
	return cm.Get(), nil
}

// getParserManager creates a Docker manager from the configured container
// settings.
func getParserManager() (*docparse.DockerManager, error) {
	cfg, err := getParserConfig()
	if err != nil {
		return nil, err
	}
	return newParserManager(cfg)
}

func newParserManager(cfg *config.Config) (*docparse.DockerManager, error) {
	return docparse.NewDockerManager(docparse.DockerConfig{
		ContainerName: cfg.Parser.ContainerName,
		Image:         cfg.Parser.Image,
		HostPort:      cfg.Parser.Port,
	})
}
