package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamiltonlab/bluebook/internal/cliout"
	"github.com/hamiltonlab/bluebook/internal/docparse"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the extracted-text cache",
	Long: `Manage the extracted-text cache under the bluebook home.

Document text is cached after the first parse so repeated runs skip the
document parser. There is no invalidation: a changed source document
keeps serving stale text until its cache entry is cleared.

Examples:
  bluebook cache list   # List cached documents
  bluebook cache clear  # Delete all cached text`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}

		entries, err := docparse.NewCache(h).Entries()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Cache is empty")
			return nil
		}

		return cliout.Output(entries)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached text",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}

		removed, err := docparse.NewCache(h).Clear()
		if err != nil {
			return err
		}

		fmt.Printf("Removed %d cached documents\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
