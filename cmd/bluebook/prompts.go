package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamiltonlab/bluebook/internal/cliout"
	"github.com/hamiltonlab/bluebook/internal/delegation"
	"github.com/hamiltonlab/bluebook/internal/home"
	"github.com/hamiltonlab/bluebook/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect extraction prompts",
	Long: `Inspect the prompts used by extraction calls.

Embedded defaults ship with the binary. Dropping a file named
<key>.tmpl into the home prompts directory overrides the default on the
next run.

Examples:
  bluebook prompts list                             # List prompts and override state
  bluebook prompts show delegation.extract.system   # Print the effective text`,
}

// promptInfo is one row of the prompts list.
type promptInfo struct {
	Key         string   `json:"key" yaml:"key"`
	Description string   `json:"description" yaml:"description"`
	Variables   []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Override    bool     `json:"override" yaml:"override"`
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts and their override state",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		resolver := newPromptResolver(h)

		var infos []promptInfo
		for _, p := range resolver.AllEmbedded() {
			resolved, err := resolver.Resolve(p.Key)
			if err != nil {
				return err
			}
			infos = append(infos, promptInfo{
				Key:         p.Key,
				Description: p.Description,
				Variables:   p.Variables,
				Override:    resolved.IsOverride,
			})
		}

		return cliout.Output(infos)
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the effective prompt text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}

		resolved, err := newPromptResolver(h).Resolve(args[0])
		if err != nil {
			return err
		}

		fmt.Print(resolved.Text)
		return nil
	},
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)

	rootCmd.AddCommand(promptsCmd)
}

// newPromptResolver builds a resolver with every embedded prompt
// registered and overrides sourced from the home prompts directory.
func newPromptResolver(h *home.Dir) *prompts.Resolver {
	resolver := prompts.NewResolver(h.PromptsPath(), newLogger())
	delegation.RegisterPrompts(resolver)
	return resolver
}
