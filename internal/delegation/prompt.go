package delegation

import (
	_ "embed"
	"fmt"

	"github.com/hamiltonlab/bluebook/internal/prompts"
)

//go:embed system.tmpl
var systemPrompt string

// SystemPrompt returns the system prompt for the extraction call.
func SystemPrompt() string {
	return systemPrompt
}

// PromptKey is the hierarchical key for this prompt.
const PromptKey = "delegation.extract.system"

// RegisterPrompts registers the delegation prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        systemPrompt,
		Description: "Delegation extractor system prompt - categorization policy for roster names",
	})
}

// BuildUserPrompt builds the user prompt for one country chunk.
func BuildUserPrompt(label, body string) string {
	return fmt.Sprintf("Extract the delegation session data for the country: %s.\n\nText:\n%s", label, body)
}
