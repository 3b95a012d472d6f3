package ports

// PromptResolver supplies named system-prompt templates with placeholder
// substitution. Pure, synchronous, side-effect-free.
type PromptResolver interface {
	Resolve(name string, variables map[string]string, locale string) (string, error)
}
