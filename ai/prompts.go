package ai

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Global map to track initialized prompt directories (to avoid duplicate logs)
var (
	initializedDirs   = make(map[string]bool)
	initializedDirsMu sync.RWMutex
)

// PromptManager loads system-prompt templates from an external directory.
// Lookup is locale-aware: "<name>.<locale>.txt" first, then "<name>.txt".
type PromptManager struct {
	PromptsDir string
}

// NewPromptManager creates a prompt manager
func NewPromptManager(promptsDir string) *PromptManager {
	initializedDirsMu.Lock()
	if !initializedDirs[promptsDir] {
		initializedDirs[promptsDir] = true
		log.Printf("[PromptManager] Initialized for directory: %s", promptsDir)
	}
	initializedDirsMu.Unlock()

	return &PromptManager{PromptsDir: promptsDir}
}

// LoadPrompt loads a prompt template by name and locale
func (pm *PromptManager) LoadPrompt(name, locale string) (string, error) {
	candidates := []string{name + ".txt"}
	if locale != "" {
		candidates = []string{name + "." + locale + ".txt", name + ".txt"}
	}

	for _, file := range candidates {
		content, err := os.ReadFile(filepath.Join(pm.PromptsDir, file))
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to load prompt %s: %w", name, err)
		}
	}

	return "", fmt.Errorf("prompt template not found: %s", name)
}

// Resolve renders a template, replacing {PLACEHOLDER} with values.
// Substitution is literal substring replacement; no escaping is applied.
func (pm *PromptManager) Resolve(name string, replacements map[string]string, locale string) (string, error) {
	template, err := pm.LoadPrompt(name, locale)
	if err != nil {
		return "", err
	}

	result := template
	for placeholder, value := range replacements {
		placeholderKey := "{" + placeholder + "}"
		result = strings.ReplaceAll(result, placeholderKey, value)
	}

	return result, nil
}
