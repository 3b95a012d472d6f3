package catalog

import (
	"strings"
	"testing"
)

func TestGetKnownModel(t *testing.T) {
	model, ok := Get("SWOT")
	if !ok {
		t.Fatal("SWOT should exist in the catalog")
	}
	if model.Name == "" || model.Description == "" {
		t.Errorf("model metadata incomplete: %+v", model)
	}
}

func TestGetUnknownModel(t *testing.T) {
	if _, ok := Get("not-a-model"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestAllModelsHaveUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, model := range All() {
		if model.ID == "" {
			t.Error("model with empty id")
		}
		if seen[model.ID] {
			t.Errorf("duplicate id %q", model.ID)
		}
		seen[model.ID] = true
	}
	if len(seen) < 10 {
		t.Errorf("catalog unexpectedly small: %d models", len(seen))
	}
}

func TestPromptListMentionsEveryModel(t *testing.T) {
	list := PromptList()
	for _, model := range All() {
		if !strings.Contains(list, model.ID) {
			t.Errorf("prompt list missing %q", model.ID)
		}
	}
}
