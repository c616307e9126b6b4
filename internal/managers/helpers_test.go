package managers

import (
	"context"
	"encoding/json"
)

// fakeLLM is a scripted llm.LLM double for manager tests that need
// profile generation without a live model.
type fakeLLM struct {
	available    bool
	completeText string
	jsonResult   map[string][]string
}

func (f fakeLLM) IsAvailable() bool { return f.available }

func (f fakeLLM) Complete(context.Context, string) (string, error) {
	return f.completeText, nil
}

func (f fakeLLM) CompleteJSON(context.Context, string) (json.RawMessage, error) {
	raw, _ := json.Marshal(f.jsonResult)
	return raw, nil
}
