package profile

import (
	"context"
	"encoding/json"
	"errors"
)

type fakeLLM struct {
	available    bool
	completeText string
	completeErr  error
	jsonRaw      json.RawMessage
	jsonErr      error
}

func (f fakeLLM) IsAvailable() bool { return f.available }

func (f fakeLLM) Complete(context.Context, string) (string, error) {
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completeText, nil
}

func (f fakeLLM) CompleteJSON(context.Context, string) (json.RawMessage, error) {
	if f.jsonErr != nil {
		return nil, f.jsonErr
	}
	return f.jsonRaw, nil
}

var errBoom = errors.New("boom")
