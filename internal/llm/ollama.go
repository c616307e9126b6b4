package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/momo-run/momo/internal/apperr"
)

// ollamaClient talks to Ollama's /api/chat endpoint, or any
// OpenAI-compatible-enough chat endpoint reachable at baseURL with a
// bearer API key. unavailableReason is set at construction when no
// usable backend was configured, mirroring LlmBackend::Unavailable.
type ollamaClient struct {
	baseURL           string
	model             string
	apiKey            string
	client            *http.Client
	maxRetries        int
	unavailableReason string
}

// New builds an LLM client. When model is empty the client reports
// itself unavailable rather than failing construction, so callers
// that never invoke it (e.g. a deployment with no configured LLM)
// keep working.
func New(baseURL, model, apiKey string, timeout time.Duration, maxRetries int) LLM {
	reason := ""
	if model == "" {
		reason = "no language model configured"
	}
	return &ollamaClient{
		baseURL:           strings.TrimRight(baseURL, "/"),
		model:             model,
		apiKey:            apiKey,
		client:            &http.Client{Timeout: timeout},
		maxRetries:        maxRetries,
		unavailableReason: reason,
	}
}

func (c *ollamaClient) IsAvailable() bool {
	return c.unavailableReason == "" && c.model != ""
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type apiErrorBody struct {
	Error string `json:"error"`
}

func (c *ollamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.IsAvailable() {
		return "", apperr.LLMUnavailable(c.unavailableReason)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []Message{{Role: "user", Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		return "", apperr.LLM("marshal chat request: %v", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts(c.maxRetries); attempt++ {
		content, err := c.doChat(ctx, reqBody)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts(c.maxRetries) {
			return "", err
		}
		backoff := time.Duration(100*pow2(attempt-1)) * time.Millisecond
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	return "", lastErr
}

func (c *ollamaClient) CompleteJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	text, err := c.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	extracted := extractJSON(text)
	if extracted == nil {
		return nil, apperr.LLM("response did not contain JSON")
	}
	return extracted, nil
}

func (c *ollamaClient) doChat(ctx context.Context, body []byte) (string, error) {
	url := fmt.Sprintf("%s/api/chat", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apperr.LLM("build chat request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperr.LLM("call chat endpoint: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", apperr.LLMAuth(readAPIError(resp.Body, resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := 0
		if v := resp.Header.Get("Retry-After"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				retryAfter = n
			}
		}
		return "", apperr.LLMRateLimited(retryAfter)
	case resp.StatusCode >= 500:
		return "", apperr.LLM("chat endpoint returned status %d: %s", resp.StatusCode, readAPIError(resp.Body, resp.StatusCode))
	case resp.StatusCode >= 400:
		return "", apperr.LLM("chat endpoint returned status %d: %s", resp.StatusCode, readAPIError(resp.Body, resp.StatusCode))
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperr.LLM("decode chat response: %v", err)
	}
	return payload.Message.Content, nil
}

func readAPIError(body io.Reader, status int) string {
	var e apiErrorBody
	if err := json.NewDecoder(body).Decode(&e); err == nil && e.Error != "" {
		return e.Error
	}
	return fmt.Sprintf("status %d", status)
}

// retryable classifies which failures are worth a retry: 401/403 are
// terminal, 429 surfaces RateLimited (not retried at this layer, the
// caller sees it immediately). Every other failure is retried: 5xx
// and connection errors, and also other 4xx statuses and decode
// errors, since doChat reports all of those as KindLLM.
func retryable(err error) bool {
	e, ok := apperr.As(err)
	if !ok {
		return true // not an *apperr.Error; treated as transient
	}
	switch e.Kind {
	case apperr.KindLLMAuth, apperr.KindLLMRateLimited:
		return false
	default:
		return true
	}
}

func maxAttempts(maxRetries int) int {
	if maxRetries < 1 {
		return 1
	}
	return maxRetries + 1
}

func pow2(n int) int {
	result := 1
	for i := 0; i < n; i++ {
		result *= 2
	}
	return result
}

// extractJSON pulls a JSON value out of an LLM completion that may
// wrap it in prose or a markdown code fence. Returns nil when no
// balanced JSON object or array can be found; CompleteJSON reports
// that case as a KindLLM error.
func extractJSON(text string) json.RawMessage {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return nil
	}
	for end := len(text); end > start; end-- {
		candidate := text[start:end]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate)
		}
	}
	return nil
}
