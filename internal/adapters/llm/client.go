package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.4
	defaultMaxTokens   = 400
)

// ChatClient implements the LLMClient capability against an
// OpenAI-compatible chat completions endpoint. Requests are rate limited
// client-side; all failures surface as transient dependency errors so
// the pipeline falls back to templates.
type ChatClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
	model       string
}

// NewChatClient creates a client. Rate limit: 2 requests per second
// with burst of 4.
func NewChatClient(baseURL, apiKey, model string) *ChatClient {
	return &ChatClient{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(2), 4),
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate produces one completion for the prompt and history
func (c *ChatClient) Generate(ctx context.Context, systemPrompt string, history []common.ChatMessage, opts common.GenerateOptions) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", shared.NewTransientDependencyError("llm rate limit wait cancelled", err)
	}

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	messages := make([]chatMessage, 0, len(history)+1)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal llm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", shared.NewTransientDependencyError("llm request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", shared.NewTransientDependencyError("failed to read llm response", err)
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return "", shared.NewTransientDependencyError(
			fmt.Sprintf("llm returned status %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", shared.NewPermanentDependencyError(
			fmt.Sprintf("llm returned status %d: %s", resp.StatusCode, string(raw)), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", shared.NewTransientDependencyError("malformed llm response", err)
	}
	if parsed.Error != nil {
		return "", shared.NewTransientDependencyError("llm error: "+parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", shared.NewTransientDependencyError("llm returned no choices", nil)
	}
	return parsed.Choices[0].Message.Content, nil
}
