// Package chat talks to an OpenAI-compatible completion endpoint and decodes
// the structured command plan the model returns.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/viant/devchat/model/conversation"
	"github.com/viant/devchat/model/plan"
	"github.com/viant/devchat/tracing"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client is an OpenAI-compatible chat completion client.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// ClientOption customises the client
type ClientOption func(c *Client)

// WithBaseURL points the client at a different OpenAI-compatible endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new chat client
func NewClient(apiKey, model string, options ...ClientOption) *Client {
	ret := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// responseSchema constrains the model output to the command plan shape.
var responseSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"message": map[string]interface{}{"type": "string"},
		"commands": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"command":     map[string]interface{}{"type": "string"},
					"description": map[string]interface{}{"type": "string"},
				},
				"required":             []string{"command", "description"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"message", "commands"},
	"additionalProperties": false,
}

// Complete sends the conversation to the model and decodes its structured
// response.
func (c *Client) Complete(ctx context.Context, messages []conversation.Message) (*plan.Response, error) {
	ctx, span := tracing.StartSpan(ctx, "chat.complete", "CLIENT")
	response, err := c.complete(ctx, messages)
	tracing.EndSpan(span, err)
	return response, err
}

func (c *Client) complete(ctx context.Context, messages []conversation.Message) (*plan.Response, error) {
	reqBody := map[string]interface{}{
		"model":    c.model,
		"messages": messages,
		"response_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   "command_plan",
				"strict": true,
				"schema": responseSchema,
			},
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if span, ok := tracing.SpanFromContext(ctx); ok {
		span.SetStatusFromHTTPCode(resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var respData struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respData.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	return parseResponse(respData.Choices[0].Message.Content)
}

// parseResponse decodes the model content into a command plan. Models
// occasionally wrap JSON in a markdown fence, which is stripped first.
func parseResponse(text string) (*plan.Response, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	response := &plan.Response{}
	if err := json.Unmarshal([]byte(trimmed), response); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	return response, nil
}
