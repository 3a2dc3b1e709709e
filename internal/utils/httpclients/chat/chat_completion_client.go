package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"
)

// ChatCompletionRequest is the non-streaming request body. Temperature and MaxTokens are pointers so that an
// explicit zero temperature is still sent.
type ChatCompletionRequest struct {
	Model       string                         `json:"model"`
	Messages    []openai.ChatCompletionMessage `json:"messages"`
	Temperature *float64                       `json:"temperature,omitempty"`
	MaxTokens   *int                           `json:"max_tokens,omitempty"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

type ChatCompletionClient struct {
	client  *resty.Client
	baseURL string
	name    string
}

func NewChatCompletionClient(client *resty.Client, name, baseURL string) *ChatCompletionClient {
	return &ChatCompletionClient{
		client:  client,
		baseURL: normalizeBaseURL(baseURL),
		name:    name,
	}
}

// Name returns the client name used in logs.
func (c *ChatCompletionClient) Name() string {
	return c.name
}

// CreateChatCompletion posts one chat completion request. Transport failures are returned unchanged,
// HTTP failures as *StatusError.
func (c *ChatCompletionClient) CreateChatCompletion(ctx context.Context, apiKey string, request ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	resp, err := c.prepareRequest(ctx, apiKey).
		SetBody(request).
		Post(c.endpoint("/chat/completions"))
	if err != nil {
		return nil, err
	}

	body := resp.Bytes()
	if resp.StatusCode() >= 400 {
		return nil, errorFromResponse(resp.StatusCode(), body)
	}

	var respBody openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &respBody); err != nil {
		return nil, fmt.Errorf("decode chat completion response: %w", err)
	}
	return &respBody, nil
}

func (c *ChatCompletionClient) prepareRequest(ctx context.Context, apiKey string) *resty.Request {
	req := c.client.R().SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if strings.TrimSpace(apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}
	return req
}

func (c *ChatCompletionClient) endpoint(path string) string {
	if path == "" {
		return c.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if c.baseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

func errorFromResponse(status int, body []byte) *StatusError {
	statusErr := &StatusError{StatusCode: status}

	var errResp openai.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		statusErr.Message = errResp.Error.Message
		if code, ok := errResp.Error.Code.(string); ok {
			statusErr.Code = code
		} else if errResp.Error.Type != "" {
			statusErr.Code = errResp.Error.Type
		}
		return statusErr
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		trimmed = "empty response body"
	}
	statusErr.Message = trimmed
	return statusErr
}

func normalizeBaseURL(base string) string {
	trimmed := strings.TrimSpace(base)
	trimmed = strings.TrimRight(trimmed, "/")
	return trimmed
}
