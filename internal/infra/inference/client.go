package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const retryInstruction = "Your previous reply was not valid JSON. Please return ONLY a valid JSON object matching the requested schema, with no markdown fences or extra text."

var ErrEmptyResponse = errors.New("empty response from model")

// Client calls an OpenAI-compatible chat-completions endpoint and
// extracts a JSON payload from the reply. A reply that fails to parse
// is retried exactly once with a corrective follow-up message; after
// that the error is surfaced to the caller, who is expected to fall
// back to deterministic scoring.
type Client struct {
	http        *http.Client
	endpoint    string
	model       string
	temperature float64
	maxTokens   int
}

type Config struct {
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewClient(httpClient *http.Client, cfg Config) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client is nil")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("inference endpoint is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "qwen/qwen-2.5-7b-instruct"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 900
	}

	return &Client{
		http:        httpClient,
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// InferJSON sends system+user prompts and unmarshals the first balanced
// JSON value found in the model output into target.
func (c *Client) InferJSON(ctx context.Context, systemPrompt, userPrompt string, target any) error {
	messages := []message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	raw, err := c.complete(ctx, messages)
	if err != nil {
		return err
	}

	extracted, extractErr := ExtractJSON(raw)
	if extractErr == nil {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	retryMessages := append(messages,
		message{Role: "assistant", Content: raw},
		message{Role: "user", Content: retryInstruction},
	)

	raw, err = c.complete(ctx, retryMessages)
	if err != nil {
		return err
	}

	extracted, err = ExtractJSON(raw)
	if err != nil {
		return fmt.Errorf("extract json after retry: %w", err)
	}
	if err := json.Unmarshal([]byte(extracted), target); err != nil {
		return fmt.Errorf("unmarshal model json: %w", err)
	}

	return nil
}

func (c *Client) complete(ctx context.Context, messages []message) (string, error) {
	payload := completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	url := c.endpoint + "/v1/proxy/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call inference endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("inference endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return decoded.Choices[0].Message.Content, nil
}
