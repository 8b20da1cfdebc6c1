package localllm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the default endpoint of an LM Studio style server.
const DefaultBaseURL = "http://localhost:1234/v1"

// ErrNoChoices is returned when the server answers without any choice.
var ErrNoChoices = errors.New("no content found in response")

// Options configures the client.
type Options struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

// Client is a client for an OpenAI-compatible chat completions API.
type Client struct {
	http      *resty.Client
	model     string
	maxTokens int
}

// NewClient creates a new client for the local LLM.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json")
	if opts.APIKey != "" {
		rc.SetAuthToken(opts.APIKey)
	}

	return &Client{http: rc, model: opts.Model, maxTokens: opts.MaxTokens}
}

// Request represents the request body for the chat completions endpoint.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the request.
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

// Content is one text or image part of a message.
type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an inline data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// Response represents the response from the chat completions endpoint.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage represents a message in the response.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StatusError is returned for non-2xx answers.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-OK status code: %d", e.Status)
}

// HTTPStatus returns the status code the server answered with.
func (e *StatusError) HTTPStatus() int { return e.Status }

// DescribeImage sends the image as a data URL alongside the prompt.
func (c *Client) DescribeImage(ctx context.Context, imageData []byte, mimeType, prompt string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	url := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(imageData)
	return c.complete(ctx, 0.1,
		Content{Type: "text", Text: prompt},
		Content{Type: "image_url", ImageURL: &ImageURL{URL: url}},
	)
}

// GenerateText sends a text-only prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, 0.3, Content{Type: "text", Text: prompt})
}

func (c *Client) complete(ctx context.Context, temperature float64, content ...Content) (string, error) {
	reqBody := Request{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: content}},
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	}

	var out Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &StatusError{Status: resp.StatusCode(), Body: resp.String()}
	}

	if len(out.Choices) == 0 {
		return "", ErrNoChoices
	}
	return out.Choices[0].Message.Content, nil
}
