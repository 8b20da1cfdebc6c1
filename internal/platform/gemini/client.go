package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// ErrEmptyResponse is returned when Gemini answers without any text part.
var ErrEmptyResponse = errors.New("empty response from Gemini")

// APIError wraps a failed Gemini call and keeps its HTTP status.
type APIError struct {
	Status int
	Err    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini request failed (status %d): %v", e.Status, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// HTTPStatus returns the status code Gemini answered with.
func (e *APIError) HTTPStatus() int { return e.Status }

// Client is a client for the Gemini API.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a new Gemini client for the named model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0.1)
	return &Client{client: client, model: m}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// DescribeImage sends the image and prompt and returns the raw reply text.
func (c *Client) DescribeImage(ctx context.Context, imageData []byte, mimeType, prompt string) (string, error) {
	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" || format == mimeType {
		format = "jpeg"
	}
	return c.generate(ctx, genai.ImageData(format, imageData), genai.Text(prompt))
}

// GenerateText sends a text-only prompt and returns the raw reply text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, genai.Text(prompt))
}

func (c *Client) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", wrapError(err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &APIError{Status: gerr.Code, Err: err}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}
