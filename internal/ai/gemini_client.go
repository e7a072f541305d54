package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient adapts the Google Gen AI SDK to the Runtime interface.
// The SDK client is built per call from the request context.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	newClient  func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error)
}

// NewGeminiClient returns a Gemini runtime. baseURL is optional and mostly useful for tests.
func NewGeminiClient(apiKey, baseURL string, httpTimeout time.Duration) *GeminiClient {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: httpTimeout},
		newClient:  genai.NewClient,
	}
}

func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	cfg := &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := c.newClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	temp := float32(req.Temperature)
	gcfg := &genai.GenerateContentConfig{Temperature: &temp}
	if req.MaxTokens > 0 {
		gcfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	var contents []*genai.Content
	var system []string
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}
	if len(system) > 0 {
		gcfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, gcfg)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	out := &GenerateResponse{
		ID:      resp.ResponseID,
		Choices: []Choice{{Message: Message{Role: "assistant", Content: resp.Text()}}},
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	out.RequestID = out.ID
	return out, nil
}

// classifyGeminiError maps SDK errors onto the shared typed errors.
func classifyGeminiError(err error) error {
	var gerr genai.APIError
	if errors.As(err, &gerr) {
		apiErr := &APIError{StatusCode: gerr.Code, Code: gerr.Status, Message: gerr.Message}
		return classifyAPIError(apiErr, nil)
	}
	var gptr *genai.APIError
	if errors.As(err, &gptr) && gptr != nil {
		apiErr := &APIError{StatusCode: gptr.Code, Code: gptr.Status, Message: gptr.Message}
		return classifyAPIError(apiErr, nil)
	}
	return &UnreachableError{Host: "generativelanguage.googleapis.com", Err: err}
}
