package caption

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"meme-creator/internal/version"
)

const (
	DefaultOpenAIURL   = "https://api.openai.com/v1/chat/completions"
	DefaultOpenAIModel = "gpt-3.5-turbo"
	openAIMaxTokens    = 100
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAI generates captions with a chat-completions endpoint.
type OpenAI struct {
	URL    string
	Key    string
	Model  string
	Client *http.Client
}

// NewOpenAI returns a generator for the given key. Empty url and model select
// the defaults.
func NewOpenAI(url, key, model string, timeout time.Duration) *OpenAI {
	if url == "" {
		url = DefaultOpenAIURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{URL: url, Key: key, Model: model, Client: &http.Client{Timeout: timeout}}
}

// Generate implements Generator.
func (g *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if g.Key == "" {
		return "", fmt.Errorf("%w: no api key", ErrCaptionFailure)
	}
	system := fmt.Sprintf("You are a creative and witty caption generator for memes. "+
		"Generate a short, funny caption for the %q meme template. "+
		"The caption should roast a person named %q at a %s intensity level, with a %s style. "+
		"Keep it under 150 characters and appropriate for general audiences.",
		req.Template, req.Target, req.Intensity, req.Style)
	user := fmt.Sprintf("Create a %s roast caption for the %q meme about %s.", req.Style, req.Template, req.Target)

	body, err := json.Marshal(chatRequest{
		Model: g.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   openAIMaxTokens,
		Temperature: req.Intensity.Temperature(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCaptionFailure, err)
	}

	var out chatResponse
	if err := postJSON(ctx, g.Client, g.URL, g.Key, body, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrCaptionFailure, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrCaptionFailure)
	}
	return out.Choices[0].Message.Content, nil
}

// postJSON sends body with a bearer token and decodes the JSON reply into out.
func postJSON(ctx context.Context, client *http.Client, url, key string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCaptionFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCaptionFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", ErrCaptionFailure, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrCaptionFailure, err)
	}
	return nil
}
