package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultHuggingFaceURL is the hosted inference endpoint for flan-t5-xxl.
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/google/flan-t5-xxl"

// HuggingFace generates captions with a text2text inference endpoint.
type HuggingFace struct {
	URL    string
	Key    string
	Client *http.Client
}

// NewHuggingFace returns a generator for key. An empty url selects the default.
func NewHuggingFace(url, key string, timeout time.Duration) *HuggingFace {
	if url == "" {
		url = DefaultHuggingFaceURL
	}
	return &HuggingFace{URL: url, Key: key, Client: &http.Client{Timeout: timeout}}
}

// Generate implements Generator.
func (g *HuggingFace) Generate(ctx context.Context, req Request) (string, error) {
	if g.Key == "" {
		return "", fmt.Errorf("%w: no api key", ErrCaptionFailure)
	}
	body, err := json.Marshal(map[string]string{"inputs": prompt(req)})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCaptionFailure, err)
	}
	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := postJSON(ctx, g.Client, g.URL, g.Key, body, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrCaptionFailure)
	}
	return out[0].GeneratedText, nil
}
