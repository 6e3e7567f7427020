package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"meme-creator/internal/logging"
	"meme-creator/internal/version"
)

// DefaultImgflipURL is the public imgflip catalog endpoint.
const DefaultImgflipURL = "https://api.imgflip.com/get_memes"

type imgflipResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	Data         struct {
		Memes []Template `json:"memes"`
	} `json:"data"`
}

// ImgflipClient fetches the catalog from the imgflip API.
type ImgflipClient struct {
	URL    string
	Client *http.Client
}

// NewImgflipClient returns a client for endpoint (DefaultImgflipURL if empty)
// with the given request timeout.
func NewImgflipClient(endpoint string, timeout time.Duration) *ImgflipClient {
	if endpoint == "" {
		endpoint = DefaultImgflipURL
	}
	return &ImgflipClient{URL: endpoint, Client: &http.Client{Timeout: timeout}}
}

// FetchTemplates implements Provider.
func (c *ImgflipClient) FetchTemplates(ctx context.Context) ([]Template, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrFetchFailure, resp.Status)
	}

	var body imgflipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrFetchFailure, err)
	}
	if !body.Success {
		return nil, fmt.Errorf("%w: %s", ErrFetchFailure, body.ErrorMessage)
	}
	logging.Logger().Debug("templates: fetched", slog.Int("count", len(body.Data.Memes)))
	if body.Data.Memes == nil {
		return []Template{}, nil
	}
	return body.Data.Memes, nil
}
