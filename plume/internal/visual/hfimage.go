package visual

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/plume/urlsafe"
)

const hfImageBaseURL = "https://api-inference.huggingface.co/models/"

// maxImageBytes caps image downloads.
const maxImageBytes = 16 * urlsafe.MaxResponseBody

// HFImageConfig configures the HuggingFace text-to-image client.
type HFImageConfig struct {
	Token string
	// Model is the inference model id. Default: stabilityai/stable-diffusion-2-1.
	Model string
	// BaseURL overrides the inference endpoint, mainly for tests.
	BaseURL string
	// Width and Height of the generated image. Default: 768x432.
	Width  int
	Height int
	// Timeout applies per request. Default: 60s; image models are slow.
	Timeout time.Duration
}

func (c *HFImageConfig) defaults() {
	if c.Model == "" {
		c.Model = "stabilityai/stable-diffusion-2-1"
	}
	if c.BaseURL == "" {
		c.BaseURL = hfImageBaseURL
	}
	if c.Width <= 0 {
		c.Width = 768
	}
	if c.Height <= 0 {
		c.Height = 432
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

// HFImageClient implements Imager against the HuggingFace inference API.
type HFImageClient struct {
	config HFImageConfig
	client *http.Client
}

var _ Imager = (*HFImageClient)(nil)

// NewHFImageClient builds a client.
func NewHFImageClient(cfg HFImageConfig) *HFImageClient {
	cfg.defaults()
	return &HFImageClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Generate returns raw image bytes for the prompt.
func (c *HFImageClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if c.config.Token == "" {
		return nil, fmt.Errorf("huggingface token not configured")
	}

	body, err := json.Marshal(map[string]any{
		"inputs": prompt,
		"parameters": map[string]int{
			"width":  c.config.Width,
			"height": c.config.Height,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.config.BaseURL + c.config.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inference api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("inference api %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	img, err := urlsafe.LimitedReadAll(resp.Body, maxImageBytes)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("inference api returned empty image")
	}
	return img, nil
}
