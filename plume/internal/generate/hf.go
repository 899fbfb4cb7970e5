package generate

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

const hfBaseURL = "https://api-inference.huggingface.co/models/"

// HFConfig configures the HuggingFace summarization client.
type HFConfig struct {
	Token string
	// Model is the inference model id. Default: facebook/bart-large-cnn.
	Model string
	// BaseURL overrides the inference endpoint, mainly for tests.
	BaseURL string
	// Timeout applies per request. Default: 30s.
	Timeout time.Duration
}

func (c *HFConfig) defaults() {
	if c.Model == "" {
		c.Model = "facebook/bart-large-cnn"
	}
	if c.BaseURL == "" {
		c.BaseURL = hfBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// HFClient implements Summarizer against the HuggingFace inference API.
type HFClient struct {
	config HFConfig
	client *http.Client
}

var _ Summarizer = (*HFClient)(nil)

// NewHFClient builds a client. The token may be empty; Summarize then
// fails and the generator falls back to templates.
func NewHFClient(cfg HFConfig) *HFClient {
	cfg.defaults()
	return &HFClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxLength         int     `json:"max_length"`
	MinLength         int     `json:"min_length"`
	DoSample          bool    `json:"do_sample"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

type hfResponse struct {
	SummaryText string `json:"summary_text"`
}

// Summarize sends the prompt to the inference API and returns the
// model's summary text.
func (c *HFClient) Summarize(ctx context.Context, prompt string) (string, error) {
	if c.config.Token == "" {
		return "", fmt.Errorf("huggingface token not configured")
	}

	body, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxLength:         350,
			MinLength:         100,
			DoSample:          true,
			Temperature:       0.7,
			TopP:              0.9,
			RepetitionPenalty: 1.2,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.config.BaseURL + c.config.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call inference api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("inference api %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	payload, err := urlsafe.LimitedReadAll(resp.Body, urlsafe.MaxResponseBody)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var out []hfResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out) == 0 || out[0].SummaryText == "" {
		return "", fmt.Errorf("inference api returned no summary")
	}
	return out[0].SummaryText, nil
}
