// Package insight asks a local text-generation endpoint (Ollama's
// /api/generate) for coaching insights and decodes its replies into typed
// records. Every call is total: failures are retried, then replaced by a
// static default reply, and never returned to the caller as errors.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/logger"
)

type Config struct {
	BaseURL     string
	Model       string
	Token       string // sent as a bearer token when set
	MaxAttempts int
	Delay       time.Duration
	Timeout     time.Duration // per attempt
}

// DefaultConfig targets a local Ollama server.
func DefaultConfig() Config {
	return Config{
		BaseURL:     constants.DefaultInsightBaseURL,
		Model:       constants.DefaultInsightModel,
		MaxAttempts: constants.DefaultInsightMaxAttempts,
		Delay:       constants.DefaultInsightDelay,
		Timeout:     constants.DefaultInsightTimeout,
	}
}

type Client struct {
	cfg   Config
	http  *http.Client
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSleep replaces the backoff wait. It must return ctx.Err() when ctx
// ends first.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

func New(cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Delay < 0 {
		cfg.Delay = def.Delay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:   cfg,
		http:  &http.Client{},
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Config() Config {
	return c.cfg
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// generate performs one POST to <base>/generate and returns the raw
// response text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: c.cfg.Model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", &EndpointUnavailableError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &EndpointUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &EndpointUnavailableError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("Insight endpoint returned error status", "status", resp.StatusCode, "body", truncate(string(body), 200))
		return "", &EndpointUnavailableError{StatusCode: resp.StatusCode}
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &MalformedReplyError{Reason: "response envelope is not JSON", Err: err}
	}
	return out.Response, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
