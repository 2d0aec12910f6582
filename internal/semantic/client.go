// Package semantic delegates inconclusive content verdicts to an external
// text-completion service. The network client hides behind the Completer
// interface so the escalation path can be tested with canned replies.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/wcxxx57/bilibili-study-tool/internal/logger"
)

// ErrUnavailable indicates the completion service could not produce a reply:
// transport failure, timeout, or rate-limit saturation. Callers must surface
// this as "analysis unavailable", distinct from an inconclusive local verdict.
var ErrUnavailable = errors.New("semantic analysis service unavailable")

// Completer produces a free-form completion for a system instruction plus
// user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds settings for the Anthropic-backed completer. BaseURL overrides
// the API endpoint; leave empty for production.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
	RPS       int
	Burst     int
}

// Client is a rate-limited, timeout-bounded Anthropic messages client.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    logger.Logger
}

// NewClient creates a semantic completion client.
func NewClient(cfg Config, log logger.Logger) *Client {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = rps
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:       anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(maxTokens),
		timeout:   timeout,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		logger:    log,
	}
}

// Complete sends the prompt and returns the first text block of the reply.
// The call is bounded by the configured timeout and is never retried here;
// failures come back wrapped in ErrUnavailable.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.limiter.Allow() {
		c.logger.Warn("semantic call rejected by rate limiter")
		return "", fmt.Errorf("%w: rate limit exceeded", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	message, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.logger.Warn("semantic completion failed",
			logger.String("model", c.model),
			logger.Int64("elapsed_ms", time.Since(start).Milliseconds()),
			logger.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			c.logger.Debug("semantic completion ok",
				logger.String("model", c.model),
				logger.Int("reply_size", len(block.Text)),
				logger.Int64("tokens_in", message.Usage.InputTokens),
				logger.Int64("tokens_out", message.Usage.OutputTokens),
				logger.Int64("elapsed_ms", time.Since(start).Milliseconds()))
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("%w: no text content in reply", ErrUnavailable)
}
