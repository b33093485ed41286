// Package llm wraps the external text-generation capability. The rest of
// the system depends on the Generator interface; the Gemini client here is
// the only implementation that talks to the network.
package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"system-builder-backend/internal/apperr"
)

// Options tune a single completion call.
type Options struct {
	Temperature float32
	MaxTokens   int32
}

// DefaultOptions mirror the upstream defaults used for refinement calls.
var DefaultOptions = Options{Temperature: 0.7, MaxTokens: 4000}

// Generator is the text-generation port. Implementations may fail or
// return malformed text; callers must treat output as untrusted.
type Generator interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, apperr.New(apperr.KindValidation, "gemini api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAIService, "failed to create gemini client", err)
	}

	return &Client{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     log,
	}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	if prompt == "" {
		return "", apperr.New(apperr.KindValidation, "prompt is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: opts.MaxTokens,
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		c.log.Warn("gemini call failed",
			zap.String("model", c.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", apperr.Wrap(apperr.KindAIService, "text generation service unavailable", err)
	}

	text := result.Text()
	if text == "" {
		return "", apperr.New(apperr.KindAIService, "text generation service returned an empty response")
	}

	c.log.Debug("gemini call completed",
		zap.String("model", c.model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(text)),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}
