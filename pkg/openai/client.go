package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/samber/lo"
	gogpt "github.com/sashabaranov/go-openai"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

type Config struct {
	Token   string
	BaseURL string
	Model   string
	Referer string
	Title   string
	Timeout time.Duration
	Retry   RetryPolicy
}

type client struct {
	api   *gogpt.Client
	model string
}

func NewClient(cfg Config) (*client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = DefaultRetryPolicy
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base: cleanhttp.DefaultPooledTransport(),
			headers: map[string]string{
				"HTTP-Referer": cfg.Referer,
				"X-Title":      cfg.Title,
			},
		},
		Timeout: cfg.Timeout,
	}
	rc.RetryMax = cfg.Retry.Attempts - 1
	rc.RetryWaitMin = cfg.Retry.MinWait
	rc.RetryWaitMax = cfg.Retry.MaxWait
	rc.Backoff = cfg.Retry.backoff
	rc.CheckRetry = retryOnStatus
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = slog.Default()
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, retry int) {
		if retry > 0 {
			slog.WarnContext(req.Context(), "Retrying LLM request", "attempt", retry+1, "maxAttempts", cfg.Retry.Attempts)
		}
	}

	apiCfg := gogpt.DefaultConfig(cfg.Token)
	apiCfg.BaseURL = lo.Ternary(cfg.BaseURL != "", cfg.BaseURL, DefaultBaseURL)
	apiCfg.HTTPClient = rc.StandardClient()

	return &client{
		api:   gogpt.NewClientWithConfig(apiCfg),
		model: lo.Ternary(cfg.Model != "", cfg.Model, domain.DefaultModel),
	}, nil
}

// CreateChatCompletion sends messages as they are and returns the first choice's content.
func (c *client) CreateChatCompletion(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	slog.InfoContext(ctx, "LLM request: sending messages", "model", c.model, "messagesCount", len(messages))
	slog.DebugContext(ctx, "Payload to LLM", "messages", messages)

	resp, err := c.api.CreateChatCompletion(ctx, gogpt.ChatCompletionRequest{
		Model: c.model,
		Messages: lo.Map(messages, func(m domain.ChatMessage, _ int) gogpt.ChatCompletionMessage {
			return gogpt.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
		}),
	})
	if err != nil {
		return "", toStatusError(err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.ErrEmptyCompletion
	}

	content := resp.Choices[0].Message.Content
	slog.InfoContext(ctx, "LLM response received")
	slog.DebugContext(ctx, "LLM output", "content", content)

	return content, nil
}

func retryOnStatus(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return false, nil
	}
	return resp.StatusCode >= http.StatusBadRequest, nil
}

func toStatusError(err error) error {
	var apiErr *gogpt.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= http.StatusBadRequest {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, err: err}
	}

	var reqErr *gogpt.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode >= http.StatusBadRequest {
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Message: http.StatusText(reqErr.HTTPStatusCode), err: err}
	}

	return fmt.Errorf("creating chat completion: %w", err)
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}
