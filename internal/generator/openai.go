package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/logger"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 4096
	defaultTimeout   = 60 * time.Second
)

type Options struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration

	// Client credentials for gateways that sit behind an OAuth token endpoint.
	ClientID     string
	ClientSecret string
	TokenURL     string

	HTTPClient *http.Client
}

// Client talks to any OpenAI-compatible chat completions endpoint.
type Client struct {
	api       openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

func New(opts Options) *Client {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")+"/"))
	}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	httpClient := opts.HTTPClient
	if opts.ClientID != "" && opts.ClientSecret != "" && opts.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		base := context.Background()
		if httpClient != nil {
			base = context.WithValue(base, oauth2.HTTPClient, httpClient)
		}
		httpClient = cc.Client(base)
	}
	if httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(httpClient))
	}

	return &Client{
		api:       openai.NewClient(reqOpts...),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		timeout:   opts.Timeout,
	}
}

func (c *Client) Generate(ctx context.Context, req Request) (game.Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(req.Mode)),
			openai.UserMessage(userMessage(req)),
		},
		MaxTokens: openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		logger.Warn("generator request failed", zap.String("mode", string(req.Mode)), zap.Error(err))
		return game.Artifact{}, translateError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return game.Artifact{}, game.External("unexpected response from the generator")
	}
	artifact, ok := parseReply(req.Mode, resp.Choices[0].Message.Content)
	if !ok {
		logger.Warn("generator reply could not be parsed", zap.String("mode", string(req.Mode)))
		return game.Artifact{}, game.External("that prompt broke the generator's brain")
	}
	return artifact, nil
}

func translateError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return game.External("the generator is overloaded, wait a sec")
		case http.StatusUnauthorized, http.StatusForbidden:
			return game.External("generator authentication failed")
		}
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return game.External(fmt.Sprintf("generator error (%d): %s", apiErr.StatusCode, truncate(msg, 100)))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return game.External("the generator took too long, try again")
	}
	return game.External("generator error: " + truncate(err.Error(), 100))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
