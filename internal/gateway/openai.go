package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/avereyes/promptdesk/internal/config"
	"github.com/avereyes/promptdesk/internal/domain"
)

// OpenAIClient implements Client against an OpenAI-compatible
// chat-completions endpoint.
type OpenAIClient struct {
	cfg  config.GatewayConfig
	http *http.Client
}

// NewOpenAIClient creates a gateway client from configuration. A
// missing API key is tolerated here; calls fail with ErrAuth instead.
func NewOpenAIClient(cfg config.GatewayConfig) *OpenAIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &OpenAIClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the JSON body sent to POST /chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the transcript and returns the generated text.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrAuth)
	}
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("%w: empty transcript", ErrMalformed)
	}

	temp := req.Temperature
	if temp == 0 {
		temp = c.cfg.Temperature
	}
	maxTok := req.MaxTokens
	if maxTok == 0 {
		maxTok = c.cfg.MaxTokens
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body := chatRequest{
		Model:       c.cfg.Model,
		Messages:    toChatMessages(req.Messages),
		Temperature: temp,
		MaxTokens:   maxTok,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: status %d", ErrAuth, httpResp.StatusCode)
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: status %d", ErrRateLimited, httpResp.StatusCode)
	case httpResp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d: %s", ErrUnavailable, httpResp.StatusCode, truncate(respBody, 200))
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformed)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformed)
	}
	return content, nil
}

func toChatMessages(turns []domain.Turn) []chatMessage {
	msgs := make([]chatMessage, len(turns))
	for i, t := range turns {
		msgs[i] = chatMessage{Role: string(t.Role), Content: t.Content}
	}
	return msgs
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// IsGatewayError reports whether err belongs to the gateway failure
// taxonomy. Handlers use it to decide between a degraded message and
// a genuine internal error.
func IsGatewayError(err error) bool {
	return errors.Is(err, ErrAuth) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}
