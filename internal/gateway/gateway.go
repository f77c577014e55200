// Package gateway talks to the OpenAI-compatible model gateway that writes
// explanations for scored predictions and answers platform chat.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unifai/unifai/pkg/config"
)

// Gateway failures the HTTP API passes through with their own status codes.
var (
	ErrRateLimited      = errors.New("gateway rate limit exceeded")
	ErrCreditsExhausted = errors.New("gateway credits exhausted")
	ErrNotConfigured    = errors.New("gateway API key is not configured")
)

// FallbackExplanation is returned when the gateway answers without any content.
const FallbackExplanation = "Unable to generate explanation."

const defaultModel = "google/gemini-2.5-flash"

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// ExplainRequest describes the prediction to explain.
type ExplainRequest struct {
	Module     string          `json:"moduleType"`
	Input      json.RawMessage `json:"inputData"`
	Prediction string          `json:"prediction"`
	Confidence float64         `json:"confidence"`
	RiskLevel  string          `json:"riskLevel"`
}

// Client calls the gateway's /v1/chat/completions endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	model      string
	apiKey     string
}

// New creates a client from cfg. The key is read from cfg.APIKeyEnv.
func New(cfg config.GatewayConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		url:    cfg.URL,
		model:  model,
		apiKey: cfg.APIKey(),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Explain asks the model to explain one prediction and returns the text.
func (c *Client) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	resp, err := c.post(ctx, completionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: explainSystemPrompt},
			{Role: "user", Content: ExplainPrompt(req)},
		},
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("parse gateway response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return FallbackExplanation, nil
	}
	return out.Choices[0].Message.Content, nil
}

// ChatStream validates req, opens a streaming completion and copies the gateway's
// event stream to w, flushing after every chunk when w supports it. Nothing is
// written to w when an error is returned before the stream starts.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, w io.Writer) error {
	if err := req.Validate(); err != nil {
		return err
	}
	messages := make([]Message, 0, len(req.Messages)+1)
	messages = append(messages, Message{Role: "system", Content: req.SystemPrompt()})
	messages = append(messages, req.Messages...)

	resp, err := c.post(ctx, completionRequest{Model: c.model, Messages: messages, Stream: true})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if _, err := CopyStream(w, resp.Body); err != nil {
		return fmt.Errorf("stream chat response: %w", err)
	}
	return nil
}

// CopyStream copies r to w chunk by chunk, flushing w after each write if it is an
// http.Flusher.
func CopyStream(w io.Writer, r io.Reader) (int64, error) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			written, werr := w.Write(buf[:n])
			total += int64(written)
			if werr != nil {
				return total, werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

func (c *Client) post(ctx context.Context, body completionRequest) (*http.Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusPaymentRequired:
		return nil, ErrCreditsExhausted
	default:
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}
}

// StatusError is an unexpected non-2xx gateway answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("AI Gateway error: %d", e.Code)
}

// ExplainPrompt renders the user prompt for req.
func ExplainPrompt(req ExplainRequest) string {
	return fmt.Sprintf(explainUserPrompt,
		req.Module, indentJSON(req.Input), req.Prediction, percent(req.Confidence), req.RiskLevel)
}

func indentJSON(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

var hundred = decimal.NewFromInt(100)

// percent renders a 0-1 confidence as a percentage with one decimal, without the sign.
func percent(confidence float64) string {
	return decimal.NewFromFloat(confidence).Mul(hundred).StringFixed(1)
}
