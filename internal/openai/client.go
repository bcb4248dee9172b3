// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openai is a minimal client for OpenAI-compatible chat
// completion endpoints.
//
// Only the non-streaming /chat/completions call is implemented. The
// client never logs API keys or message bodies; request logging is
// limited to method, path, status, and duration, with the key reduced
// to a SHA-256 fingerprint.
package openai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/personachat/internal/model"
)

const (
	// DefaultBaseURL is the OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps response bodies at 10MB.
	MaxResponseSize = 10 * 1024 * 1024

	chatCompletionsPath = "/chat/completions"
)

var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("OpenAI API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrEmptyCompletion indicates the API returned no choices.
	ErrEmptyCompletion = errors.New("completion returned no choices")
)

// APIError carries the status and message of a failed API call.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openai api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("openai api error (status %d)", e.Status)
}

// sharedHTTPClient is reused across all clients for connection pooling.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	},
}

// GenParams are the per-request generation knobs.
type GenParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Options configures a Client.
type Options struct {
	// APIKey authenticates requests. Empty means not configured.
	APIKey string
	// BaseURL overrides DefaultBaseURL, e.g. for proxies or tests.
	BaseURL string
	// Timeout bounds a single request. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after a
	// transient failure. Zero means fail fast.
	MaxRetries int
	// RequestsPerMinute enables client-side pacing when positive.
	RequestsPerMinute int
}

// Client talks to one OpenAI-compatible endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewClient creates a client. A client with an empty API key is valid
// but every call fails with ErrNotConfigured.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1)
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		timeout:    timeout,
		maxRetries: opts.MaxRetries,
		limiter:    limiter,
		httpClient: sharedHTTPClient,
	}
}

// IsConfigured reports whether an API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// KeyFingerprint returns a short SHA-256 fingerprint of the API key,
// safe for logs. Returns "none" when unconfigured.
func (c *Client) KeyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// Complete sends the system prompt plus conversation turns and returns
// the assistant's reply text.
func (c *Client) Complete(ctx context.Context, systemPrompt string, turns []model.Turn, p GenParams) (string, error) {
	messages := make([]ChatMessage, 0, len(turns)+1)
	messages = append(messages, NewSystemMessage(systemPrompt))
	for _, t := range turns {
		if t.Role == model.RoleAssistant {
			messages = append(messages, NewAssistantMessage(t.Text))
			continue
		}
		messages = append(messages, NewUserMessage(t.Text))
	}

	resp, err := c.Chat(ctx, ChatRequest{
		Model:       p.Model,
		Messages:    messages,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Content(), nil
}

// Chat performs a chat completion request. Transient failures (rate
// limiting, 5xx, network errors) are retried with exponential backoff
// up to MaxRetries additional attempts.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	url := c.baseURL + chatCompletionsPath

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}

		resp, err := c.doRequest(ctx, url, req)
		if err != nil {
			if c.isRetryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// backoff returns the delay before retry attempt n: 1s, 2s, 4s, ...
func backoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second
}

func (c *Client) doRequest(ctx context.Context, requestURL string, reqBody ChatRequest) (*ChatResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, requestURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "personachat/1.0")

	log.Printf("API Request: POST %s model=%s key=%s", chatCompletionsPath, reqBody.Model, c.KeyFingerprint())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	// Clear Authorization immediately so the request can never leak
	// the key through later logging.
	req.Header.Del("Authorization")

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("API Response: %d %s (%v)", resp.StatusCode, http.StatusText(resp.StatusCode), duration)

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &chatResp, nil
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", int64(MaxResponseSize))
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to Go errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		switch statusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuthFailed, apiErr.Error.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrModelNotFound, apiErr.Error.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Error.Message)
		default:
			return &APIError{Status: statusCode, Type: apiErr.Error.Type, Message: apiErr.Error.Message}
		}
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{Status: statusCode, Message: string(body)}
	}
}

// isRetryable determines if an error should trigger a retry.
func (c *Client) isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 && apiErr.Status < 600
	}
	// Remaining errors from Do are network-level; retry those.
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
