package api

// LEAD API CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries uint64
}

// StatusError is an unexpected HTTP status from the lead API.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func NewClient(baseURL, token string, timeout time.Duration, maxRetries uint64, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:     logger,
		maxRetries: maxRetries,
	}
}

func (c *Client) CreateLead(ctx context.Context, req LeadRequest) (LeadResponse, error) {
	var resp LeadResponse
	if err := c.do(ctx, http.MethodPost, "/api/leads", req, &resp, http.StatusCreated, http.StatusOK); err != nil {
		return LeadResponse{}, fmt.Errorf("create lead: %w", err)
	}
	return resp, nil
}

func (c *Client) SendOTP(ctx context.Context, phone string) error {
	if err := c.do(ctx, http.MethodPost, "/api/otp/send", OTPSendRequest{Phone: phone}, nil, http.StatusOK, http.StatusAccepted); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (bool, error) {
	var resp OTPVerifyResponse
	err := c.do(ctx, http.MethodPost, "/api/otp/verify", OTPVerifyRequest{Phone: phone, Code: code}, &resp, http.StatusOK)
	if err != nil {
		// The API answers a wrong or expired code with 400/401.
		var se *StatusError
		if errors.As(err, &se) && (se.Code == http.StatusBadRequest || se.Code == http.StatusUnauthorized) {
			return false, nil
		}
		return false, fmt.Errorf("verify otp: %w", err)
	}
	return resp.Verified, nil
}

func (c *Client) JoinWaitlist(ctx context.Context, req WaitlistRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/waitlist", req, nil, http.StatusCreated, http.StatusOK); err != nil {
		return fmt.Errorf("join waitlist: %w", err)
	}
	return nil
}

// do sends body as JSON and decodes the response into out. Network errors
// and 5xx answers are retried with exponential backoff, everything else is
// returned as is.
func (c *Client) do(ctx context.Context, method, path string, body, out any, expected ...int) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		if !statusIn(resp.StatusCode, expected) {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			se := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(raw)}
			if resp.StatusCode >= http.StatusInternalServerError {
				return se
			}
			return backoff.Permanent(se)
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	return backoff.RetryNotify(
		attempt,
		backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx),
		func(err error, next time.Duration) {
			c.logger.Warn("Lead API request failed, retrying...",
				zap.String("method", method),
				zap.String("path", path),
				zap.Duration("next_attempt_in", next),
				zap.Error(err))
		},
	)
}

func statusIn(code int, expected []int) bool {
	for _, e := range expected {
		if code == e {
			return true
		}
	}
	return false
}
