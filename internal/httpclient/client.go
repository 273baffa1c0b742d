// Package httpclient provides the shared HTTP client used by every provider
// service: bounded retries on transient failures, JSON decoding helpers, and
// the ordered TLS policy ladder for the air-quality path.
package httpclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/logger"
	"go.uber.org/zap"
)

// TLSPolicy is the ordered certificate-failure policy for providers that run
// behind interception proxies. Exactly one branch applies per fetch:
//
//	AllowInsecure          -> skip verification unconditionally
//	AutoAcceptUnverified   -> on TLS failure, retry once insecurely (annotated)
//	CaptureChain           -> on TLS failure, write the server's leaf
//	                          certificate to ChainFile and fail with guidance
//	(default)              -> fail with guidance
//
// The policy is consulted only by GetJSONWithPolicy. Every other method
// always verifies certificates, so the bypass flags never leak to providers
// that carry credentials.
type TLSPolicy struct {
	AllowInsecure        bool
	AutoAcceptUnverified bool
	CaptureChain         bool
	ChainFile            string
}

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Client wraps net/http with the transport-level retry policy shared by all
// provider calls: bounded attempts with exponential backoff on 429/5xx
// responses and network errors, respecting context cancellation.
type Client struct {
	secure   *http.Client
	insecure *http.Client
	policy   TLSPolicy
	log      *zap.SugaredLogger
}

const (
	maxAttempts    = 4
	initialBackoff = 200 * time.Millisecond
)

// New builds a Client with the given per-request timeout and TLS policy.
func New(timeout time.Duration, policy TLSPolicy) *Client {
	insecureTransport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- explicit operator opt-in
	}
	return &Client{
		secure:   &http.Client{Timeout: timeout},
		insecure: &http.Client{Timeout: timeout, Transport: insecureTransport},
		policy:   policy,
		log:      logger.GetLogger(),
	}
}

// Do issues the request built by makeReq, retrying transient failures.
// A fresh request is built per attempt so bodies are replayable.
func (c *Client) Do(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	return c.doWith(ctx, c.secure, makeReq)
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := hc.Do(req)
		if err == nil && resp.StatusCode < 400 {
			return resp, nil
		}
		if err == nil {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			err = &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	// TLS verification failures are terminal; the policy ladder handles them.
	if isCertError(err) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func isCertError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "certificate")
}

// GetJSONNoRetry performs a single-attempt GET with query parameters and
// decodes the JSON body into out. Used by callers whose contract forbids
// retries (the geocoder).
func (c *Client) GetJSONNoRetry(ctx context.Context, endpoint string, query url.Values, headers map[string]string, out interface{}) error {
	req, err := buildRequest(ctx, http.MethodGet, endpoint, query, nil, "", headers)
	if err != nil {
		return err
	}

	resp, err := c.secure.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetJSON performs a GET with query parameters and decodes the JSON body
// into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, headers map[string]string, out interface{}) error {
	resp, err := c.Do(ctx, func() (*http.Request, error) {
		return buildRequest(ctx, http.MethodGet, endpoint, query, nil, "", headers)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// PostFormJSON performs a form-encoded POST and decodes the JSON body into out.
func (c *Client) PostFormJSON(ctx context.Context, endpoint string, form url.Values, headers map[string]string, out interface{}) error {
	body := form.Encode()
	resp, err := c.Do(ctx, func() (*http.Request, error) {
		return buildRequest(ctx, http.MethodPost, endpoint, nil, strings.NewReader(body), "application/x-www-form-urlencoded", headers)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func buildRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, contentType string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
