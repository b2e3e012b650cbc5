// Package fetch provides the rate-limited HTTP client used for all outbound
// requests to the document source.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestInterval is the default courtesy interval between outbound
// requests. SEC asks automated clients to keep request rates modest.
const DefaultRequestInterval = 250 * time.Millisecond

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 60 * time.Second

// maxBodyBytes caps response bodies; large 10-K filings run a few MB.
const maxBodyBytes = 50 * 1024 * 1024

// HTTPClient matches the Do method of *http.Client, allowing injection of
// mock clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx response. It is distinct from transport
// errors and from clean not-found outcomes so callers can tell "fetch failed"
// apart from "nothing there".
type StatusError struct {
	URL        string
	StatusCode int
}

func (statusErr *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", statusErr.StatusCode, statusErr.URL)
}

// Client fetches documents as text. Every request carries the identifying
// User-Agent, waits for the shared rate limiter, and enforces the configured
// timeout. Compressed responses are handled by the transport's transparent
// gzip support.
type Client struct {
	httpClient HTTPClient
	limiter    *rate.Limiter
	userAgent  string
}

// NewClient creates a Client with the given identifying User-Agent, minimum
// interval between requests, and per-request timeout. Zero values fall back
// to the package defaults. The limiter is global to the client: adding
// concurrent callers later would still bound the aggregate request rate.
func NewClient(userAgent string, requestInterval, timeout time.Duration) *Client {
	if requestInterval <= 0 {
		requestInterval = DefaultRequestInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(requestInterval), 1),
		userAgent:  userAgent,
	}
}

// SetHTTPClient replaces the underlying HTTP client (useful for testing).
func (client *Client) SetHTTPClient(httpClient HTTPClient) {
	client.httpClient = httpClient
}

// FetchText retrieves the response body of targetURL as text. Non-2xx
// statuses return a *StatusError; timeouts and transport failures return the
// wrapped transport error.
func (client *Client) FetchText(ctx context.Context, targetURL string) (string, error) {
	if targetURL == "" {
		return "", fmt.Errorf("empty URL")
	}

	if err := client.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", targetURL, err)
	}
	request.Header.Set("User-Agent", client.userAgent)
	request.Header.Set("Accept", "text/html, text/plain, application/xhtml+xml")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", targetURL, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", &StatusError{URL: targetURL, StatusCode: response.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body from %s: %w", targetURL, err)
	}

	return string(body), nil
}
