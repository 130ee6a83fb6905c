package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"slices"
	"time"

	apperrors "sjsage522/freegameworker/pkg/errors"

	"golang.org/x/net/html/charset"
)

// UserAgent is sent with every storefront request; the stores reject
// default client agents.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0"

// Fetcher issues single outbound GET requests against storefronts
type Fetcher struct {
	client *http.Client
}

// NewHTTPClient returns a client tuned for slow storefront pages
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// NewFetcher creates a fetcher around client. A nil client gets a default
// one with a 30 second timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = NewHTTPClient(30 * time.Second)
	}
	return &Fetcher{client: client}
}

// Fetch sends a GET request with the fixed User-Agent plus any caller headers
// (age gate or region cookies) and returns the body converted to UTF-8.
// Failures are returned as they happen; nothing is retried here.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewNetwork(req.URL.Host, "failed to fetch "+url, err)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		return nil, apperrors.NewRateLimit(req.URL.Host, resp.Header.Get("Retry-After"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewNetwork(req.URL.Host, fmt.Sprintf("fetch %s unexpected status code: %d", url, resp.StatusCode), nil)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetwork(req.URL.Host, "failed to read response body", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))
	if name == "utf-8" || name == "UTF-8" {
		return bodyBytes, nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	converted, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, apperrors.NewDecode(req.URL.Host, "failed to read converted UTF-8 body", err)
	}

	return converted, nil
}

// FetchJSON fetches url and decodes the body into v
func (f *Fetcher) FetchJSON(ctx context.Context, url string, headers http.Header, v any) error {
	body, err := f.Fetch(ctx, url, headers)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.NewDecode(hostOf(url), "failed to decode JSON payload", err)
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
