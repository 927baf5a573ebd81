package helpers

import (
	"bytes"
	"context"
	"io"
	mathrand "math/rand"
	"net/http"
	"slices"
	"time"

	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"

	"golang.org/x/net/html/charset"
)

var referers = []string{
	"https://www.google.com/",
	"https://www.bing.com/",
	"https://duckduckgo.com/",
}

// NewClient builds an HTTP client bounded by the configured request timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Fetch sends an HTTP GET request with browser-like headers, converts the
// response body to UTF-8 if needed, and returns it as an io.Reader. Blocking
// statuses (429, 430) are reported as rate-limit errors, any other non-200
// status as a network error.
func Fetch(ctx context.Context, client *http.Client, url, userAgent string) (io.Reader, error) {
	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.NewNetwork("", "failed to create request", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Referer", referers[rnd.Intn(len(referers))])
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.NewNetwork("", "failed to fetch "+url, err)
	}
	defer resp.Body.Close()

	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		return nil, apperr.New(apperr.KindRateLimit, "",
			"blocking response from "+url+"; retry after "+resp.Header.Get("Retry-After"), nil)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.NewNetwork("", "unexpected status "+resp.Status+" fetching "+url, nil)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.NewNetwork("", "failed to read response body", err)
	}

	// Normalize to UTF-8 based on the Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))
	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, apperr.NewParsing("", "failed to convert body to UTF-8", err)
	}

	return &buf, nil
}

// FetchWithRetry behaves like Fetch but retries once on a transient network
// failure. Rate-limit responses are never retried.
func FetchWithRetry(ctx context.Context, client *http.Client, url, userAgent string) (io.Reader, error) {
	body, err := Fetch(ctx, client, url, userAgent)
	if err == nil {
		return body, nil
	}
	if !apperr.IsKind(err, apperr.KindNetwork) || ctx.Err() != nil {
		return nil, err
	}
	return Fetch(ctx, client, url, userAgent)
}
