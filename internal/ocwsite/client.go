package ocwsite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ocwsync/internal/fileutil"
)

const defaultUserAgent = "ocwsync/dev"

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// IsStatus reports whether err is a *StatusError.
func IsStatus(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// Config describes the archive host client.
type Config struct {
	UserAgent  string
	HTTPClient *http.Client
}

// Client performs GET requests against the archive host.
type Client struct {
	http      *http.Client
	userAgent string
}

// New creates a Client. A nil HTTPClient means a client without timeout.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{http: client, userAgent: ua}
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// Page fetches rawURL and returns the body.
func (c *Client) Page(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, nil
}

// Document fetches rawURL and parses it as HTML. The raw body is returned
// alongside for pattern matching.
func (c *Client) Document(ctx context.Context, rawURL string) (*goquery.Document, []byte, error) {
	body, err := c.Page(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, body, nil
}

// Download streams rawURL into dest atomically and returns the byte count.
func (c *Client) Download(ctx context.Context, rawURL, dest string) (int64, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return fileutil.WriteStreamAtomic(dest, resp.Body)
}

// CourseBase returns the course URL with a trailing slash.
func CourseBase(courseURL string) string {
	courseURL = strings.TrimSpace(courseURL)
	if strings.HasSuffix(courseURL, "/") {
		return courseURL
	}
	return courseURL + "/"
}

// Resolve resolves href against base. Absolute hrefs are returned unchanged.
func Resolve(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
