package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
	"github.com/samvad-hq/samvad-title-fetcher/pkg/httpclient"
)

const defaultLiveTimeout = 15 * time.Second

// LiveSession fetches the locator over HTTP GET.
type LiveSession struct {
	client  HTTPClient
	headers map[string]string
}

// NewLiveSession builds a live session. A nil client gets a resty client
// with the default timeout.
func NewLiveSession(client HTTPClient, headers map[string]string) *LiveSession {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &LiveSession{client: client, headers: cleanHeaders(headers)}
}

// DefaultHTTPClient returns the resty-backed client used by live sessions.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(defaultLiveTimeout) }

// Fetch validates locator as an absolute http(s) URL, then GETs it. A bad
// locator is domain.NotFound and no request is sent; a failed request or a
// non-2xx status is domain.Transport.
func (s *LiveSession) Fetch(ctx context.Context, locator string) ([]byte, error) {
	target, err := parseLocator(locator)
	if err != nil {
		return nil, domain.NewFetchError(domain.NotFound, locator, err)
	}

	resp, err := s.client.Get(ctx, target, s.headers)
	if err != nil {
		return nil, domain.NewFetchError(domain.Transport, locator, fmt.Errorf("http get: %w", err))
	}
	if resp == nil {
		return nil, domain.NewFetchError(domain.Transport, locator, errors.New("http get: empty response"))
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, domain.NewFetchError(domain.Transport, locator,
			fmt.Errorf("status %d body: %s", code, responseSnippet(body, resp.Header("Content-Type"))))
	}

	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func parseLocator(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("url has no host")
	}
	return u.String(), nil
}

func cleanHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	return out
}
