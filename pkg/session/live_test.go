package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
	"github.com/samvad-hq/samvad-title-fetcher/pkg/httpclient"
)

// countingClient records calls and never performs I/O.
type countingClient struct {
	calls int
	resp  httpclient.Response
	err   error
}

func (c *countingClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	c.calls++
	return c.resp, c.err
}

type fakeResponse struct {
	body        []byte
	statusCode  int
	contentType string
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.statusCode }
func (f fakeResponse) Header(key string) string {
	if strings.EqualFold(key, "Content-Type") {
		return f.contentType
	}
	return ""
}

func TestLiveSessionFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/todos/1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		_, _ = w.Write([]byte(`{"title":"delectus aut autem","id":1}`))
	}))
	defer srv.Close()

	live := NewLiveSession(httpclient.NewRestyClient(2*time.Second), map[string]string{
		"Accept":  "application/json",
		"X-Empty": "  ",
	})
	data, err := live.Fetch(context.Background(), srv.URL+"/todos/1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{"title":"delectus aut autem","id":1}` {
		t.Fatalf("unexpected body %s", data)
	}
}

func TestLiveSessionNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	live := NewLiveSession(httpclient.NewRestyClient(2*time.Second), nil)
	_, err := live.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 503") || !strings.Contains(err.Error(), "gone fishing") {
		t.Fatalf("error lacks status detail: %v", err)
	}
}

func TestLiveSessionUnreachableIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	live := NewLiveSession(httpclient.NewRestyClient(time.Second), nil)
	if _, err := live.Fetch(context.Background(), target); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestLiveSessionClientErrorIsTransportError(t *testing.T) {
	client := &countingClient{err: errors.New("i/o timeout")}
	_, err := NewLiveSession(client, nil).Fetch(context.Background(), "https://example.com/todos/1")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", client.calls)
	}
}

func TestLiveSessionMalformedLocatorIsNotFoundWithoutIO(t *testing.T) {
	client := &countingClient{resp: fakeResponse{statusCode: 200}}
	live := NewLiveSession(client, nil)

	for _, locator := range []string{"", "   ", "not a url", "ftp://example.com/x", "https://", "://missing-scheme", "/relative/path"} {
		_, err := live.Fetch(context.Background(), locator)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Fetch(%q) err = %v, want NotFound", locator, err)
		}
	}
	if client.calls != 0 {
		t.Fatalf("expected no HTTP calls for malformed locators, got %d", client.calls)
	}
}

func TestLiveSessionSummarisesHTMLErrorPages(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>502 Bad Gateway</title></head><body><h1>upstream down</h1></body></html>`
	client := &countingClient{resp: fakeResponse{body: []byte(page), statusCode: 502, contentType: "text/html"}}

	_, err := NewLiveSession(client, nil).Fetch(context.Background(), "https://example.com")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "502 Bad Gateway") || strings.Contains(err.Error(), "<html>") {
		t.Fatalf("expected html title in error, got %v", err)
	}
}

func TestResponseSnippet(t *testing.T) {
	if got := responseSnippet(nil, ""); got != "<empty>" {
		t.Errorf("empty snippet = %q", got)
	}
	long := strings.Repeat("x", maxSnippetLen+10)
	if got := responseSnippet([]byte(long), "text/plain"); len(got) != maxSnippetLen+3 {
		t.Errorf("expected truncated snippet, got len %d", len(got))
	}
	if got := responseSnippet([]byte("<html><body><h1> Not   Found </h1></body></html>"), ""); got != "Not Found" {
		t.Errorf("heading fallback = %q", got)
	}
}
