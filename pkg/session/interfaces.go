package session

import (
	"context"

	"github.com/samvad-hq/samvad-title-fetcher/pkg/httpclient"
)

// Session returns the raw bytes behind a locator. Implementations fail with
// *domain.FetchError and must not know how the bytes will be decoded.
type Session interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// FixtureResolver is the lookup FixtureSession delegates to.
type FixtureResolver interface {
	Resolve(name string) ([]byte, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sessions.
type HTTPClient = httpclient.Client
