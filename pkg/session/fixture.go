package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
)

// FixtureSession serves locators from a fixture store; the locator is the
// fixture's logical name. It never touches the network.
type FixtureSession struct {
	store FixtureResolver
}

// NewFixtureSession wraps store.
func NewFixtureSession(store FixtureResolver) *FixtureSession {
	return &FixtureSession{store: store}
}

// Fetch resolves locator through the store. Store failures that are not
// already FetchErrors are reported as domain.Unreadable.
func (s *FixtureSession) Fetch(_ context.Context, locator string) ([]byte, error) {
	if s == nil || s.store == nil {
		return nil, domain.NewFetchError(domain.Unreadable, locator, errors.New("fixture store is not configured"))
	}

	data, err := s.store.Resolve(locator)
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, domain.NewFetchError(domain.Unreadable, locator, fmt.Errorf("resolve fixture: %w", err))
	}
	return data, nil
}
