package publishers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samvad-hq/samvad-title-fetcher/internal/logger"
)

// Builder creates a Publisher from a config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error)

// Registry maps publisher types to builders. It is fixed at construction.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns a registry over builders; blank types and nil
// builders are ignored.
func NewRegistry(builders map[string]Builder) *Registry {
	r := &Registry{builders: make(map[string]Builder, len(builders))}
	for typ, b := range builders {
		if typ = strings.ToLower(strings.TrimSpace(typ)); typ != "" && b != nil {
			r.builders[typ] = b
		}
	}
	return r
}

// DefaultRegistry knows every sink this module ships.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:      newHTTPPublisher,
		TypeSQS:       newSQSPublisher,
		TypeSNS:       newSNSPublisher,
		TypeGCPPubSub: newGCPPubSubPublisher,
	})
}

// Types lists the registered publisher types in sorted order.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.builders))
	for typ := range r.builders {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Build constructs the publisher described by cfg.
func (r *Registry) Build(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if r == nil {
		return nil, fmt.Errorf("publisher registry is nil")
	}
	builder, ok := r.builders[strings.ToLower(cfg.Type)]
	if !ok {
		return nil, fmt.Errorf("publisher %q: no builder for type %q (known: %s)", cfg.ID, cfg.Type, strings.Join(r.Types(), ", "))
	}
	return builder(ctx, cfg, logger.Ensure(log))
}

// Fanout builds every publisher in cfgs and routes each through its
// configured filter. Publishers already built are closed if a later one
// fails.
func (r *Registry) Fanout(ctx context.Context, cfgs []PublisherConfig, log logger.Logger) (*Fanout, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	f := &Fanout{}
	for _, cfg := range cfgs {
		pub, err := r.Build(ctx, cfg, log)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		f.add(pub, cfg.Filter)
	}
	return f, nil
}
