package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Filter narrows the events a publisher receives. Each list is matched
// against the event's routing attributes; an empty list matches anything.
// ErrorKinds only ever matches failures, since successes carry no kind.
type Filter struct {
	Outcomes   []string `json:"outcomes" yaml:"outcomes"`
	Modes      []string `json:"modes" yaml:"modes"`
	ErrorKinds []string `json:"error_kinds" yaml:"error_kinds"`
}

// Match reports whether evt passes the filter.
func (flt Filter) Match(evt Event) bool {
	attrs := evt.attributes()
	return allows(flt.Outcomes, attrs["outcome"]) &&
		allows(flt.Modes, attrs["mode"]) &&
		allows(flt.ErrorKinds, attrs["error_kind"])
}

func allows(set []string, value string) bool {
	return len(set) == 0 || slices.Contains(set, value)
}

type route struct {
	pub    Publisher
	filter Filter
}

// Fanout routes each event to the publishers whose filter accepts it.
type Fanout struct {
	routes []route
}

// Result counts what one Publish call did.
type Result struct {
	Delivered int
	Skipped   int
}

// NewFanout builds a dispatcher that sends every event to every publisher.
func NewFanout(pubs []Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range pubs {
		f.add(p, Filter{})
	}
	return f
}

func (f *Fanout) add(p Publisher, flt Filter) {
	if p != nil {
		f.routes = append(f.routes, route{pub: p, filter: flt})
	}
}

// Publish hands evt to each matching publisher in order. Failures are
// collected so one broken sink does not starve the others.
func (f *Fanout) Publish(ctx context.Context, evt Event) (Result, error) {
	var res Result
	if f == nil {
		return res, nil
	}

	var errs []error
	for _, r := range f.routes {
		if !r.filter.Match(evt) {
			res.Skipped++
			continue
		}
		if err := r.pub.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", r.pub.Type(), r.pub.ID(), err))
			continue
		}
		res.Delivered++
	}
	return res, errors.Join(errs...)
}

// Size returns the number of routed publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.routes)
}

// Close releases publishers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, r := range f.routes {
		if c, ok := r.pub.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", r.pub.Type(), r.pub.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
